package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/urfave/cli/v2"

	"pyprune/pkg/cache"
	"pyprune/pkg/config"
	"pyprune/pkg/fileproc"
	"pyprune/pkg/fix"
	"pyprune/pkg/progress"
	"pyprune/pkg/pyfile"
	"pyprune/pkg/scanner"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:      "pyprune",
		Usage:     "Remove unused imports and dead code from Python sources",
		Version:   version,
		ArgsUsage: "[path ...]",
		Description: `Pyprune removes unused imports, unused variables, duplicate
dictionary keys, and redundant pass statements from Python files.
By default only unused standard-library imports are removed, since
removing a third-party import can change behavior through side
effects. Pass "-" to filter stdin to stdout.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PYPRUNE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "in-place",
				Aliases: []string{"i"},
				Usage:   "Make changes to files instead of printing diffs",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "Print fixed source to stdout",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Report files that would change and exit 1 if any",
			},
			&cli.BoolFlag{
				Name:  "check-diff",
				Usage: "Print diffs without writing and exit 1 if any file would change",
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "Descend into directories recursively",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Glob patterns to exclude (matched against base name and path)",
			},
			&cli.StringSliceFlag{
				Name:  "imports",
				Usage: "Additional modules considered safe to remove when unused",
			},
			&cli.BoolFlag{
				Name:  "remove-all-unused-imports",
				Usage: "Remove all unused imports, not just standard-library ones",
			},
			&cli.BoolFlag{
				Name:  "expand-star-imports",
				Usage: "Expand a sole 'from x import *' into explicit imports",
			},
			&cli.BoolFlag{
				Name:  "remove-duplicate-keys",
				Usage: "Remove earlier entries of repeated literal dict keys",
			},
			&cli.BoolFlag{
				Name:  "remove-unused-variables",
				Usage: "Remove unused function-local variable assignments",
			},
			&cli.BoolFlag{
				Name:  "remove-rhs-for-unused-variables",
				Usage: "Also drop the right-hand side of removed assignments",
			},
			&cli.BoolFlag{
				Name:  "ignore-init-module-imports",
				Usage: "Leave imports in __init__.py files alone",
			},
			&cli.BoolFlag{
				Name:  "ignore-pass-statements",
				Usage: "Never remove pass statements",
			},
			&cli.BoolFlag{
				Name:  "ignore-pass-after-docstring",
				Usage: "Keep a pass that directly follows a docstring",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of files fixed in parallel (0 = auto)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the clean-file cache",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress and informational output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print a per-file summary after fixing",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	// CLI flags override file settings.
	if c.IsSet("imports") {
		cfg.Fix.Imports = append(cfg.Fix.Imports, c.StringSlice("imports")...)
	}
	if c.Bool("remove-all-unused-imports") {
		cfg.Fix.RemoveAllUnusedImports = true
	}
	if c.Bool("expand-star-imports") {
		cfg.Fix.ExpandStarImports = true
	}
	if c.Bool("remove-duplicate-keys") {
		cfg.Fix.RemoveDuplicateKeys = true
	}
	if c.Bool("remove-unused-variables") {
		cfg.Fix.RemoveUnusedVariables = true
	}
	if c.Bool("remove-rhs-for-unused-variables") {
		cfg.Fix.RemoveRHSForUnusedVariables = true
	}
	if c.Bool("ignore-init-module-imports") {
		cfg.Fix.IgnoreInitModuleImports = true
	}
	if c.Bool("ignore-pass-statements") {
		cfg.Fix.IgnorePassStatements = true
	}
	if c.Bool("ignore-pass-after-docstring") {
		cfg.Fix.IgnorePassAfterDocstring = true
	}
	if c.IsSet("exclude") {
		cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, c.StringSlice("exclude")...)
	}
	if c.IsSet("jobs") {
		cfg.Jobs = c.Int("jobs")
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("quiet") {
		cfg.Output.Quiet = true
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts := cfg.Options()

	if c.Bool("in-place") && c.Bool("stdout") {
		return fmt.Errorf("--in-place and --stdout are mutually exclusive")
	}

	args := c.Args().Slice()
	if len(args) == 0 {
		return cli.ShowAppHelp(c)
	}

	if len(args) == 1 && args[0] == "-" {
		return fixStdin(opts)
	}

	files, err := collectFiles(args, cfg, c.Bool("recursive"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !cfg.Output.Quiet {
			color.Yellow("No Python files found")
		}
		return nil
	}

	if c.Bool("stdout") {
		return fixToStdout(files, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, procErr := fixFiles(ctx, files, cfg, opts, c.Bool("in-place"))

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	switch {
	case c.Bool("check"):
		err = reportCheck(results, cfg.Output.Quiet)
	case c.Bool("check-diff"):
		err = reportCheckDiff(results)
	case c.Bool("in-place"):
		reportInPlace(results, cfg.Output)
	default:
		for _, r := range results {
			if r.Changed {
				fmt.Print(r.Diff)
			}
		}
	}

	if procErr != nil {
		if ctx.Err() != nil {
			return cli.Exit(color.RedString("interrupted"), 2)
		}
		for _, pe := range procErr.Errors {
			color.Red("%s: %v", pe.Path, pe.Err)
		}
		return cli.Exit("", 1)
	}
	return err
}

// fixStdin filters stdin to stdout, the pipe mode.
func fixStdin(opts fix.Options) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	fixer := fix.New(opts)
	defer fixer.Close()

	_, err = os.Stdout.WriteString(fixer.FixCode(string(src)))
	return err
}

// fixToStdout prints each file's fixed source to stdout in order.
func fixToStdout(files []string, opts fix.Options) error {
	fixer := fix.New(opts)
	defer fixer.Close()

	for _, path := range files {
		src, err := pyfile.Read(path)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.WriteString(fixer.FixCodeForPath(src.Content, path)); err != nil {
			return err
		}
	}
	return nil
}

// collectFiles expands the positional arguments into a sorted, deduped
// list of Python files. Directories require the recursive flag.
func collectFiles(args []string, cfg *config.Config, recursive bool) ([]string, error) {
	scan := scanner.New(cfg)

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", arg, err)
		}

		if info.IsDir() {
			if !recursive {
				return nil, fmt.Errorf("%s is a directory; use --recursive", arg)
			}
			found, err := scan.ScanDir(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to scan directory %s: %w", arg, err)
			}
			for _, f := range found {
				add(f)
			}
			continue
		}

		// Explicitly named files bypass the Python-file heuristics but
		// still honor exclusion patterns.
		if cfg.ShouldExclude(arg) {
			continue
		}
		add(arg)
	}

	sort.Strings(files)
	return files, nil
}

// fixFiles runs the fixer over files in parallel, consulting the
// clean-file cache so unchanged files are skipped on repeat runs.
func fixFiles(ctx context.Context, files []string, cfg *config.Config, opts fix.Options, write bool) ([]*fix.Result, *fileproc.ProcessingErrors) {
	cleanCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		// A broken cache directory degrades to no caching.
		cleanCache, _ = cache.New("", 0, false)
	}
	fingerprint := cache.HashBytes([]byte(fmt.Sprintf("%+v", opts)))

	tracker := progress.Disabled()
	if !cfg.Output.Quiet && len(files) > 1 {
		tracker = progress.NewTracker("Fixing files...", len(files))
	}

	results, errs := fileproc.MapFilesWithContextAndProgress(ctx, files, cfg.Jobs, opts,
		func(f *fix.Fixer, path string) (*fix.Result, error) {
			if cleanCache.IsClean(path, fingerprint) {
				return &fix.Result{Path: path}, nil
			}
			result, err := f.FixFile(path, write)
			if err != nil {
				return nil, err
			}
			if !result.Changed {
				// Best effort; a failed cache write only costs a re-check.
				_ = cleanCache.MarkClean(path, fingerprint)
			} else if write {
				_ = cleanCache.MarkClean(path, fingerprint)
			}
			return result, nil
		}, tracker.Tick)
	tracker.FinishSuccess()

	return results, errs
}

func reportCheck(results []*fix.Result, quiet bool) error {
	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
			fmt.Printf("%s: would be fixed\n", r.Path)
		}
	}
	if changed > 0 {
		return cli.Exit(color.RedString("%d file(s) would be fixed", changed), 1)
	}
	if !quiet {
		color.Green("No issues detected")
	}
	return nil
}

func reportCheckDiff(results []*fix.Result) error {
	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
			fmt.Print(r.Diff)
		}
	}
	if changed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func reportInPlace(results []*fix.Result, out config.OutputConfig) {
	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}

	if out.Quiet {
		return
	}

	if out.Verbose {
		var rows [][]string
		for _, r := range results {
			status := "clean"
			if r.Changed {
				status = color.YellowString("fixed")
			}
			rows = append(rows, []string{r.Path, status})
		}

		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithConfig(tablewriter.Config{
				Header: tw.CellConfig{
					Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
					Formatting: tw.CellFormatting{AutoFormat: tw.On},
				},
				Row: tw.CellConfig{
					Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				},
			}),
			tablewriter.WithRendition(tw.Rendition{
				Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
				Settings: tw.Settings{
					Separators: tw.Separators{BetweenColumns: tw.Off},
				},
			}),
		)
		table.Header([]string{"File", "Status"})
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()
	}

	if changed > 0 {
		color.Green("Fixed %d of %d file(s)", changed, len(results))
	} else {
		color.Green("Nothing to fix in %d file(s)", len(results))
	}
}
