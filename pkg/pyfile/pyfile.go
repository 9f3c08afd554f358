// Package pyfile reads and writes Python source files, preserving their
// declared encoding. Python defaults to UTF-8 but still allows a UTF-8
// BOM and PEP 263 coding cookies; a file read through this package is
// written back the way it was found.
package pyfile

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// PEP 263: the cookie must appear in a comment on one of the first two
// lines.
var codingCookieRe = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// File is a decoded Python source file.
type File struct {
	Path     string
	Content  string
	Encoding string
}

// Read loads and decodes the file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	encoding := DetectEncoding(data)
	content, err := decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", path, encoding, err)
	}
	return &File{Path: path, Content: content, Encoding: encoding}, nil
}

// Write stores content back to the file's path in its original
// encoding.
func (f *File) Write(content string) error {
	data, err := encode(content, f.Encoding)
	if err != nil {
		return fmt.Errorf("encode %s as %s: %w", f.Path, f.Encoding, err)
	}
	info, err := os.Stat(f.Path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(f.Path, data, mode)
}

// DetectEncoding returns the encoding name of raw source bytes: the BOM
// wins, then a coding cookie in the first two lines, then UTF-8.
func DetectEncoding(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		return "utf-8-sig"
	}
	lines := bytes.SplitN(data, []byte("\n"), 3)
	for i := 0; i < len(lines) && i < 2; i++ {
		if m := codingCookieRe.FindSubmatch(lines[i]); m != nil {
			return strings.ToLower(string(m[1]))
		}
	}
	return "utf-8"
}

func decode(data []byte, encoding string) (string, error) {
	switch normalize(encoding) {
	case "utf-8":
		return string(data), nil
	case "utf-8-sig":
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case "latin-1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		return string(out), err
	case "cp1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		return string(out), err
	default:
		// Unknown cookie. Latin-1 decodes any byte sequence, so the
		// file survives a read-modify-write cycle untouched where the
		// fixer changes nothing.
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		return string(out), err
	}
}

func encode(content, encoding string) ([]byte, error) {
	switch normalize(encoding) {
	case "utf-8":
		return []byte(content), nil
	case "utf-8-sig":
		return append(append([]byte{}, utf8BOM...), content...), nil
	case "cp1252":
		return charmap.Windows1252.NewEncoder().Bytes([]byte(content))
	default:
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(content))
	}
}

// normalize folds the spelling variants Python accepts for the
// encodings this package handles.
func normalize(encoding string) string {
	name := strings.ToLower(strings.ReplaceAll(encoding, "_", "-"))
	switch name {
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1", "8859", "cp819", "latin":
		return "latin-1"
	case "windows-1252", "cp1252":
		return "cp1252"
	case "utf8", "utf-8", "u8":
		return "utf-8"
	case "utf-8-sig":
		return "utf-8-sig"
	}
	return name
}
