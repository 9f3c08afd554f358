// Package pytoken implements a small Python tokenizer. It covers the
// subset of the CPython token stream needed for line-oriented source
// rewriting: names, numbers, strings, operators and comments, plus the
// INDENT/DEDENT/NEWLINE/NL bookkeeping tokens with their positions.
package pytoken

import (
	"errors"
	"fmt"
	"strings"
)

// Type identifies a token class.
type Type int

const (
	Op Type = iota
	Name
	Number
	String
	Comment
	Newline // terminates a logical line
	NL      // newline inside brackets or on a blank/comment line
	Indent
	Dedent
	EndMarker
)

// Token is a single lexical token with its position.
type Token struct {
	Type  Type
	Value string
	Row   int    // 1-based physical line of the token start
	Col   int    // 0-based byte offset in that line
	Line  string // physical line holding the token start
}

var (
	// ErrBadDedent reports an indentation level that matches no outer block.
	ErrBadDedent = errors.New("unindent does not match any outer indentation level")
	// ErrOpenStatement reports EOF inside brackets or after a continuation.
	ErrOpenStatement = errors.New("EOF in multi-line statement")
	// ErrOpenString reports EOF inside a triple-quoted string.
	ErrOpenString = errors.New("EOF in multi-line string")
)

type tokenizer struct {
	lines   []string
	row     int // index into lines
	col     int
	depth   int // bracket nesting
	indents []int
	tokens  []Token
}

// Tokenize scans source and returns its token stream. The stream follows
// CPython's generate_tokens closely enough for line-level analysis:
// blank and comment-only lines yield NL without indent processing, and
// INDENT is emitted with the first real token of a deeper block.
func Tokenize(source string) ([]Token, error) {
	t := &tokenizer{lines: SplitLines(source), indents: []int{0}}

	for t.row < len(t.lines) {
		if t.depth == 0 {
			done, err := t.startLogicalLine()
			if err != nil {
				return nil, err
			}
			if done {
				continue
			}
		} else {
			t.col = 0
		}
		if err := t.scanLine(); err != nil {
			return nil, err
		}
	}

	if t.depth > 0 {
		return nil, ErrOpenStatement
	}
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.tokens = append(t.tokens, Token{Type: Dedent, Row: len(t.lines) + 1})
	}
	t.tokens = append(t.tokens, Token{Type: EndMarker, Row: len(t.lines) + 1})
	return t.tokens, nil
}

// startLogicalLine measures indentation and handles blank and
// comment-only lines. It reports done=true when the physical line was
// consumed entirely.
func (t *tokenizer) startLogicalLine() (bool, error) {
	line := t.lines[t.row]
	col, i := 0, 0
measure:
	for i < len(line) {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col = (col/8 + 1) * 8
		case '\f':
			col = 0
		default:
			break measure
		}
		i++
	}

	rest := line[i:]
	if rest == "" || rest == "\n" || rest == "\r\n" || rest == "\r" || rest[0] == '#' {
		if rest != "" && rest[0] == '#' {
			t.emit(Comment, strings.TrimRight(rest, "\r\n"), i, line)
		}
		t.emit(NL, lineEnding(line), len(line)-len(lineEnding(line)), line)
		t.row++
		return true, nil
	}

	top := t.indents[len(t.indents)-1]
	if col > top {
		t.indents = append(t.indents, col)
		t.emit(Indent, line[:i], 0, line)
	}
	for col < t.indents[len(t.indents)-1] {
		t.indents = t.indents[:len(t.indents)-1]
		t.emit(Dedent, "", i, line)
	}
	if col != t.indents[len(t.indents)-1] {
		return false, ErrBadDedent
	}
	t.col = i
	return false, nil
}

// scanLine consumes tokens until the current logical or physical line
// ends. It may advance over several physical lines for continuations
// and triple-quoted strings.
func (t *tokenizer) scanLine() error {
	for {
		if t.row >= len(t.lines) {
			return nil
		}
		line := t.lines[t.row]
		if t.col >= len(line) {
			// Final line without a trailing newline.
			t.row++
			return nil
		}
		c := line[t.col]
		switch {
		case c == ' ' || c == '\t' || c == '\f':
			t.col++

		case c == '\n' || c == '\r':
			end := line[t.col:]
			if t.depth > 0 {
				t.emit(NL, end, t.col, line)
			} else {
				t.emit(Newline, end, t.col, line)
			}
			t.row++
			return nil

		case c == '#':
			t.emit(Comment, strings.TrimRight(line[t.col:], "\r\n"), t.col, line)
			t.col = len(line) - len(lineEnding(line))

		case c == '\\':
			rest := line[t.col+1:]
			if rest != "" && rest != "\n" && rest != "\r\n" && rest != "\r" {
				return fmt.Errorf("unexpected character after line continuation character")
			}
			t.row++
			if rest == "" || t.row >= len(t.lines) {
				return ErrOpenStatement
			}
			t.col = 0

		case isIdentStart(c):
			start := t.col
			for t.col < len(line) && isIdentChar(line[t.col]) {
				t.col++
			}
			word := line[start:t.col]
			if isStringPrefix(word) && t.col < len(line) && (line[t.col] == '\'' || line[t.col] == '"') {
				if err := t.scanString(start); err != nil {
					return err
				}
			} else {
				t.emit(Name, word, start, line)
			}

		case isDigit(c) || (c == '.' && t.col+1 < len(line) && isDigit(line[t.col+1])):
			start := t.col
			t.scanNumber()
			t.emit(Number, line[start:t.col], start, line)

		case c == '\'' || c == '"':
			if err := t.scanString(t.col); err != nil {
				return err
			}

		default:
			switch c {
			case '(', '[', '{':
				t.depth++
			case ')', ']', '}':
				if t.depth > 0 {
					t.depth--
				}
			}
			t.emit(Op, string(c), t.col, line)
			t.col++
		}
	}
}

func (t *tokenizer) scanNumber() {
	line := t.lines[t.row]
	for t.col < len(line) {
		c := line[t.col]
		if isAlnum(c) || c == '_' || c == '.' {
			t.col++
			continue
		}
		if (c == '+' || c == '-') && t.col > 0 && (line[t.col-1] == 'e' || line[t.col-1] == 'E') {
			t.col++
			continue
		}
		break
	}
}

// scanString consumes a string literal starting at the current quote
// character; start is the column of the token including any prefix.
func (t *tokenizer) scanString(start int) error {
	startRow := t.row
	startLine := t.lines[t.row]
	quote := startLine[t.col]
	var value strings.Builder
	value.WriteString(startLine[start:t.col])

	closer := strings.Repeat(string(quote), 3)
	if strings.HasPrefix(startLine[t.col:], closer) {
		value.WriteString(closer)
		t.col += 3
		for {
			line := t.lines[t.row]
			for t.col < len(line) {
				if line[t.col] == '\\' {
					if t.col+1 < len(line) {
						value.WriteString(line[t.col : t.col+2])
						t.col += 2
					} else {
						value.WriteByte('\\')
						t.col++
					}
					continue
				}
				if line[t.col] == quote && strings.HasPrefix(line[t.col:], closer) {
					value.WriteString(closer)
					t.col += 3
					t.tokens = append(t.tokens, Token{String, value.String(), startRow + 1, start, startLine})
					return nil
				}
				value.WriteByte(line[t.col])
				t.col++
			}
			t.row++
			if t.row >= len(t.lines) {
				return ErrOpenString
			}
			t.col = 0
		}
	}

	value.WriteByte(quote)
	t.col++
	for {
		line := t.lines[t.row]
		for t.col < len(line) {
			c := line[t.col]
			if c == '\\' {
				if t.col+1 >= len(line) || line[t.col+1] == '\n' || line[t.col+1] == '\r' {
					// Escaped newline continues the literal.
					value.WriteString(line[t.col:])
					t.row++
					if t.row >= len(t.lines) {
						return ErrOpenStatement
					}
					t.col = 0
					goto nextLine
				}
				value.WriteString(line[t.col : t.col+2])
				t.col += 2
				continue
			}
			if c == '\n' || c == '\r' {
				return fmt.Errorf("unterminated string literal at line %d", startRow+1)
			}
			value.WriteByte(c)
			t.col++
			if c == quote {
				t.tokens = append(t.tokens, Token{String, value.String(), startRow + 1, start, startLine})
				return nil
			}
		}
		return fmt.Errorf("unterminated string literal at line %d", startRow+1)
	nextLine:
	}
}

func (t *tokenizer) emit(typ Type, value string, col int, line string) {
	t.tokens = append(t.tokens, Token{typ, value, t.row + 1, col, line})
}

// SplitLines splits source after each newline, keeping line endings.
// CRLF sequences stay attached to their line.
func SplitLines(source string) []string {
	if source == "" {
		return nil
	}
	parts := strings.SplitAfter(source, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return "\n"
	}
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isStringPrefix(word string) bool {
	if len(word) > 2 {
		return false
	}
	switch strings.ToLower(word) {
	case "r", "b", "u", "f", "rb", "br", "fr", "rf":
		return true
	}
	return false
}
