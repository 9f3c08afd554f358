package pytoken

import (
	"strconv"
	"strings"
)

// LiteralValue reduces a Python literal expression to a canonical string
// so that two spellings of the same value compare equal: '(0, 1)' and
// '(0,1)', 'a' and "a", 1 and 1.0. It accepts what ast.literal_eval
// accepts in practice: strings, bytes, numbers, booleans, None, and
// tuples/lists/sets/dicts of literals. ok is false for anything else.
func LiteralValue(text string) (string, bool) {
	p := &litParser{s: text}
	v, ok := p.value()
	if !ok {
		return "", false
	}
	p.ws()
	if p.i != len(p.s) {
		return "", false
	}
	return v, true
}

type litParser struct {
	s string
	i int
}

func (p *litParser) ws() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r', '\f':
			p.i++
		case '\\':
			// Line continuation inside a literal.
			if p.i+1 < len(p.s) && (p.s[p.i+1] == '\n' || p.s[p.i+1] == '\r') {
				p.i += 2
			} else {
				return
			}
		default:
			return
		}
	}
}

func (p *litParser) value() (string, bool) {
	p.ws()
	if p.i >= len(p.s) {
		return "", false
	}
	c := p.s[p.i]
	switch {
	case c == '(':
		return p.sequence('(', ')')
	case c == '[':
		return p.sequence('[', ']')
	case c == '{':
		return p.braces()
	case c == '\'' || c == '"':
		return p.strLit("")
	case isIdentStart(c):
		start := p.i
		for p.i < len(p.s) && isIdentChar(p.s[p.i]) {
			p.i++
		}
		word := p.s[start:p.i]
		switch word {
		case "True", "False", "None":
			return "k:" + word, true
		}
		if isStringPrefix(word) && p.i < len(p.s) && (p.s[p.i] == '\'' || p.s[p.i] == '"') {
			return p.strLit(strings.ToLower(word))
		}
		return "", false
	case isDigit(c) || c == '.' || c == '+' || c == '-':
		return p.number()
	}
	return "", false
}

func (p *litParser) number() (string, bool) {
	start := p.i
	if p.s[p.i] == '+' || p.s[p.i] == '-' {
		p.i++
	}
	digits := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if isAlnum(c) || c == '_' || c == '.' {
			p.i++
			continue
		}
		if (c == '+' || c == '-') && p.i > digits && (p.s[p.i-1] == 'e' || p.s[p.i-1] == 'E') {
			p.i++
			continue
		}
		break
	}
	if p.i == digits {
		return "", false
	}
	tok := strings.ReplaceAll(p.s[start:p.i], "_", "")
	lower := strings.ToLower(tok)
	if strings.HasSuffix(lower, "j") {
		return "c:" + lower, true
	}
	if n, err := strconv.ParseInt(lower, 0, 64); err == nil {
		// Integers and equal-valued floats are the same dict key.
		return "f:" + strconv.FormatFloat(float64(n), 'g', -1, 64), true
	}
	if f, err := strconv.ParseFloat(lower, 64); err == nil {
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return "", false
}

// strLit parses one or more adjacent string literals and returns their
// concatenated content. f-strings are not literals and are rejected.
func (p *litParser) strLit(prefix string) (string, bool) {
	if strings.Contains(prefix, "f") {
		return "", false
	}
	kind := "s:"
	if strings.Contains(prefix, "b") {
		kind = "y:"
	}
	var content strings.Builder
	for {
		quote := p.s[p.i]
		closer := string(quote)
		if strings.HasPrefix(p.s[p.i:], strings.Repeat(string(quote), 3)) {
			closer = strings.Repeat(string(quote), 3)
		}
		p.i += len(closer)
		end := -1
		for j := p.i; j < len(p.s); j++ {
			if p.s[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(p.s[j:], closer) {
				end = j
				break
			}
			if len(closer) == 1 && (p.s[j] == '\n' || p.s[j] == '\r') {
				return "", false
			}
		}
		if end < 0 {
			return "", false
		}
		content.WriteString(p.s[p.i:end])
		p.i = end + len(closer)

		// Adjacent literals concatenate.
		p.ws()
		if p.i < len(p.s) && (p.s[p.i] == '\'' || p.s[p.i] == '"') {
			continue
		}
		if p.i < len(p.s) && isIdentStart(p.s[p.i]) {
			start := p.i
			for p.i < len(p.s) && isIdentChar(p.s[p.i]) {
				p.i++
			}
			word := p.s[start:p.i]
			if isStringPrefix(word) && p.i < len(p.s) && (p.s[p.i] == '\'' || p.s[p.i] == '"') {
				if strings.Contains(strings.ToLower(word), "f") {
					return "", false
				}
				continue
			}
			return "", false
		}
		return kind + content.String(), true
	}
}

func (p *litParser) sequence(open, close byte) (string, bool) {
	p.i++ // consume open
	var elems []string
	sawComma := false
	for {
		p.ws()
		if p.i >= len(p.s) {
			return "", false
		}
		if p.s[p.i] == close {
			p.i++
			break
		}
		v, ok := p.value()
		if !ok {
			return "", false
		}
		elems = append(elems, v)
		p.ws()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			sawComma = true
			p.i++
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == close {
			p.i++
			break
		}
		return "", false
	}
	if open == '(' {
		if len(elems) == 1 && !sawComma {
			// Parenthesized expression, not a tuple.
			return elems[0], true
		}
		return "t:(" + strings.Join(elems, ",") + ")", true
	}
	return "l:[" + strings.Join(elems, ",") + "]", true
}

// braces parses a dict or set display.
func (p *litParser) braces() (string, bool) {
	p.i++ // consume {
	p.ws()
	if p.i < len(p.s) && p.s[p.i] == '}' {
		p.i++
		return "d:{}", true
	}
	first, ok := p.value()
	if !ok {
		return "", false
	}
	p.ws()
	if p.i < len(p.s) && p.s[p.i] == ':' {
		// Dict display.
		pairs := []string{}
		key := first
		for {
			p.i++ // consume :
			v, ok := p.value()
			if !ok {
				return "", false
			}
			pairs = append(pairs, key+"="+v)
			p.ws()
			if p.i < len(p.s) && p.s[p.i] == ',' {
				p.i++
				p.ws()
				if p.i < len(p.s) && p.s[p.i] == '}' {
					p.i++
					return "d:{" + strings.Join(pairs, ",") + "}", true
				}
				key, ok = p.value()
				if !ok {
					return "", false
				}
				p.ws()
				if p.i >= len(p.s) || p.s[p.i] != ':' {
					return "", false
				}
				continue
			}
			if p.i < len(p.s) && p.s[p.i] == '}' {
				p.i++
				return "d:{" + strings.Join(pairs, ",") + "}", true
			}
			return "", false
		}
	}
	// Set display.
	elems := []string{first}
	for {
		p.ws()
		if p.i >= len(p.s) {
			return "", false
		}
		if p.s[p.i] == '}' {
			p.i++
			return "set:{" + strings.Join(elems, ",") + "}", true
		}
		if p.s[p.i] != ',' {
			return "", false
		}
		p.i++
		p.ws()
		if p.i < len(p.s) && p.s[p.i] == '}' {
			p.i++
			return "set:{" + strings.Join(elems, ",") + "}", true
		}
		v, ok := p.value()
		if !ok {
			return "", false
		}
		elems = append(elems, v)
	}
}
