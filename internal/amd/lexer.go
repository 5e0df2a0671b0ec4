package amd

import "strings"

// StripComments blanks out // line comments and /* */ block comments in src.
// Comment bytes are replaced by spaces (newlines are kept) so offsets into the
// result match offsets into src. Quoted strings, including template literals,
// are left untouched, so "http://host" survives.
//
// Regular expression literals are not recognised; a regex containing a quote
// or a comment opener can confuse the scan.
func StripComments(src string) string {
	b := []byte(src)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"' || c == '\'' || c == '`':
			i = skipString(b, i)
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			for i < len(b) && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(b) && b[i+1] == '*':
			end := strings.Index(string(b[i+2:]), "*/")
			stop := len(b)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			for ; i < stop; i++ {
				if b[i] != '\n' && b[i] != '\r' {
					b[i] = ' '
				}
			}
		default:
			i++
		}
	}
	return string(b)
}

// blankStrings replaces the contents of every string literal in code with
// spaces, keeping the quotes and newlines, so a pattern search cannot match
// inside a literal. code must already be free of comments.
func blankStrings(code string) string {
	b := []byte(code)
	for i := 0; i < len(b); {
		if c := b[i]; c != '"' && c != '\'' && c != '`' {
			i++
			continue
		}
		end := skipString(b, i)
		stop := end
		if end-1 > i && b[end-1] == b[i] {
			stop = end - 1
		}
		for j := i + 1; j < stop; j++ {
			if b[j] != '\n' && b[j] != '\r' {
				b[j] = ' '
			}
		}
		i = end
	}
	return string(b)
}

// skipString returns the index just past the string literal opening at b[i].
// An unterminated literal runs to the end of the input.
func skipString(b []byte, i int) int {
	quote := b[i]
	i++
	for i < len(b) {
		switch b[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			if quote != '`' {
				return i
			}
		}
		i++
	}
	return len(b)
}

// parseStringArray parses the array literal starting at src[open] == '['.
// Only quoted strings separated by commas are accepted; a trailing comma is
// rejected.
func parseStringArray(src string, open int) ([]string, error) {
	fail := func(pos int, reason string) error {
		return &ParseError{Offset: pos, Reason: reason}
	}

	items := []string{}
	i := skipSpace(src, open+1)
	if i < len(src) && src[i] == ']' {
		return items, nil
	}
	for {
		if i >= len(src) {
			return nil, fail(open, "unterminated array")
		}
		if src[i] != '"' && src[i] != '\'' {
			return nil, fail(i, "expected quoted string, found "+quoteByte(src[i]))
		}
		s, next, err := readQuoted(src, i)
		if err != nil {
			return nil, err
		}
		items = append(items, s)

		i = skipSpace(src, next)
		if i >= len(src) {
			return nil, fail(open, "unterminated array")
		}
		switch src[i] {
		case ']':
			return items, nil
		case ',':
			i = skipSpace(src, i+1)
			if i < len(src) && src[i] == ']' {
				return nil, fail(i, "trailing comma")
			}
		default:
			return nil, fail(i, "expected ',' or ']', found "+quoteByte(src[i]))
		}
	}
}

// readQuoted decodes the string literal starting at src[i] and returns it with
// the index just past the closing quote.
func readQuoted(src string, i int) (string, int, error) {
	quote := src[i]
	var sb strings.Builder
	for j := i + 1; j < len(src); j++ {
		c := src[j]
		switch {
		case c == quote:
			return sb.String(), j + 1, nil
		case c == '\n':
			return "", 0, &ParseError{Offset: j, Reason: "newline in string"}
		case c == '\\' && j+1 < len(src):
			j++
			switch src[j] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(src[j])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, &ParseError{Offset: i, Reason: "unterminated string"}
}

func skipSpace(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

func quoteByte(c byte) string {
	return "'" + string(rune(c)) + "'"
}
