package jsontree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// SyntaxError describes a recoverable problem found while parsing.
// The parser keeps going after recording one, so a single parse may
// report several.
type SyntaxError struct {
	// Offset is the byte offset where the problem starts.
	Offset int
	// Msg is a short description of the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokTrue
	tokFalse
	tokNull
	tokBad
)

type token struct {
	kind   tokenKind
	offset int
	length int
	str    string  // decoded payload for tokString
	num    float64 // payload for tokNumber
}

func (t token) end() int { return t.offset + t.length }

// scanner produces tokens from JSONC text. Whitespace and comments are
// consumed silently; lexical problems are recorded as SyntaxErrors and
// scanning continues at the next usable character.
type scanner struct {
	src  string
	pos  int
	errs []SyntaxError
}

func (s *scanner) errorf(offset int, format string, args ...any) {
	s.errs = append(s.errs, SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)})
}

// skipTrivia consumes whitespace, line comments and block comments.
func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			nl := strings.IndexByte(s.src[s.pos:], '\n')
			if nl == -1 {
				s.pos = len(s.src)
			} else {
				s.pos += nl + 1
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end == -1 {
				s.errorf(s.pos, "unterminated block comment")
				s.pos = len(s.src)
			} else {
				s.pos += end + 4
			}
		default:
			return
		}
	}
}

// next returns the next meaningful token.
func (s *scanner) next() token {
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, offset: s.pos}
	}

	start := s.pos
	switch c := s.src[s.pos]; c {
	case '{':
		s.pos++
		return token{kind: tokLBrace, offset: start, length: 1}
	case '}':
		s.pos++
		return token{kind: tokRBrace, offset: start, length: 1}
	case '[':
		s.pos++
		return token{kind: tokLBracket, offset: start, length: 1}
	case ']':
		s.pos++
		return token{kind: tokRBracket, offset: start, length: 1}
	case ':':
		s.pos++
		return token{kind: tokColon, offset: start, length: 1}
	case ',':
		s.pos++
		return token{kind: tokComma, offset: start, length: 1}
	case '"':
		return s.scanString()
	default:
		if c == '-' || (c >= '0' && c <= '9') {
			return s.scanNumber()
		}
		if isIdentByte(c) {
			return s.scanKeyword()
		}
		s.errorf(start, "unexpected character %q", c)
		s.pos++
		return token{kind: tokBad, offset: start, length: 1}
	}
}

// scanString decodes a double-quoted string with the standard JSON
// escapes. An unterminated string is cut at end of line (or input) and
// reported, mirroring how editors recover.
func (s *scanner) scanString() token {
	start := s.pos
	s.pos++ // opening quote
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '"':
			s.pos++
			return token{kind: tokString, offset: start, length: s.pos - start, str: sb.String()}
		case c == '\n':
			s.errorf(start, "unterminated string")
			return token{kind: tokString, offset: start, length: s.pos - start, str: sb.String()}
		case c == '\\':
			if s.pos+1 >= len(s.src) {
				s.pos++
				continue
			}
			esc := s.src[s.pos+1]
			s.pos += 2
			switch esc {
			case '"', '\\', '/':
				sb.WriteByte(esc)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				r, n := s.scanUnicodeEscape()
				sb.WriteRune(r)
				s.pos += n
			default:
				s.errorf(s.pos-2, "invalid escape character %q", esc)
			}
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	s.errorf(start, "unterminated string")
	return token{kind: tokString, offset: start, length: s.pos - start, str: sb.String()}
}

// scanUnicodeEscape decodes the 4 hex digits after a \u escape, pairing
// surrogate halves when a second \uXXXX follows immediately. Returns the
// rune and the number of extra bytes consumed beyond the initial \u.
func (s *scanner) scanUnicodeEscape() (rune, int) {
	if s.pos+4 > len(s.src) {
		s.errorf(s.pos-2, "invalid unicode escape")
		return '�', 0
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 32)
	if err != nil {
		s.errorf(s.pos-2, "invalid unicode escape")
		return '�', 0
	}
	r := rune(v)
	if utf16.IsSurrogate(r) && s.pos+10 <= len(s.src) && s.src[s.pos+4] == '\\' && s.src[s.pos+5] == 'u' {
		if v2, err := strconv.ParseUint(s.src[s.pos+6:s.pos+10], 16, 32); err == nil {
			if dec := utf16.DecodeRune(r, rune(v2)); dec != '�' {
				return dec, 10
			}
		}
	}
	return r, 4
}

func (s *scanner) scanNumber() token {
	start := s.pos
	if s.src[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
	}

	text := s.src[start:s.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.errorf(start, "invalid number %q", text)
		return token{kind: tokBad, offset: start, length: s.pos - start}
	}
	return token{kind: tokNumber, offset: start, length: s.pos - start, num: num}
}

func (s *scanner) scanKeyword() token {
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	word := s.src[start:s.pos]
	length := s.pos - start
	switch word {
	case "true":
		return token{kind: tokTrue, offset: start, length: length}
	case "false":
		return token{kind: tokFalse, offset: start, length: length}
	case "null":
		return token{kind: tokNull, offset: start, length: length}
	}
	s.errorf(start, "unexpected literal %q", word)
	return token{kind: tokBad, offset: start, length: length}
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
