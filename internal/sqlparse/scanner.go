// Package sqlparse scans and parses SQL into an abstract syntax tree.
package sqlparse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eofRune = -1

// ScanError describes a positional scanning failure.
type ScanError struct {
	Line    int
	Column  int
	Offset  int
	Message string
}

// Error returns the printable representation of the scan error.
func (e *ScanError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Scan tokenizes SQL source. Comments are returned separately as trivia.
func Scan(src string) ([]Token, []Comment, error) {
	if !utf8.ValidString(src) {
		return nil, nil, &ScanError{Line: 1, Column: 1, Message: "input is not valid UTF-8"}
	}
	s := &scanner{
		src:    src,
		tokens: make([]Token, 0, len(src)/4+1),
		line:   1,
		column: 1,
	}
	if err := s.scan(); err != nil {
		return nil, s.comments, err
	}
	return s.tokens, s.comments, nil
}

// scanner maintains scanning state over SQL source.
type scanner struct {
	src      string
	tokens   []Token
	comments []Comment
	index    int
	line     int
	column   int
}

func (s *scanner) scan() error {
	for s.index < len(s.src) {
		r := s.peek()
		switch {
		case r == eofRune:
			s.index = len(s.src)
		case unicode.IsSpace(r):
			s.consumeWhitespace()
		case r == '-' && s.peekNext() == '-':
			s.consumeLineComment()
		case r == '/' && s.peekNext() == '*':
			if err := s.consumeBlockComment(); err != nil {
				return err
			}
		case r == '\'':
			if err := s.consumeStringLiteral(); err != nil {
				return err
			}
		case r == '$' && (s.peekNext() == '$' || unicode.IsLetter(s.peekNext())):
			if err := s.consumeDollarQuoted(); err != nil {
				return err
			}
		case r == '$' && isDigit(s.peekNext()):
			s.consumePositionalParam()
		case r == '?':
			s.consumeToken(KindParam, 1)
		case r == ':' && isIdentifierStart(s.peekNext()):
			s.consumeNamedParam()
		case r == '"' || r == '`':
			if err := s.consumeQuotedIdentifier(); err != nil {
				return err
			}
		case isIdentifierStart(r):
			s.consumeIdentifier()
		case isDigit(r):
			s.consumeNumber()
		case isSymbolRune(r):
			s.consumeSymbol()
		default:
			return s.errorf("unexpected character %q", r)
		}
	}
	s.emit(KindEOF, "", s.index, s.line, s.column)
	return nil
}

func (s *scanner) consumeWhitespace() {
	for {
		r := s.peek()
		if r == eofRune || !unicode.IsSpace(r) {
			return
		}
		s.advance()
	}
}

func (s *scanner) consumeLineComment() {
	startOffset, startLine := s.index, s.line
	s.advance() // first '-'
	s.advance() // second '-'
	bodyStart := s.index
	for {
		r := s.peek()
		if r == eofRune || r == '\n' || r == '\r' {
			break
		}
		s.advance()
	}
	s.comments = append(s.comments, Comment{
		Text:   strings.TrimSpace(s.src[bodyStart:s.index]),
		Line:   startLine,
		Offset: startOffset,
	})
}

func (s *scanner) consumeBlockComment() error {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advance() // '/'
	s.advance() // '*'
	bodyStart := s.index
	for {
		if s.index >= len(s.src) {
			return &ScanError{Line: startLine, Column: startCol, Offset: startOffset,
				Message: "unterminated block comment"}
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			body := s.src[bodyStart:s.index]
			s.advance() // '*'
			s.advance() // '/'
			s.comments = append(s.comments, Comment{
				Text:   strings.TrimSpace(body),
				Line:   startLine,
				Offset: startOffset,
			})
			return nil
		}
		s.advance()
	}
}

func (s *scanner) consumeStringLiteral() error {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advance() // opening quote
	for {
		if s.index >= len(s.src) {
			return &ScanError{Line: startLine, Column: startCol, Offset: startOffset,
				Message: "unterminated string literal"}
		}
		r := s.peek()
		s.advance()
		if r == '\'' {
			if s.peek() == '\'' {
				s.advance()
				continue
			}
			break
		}
	}
	s.emit(KindString, s.src[startOffset:s.index], startOffset, startLine, startCol)
	return nil
}

// consumeDollarQuoted scans $tag$ ... $tag$ bodies, emitting them as a
// single string token. A lone '$' followed by a letter that never closes
// into a tag is rescanned as an identifier-ish symbol error.
func (s *scanner) consumeDollarQuoted() error {
	startOffset, startLine, startCol := s.index, s.line, s.column

	tagEnd := s.index + 1
	for tagEnd < len(s.src) {
		c := s.src[tagEnd]
		if c == '$' {
			break
		}
		if !isTagByte(c) {
			return s.errorf("unexpected character %q", '$')
		}
		tagEnd++
	}
	if tagEnd >= len(s.src) {
		return s.errorf("unexpected character %q", '$')
	}
	delim := s.src[s.index : tagEnd+1] // "$tag$" or "$$"

	closing := strings.Index(s.src[tagEnd+1:], delim)
	if closing < 0 {
		return &ScanError{Line: startLine, Column: startCol, Offset: startOffset,
			Message: fmt.Sprintf("unterminated dollar-quoted string %s", delim)}
	}
	end := tagEnd + 1 + closing + len(delim)
	for s.index < end {
		s.advance()
	}
	s.emit(KindString, s.src[startOffset:end], startOffset, startLine, startCol)
	return nil
}

func (s *scanner) consumePositionalParam() {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advance() // '$'
	for isDigit(s.peek()) {
		s.advance()
	}
	s.emit(KindParam, s.src[startOffset:s.index], startOffset, startLine, startCol)
}

func (s *scanner) consumeNamedParam() {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advance() // ':'
	for isIdentifierPart(s.peek()) {
		s.advance()
	}
	s.emit(KindParam, s.src[startOffset:s.index], startOffset, startLine, startCol)
}

func (s *scanner) consumeQuotedIdentifier() error {
	startOffset, startLine, startCol := s.index, s.line, s.column
	quote := s.peek()
	s.advance() // opening quote
	for {
		if s.index >= len(s.src) {
			return &ScanError{Line: startLine, Column: startCol, Offset: startOffset,
				Message: "unterminated quoted identifier"}
		}
		r := s.peek()
		s.advance()
		if r == quote {
			if s.peek() == quote {
				s.advance()
				continue
			}
			break
		}
	}
	s.emit(KindIdentifier, s.src[startOffset:s.index], startOffset, startLine, startCol)
	return nil
}

func (s *scanner) consumeIdentifier() {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advance()
	for isIdentifierPart(s.peek()) {
		s.advance()
	}
	text := s.src[startOffset:s.index]
	upper := strings.ToUpper(text)
	if IsKeyword(upper) {
		s.emit(KindKeyword, upper, startOffset, startLine, startCol)
		return
	}
	s.emit(KindIdentifier, text, startOffset, startLine, startCol)
}

func (s *scanner) consumeNumber() {
	startOffset, startLine, startCol := s.index, s.line, s.column
	s.advanceDigits()
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		s.advanceDigits()
	}
	if next := s.peek(); next == 'e' || next == 'E' {
		s.advance()
		if sign := s.peek(); sign == '+' || sign == '-' {
			s.advance()
		}
		s.advanceDigits()
	}
	s.emit(KindNumber, s.src[startOffset:s.index], startOffset, startLine, startCol)
}

func (s *scanner) consumeSymbol() {
	startOffset, startLine, startCol := s.index, s.line, s.column
	first := s.peek()
	s.advance()
	switch first {
	case '<':
		if next := s.peek(); next == '=' || next == '>' {
			s.advance()
		}
	case '>', '!':
		if s.peek() == '=' {
			s.advance()
		}
	case ':':
		if s.peek() == ':' {
			s.advance()
		}
	case '|':
		if s.peek() == '|' {
			s.advance()
		}
	}
	s.emit(KindSymbol, s.src[startOffset:s.index], startOffset, startLine, startCol)
}

func (s *scanner) consumeToken(kind Kind, width int) {
	startOffset, startLine, startCol := s.index, s.line, s.column
	for i := 0; i < width; i++ {
		s.advance()
	}
	s.emit(kind, s.src[startOffset:s.index], startOffset, startLine, startCol)
}

func (s *scanner) advanceDigits() {
	for isDigit(s.peek()) {
		s.advance()
	}
}

func (s *scanner) emit(kind Kind, text string, offset, line, column int) {
	s.tokens = append(s.tokens, Token{
		Kind:   kind,
		Text:   text,
		Offset: offset,
		Line:   line,
		Column: column,
	})
}

func (s *scanner) peek() rune {
	if s.index >= len(s.src) {
		return eofRune
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.index:])
	return r
}

func (s *scanner) peekNext() rune {
	idx := s.index
	if idx >= len(s.src) {
		return eofRune
	}
	_, size := utf8.DecodeRuneInString(s.src[idx:])
	idx += size
	if idx >= len(s.src) {
		return eofRune
	}
	r, _ := utf8.DecodeRuneInString(s.src[idx:])
	return r
}

func (s *scanner) advance() rune {
	if s.index >= len(s.src) {
		return eofRune
	}
	r, size := utf8.DecodeRuneInString(s.src[s.index:])
	s.index += size
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

func (s *scanner) errorf(format string, args ...any) error {
	return &ScanError{
		Line:    s.line,
		Column:  s.column,
		Offset:  s.index,
		Message: fmt.Sprintf(format, args...),
	}
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isTagByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSymbolRune(r rune) bool {
	switch r {
	case '(', ')', ',', ';', '.', '*', '=', '+', '-', '/', '%', '<', '>', '!', ':', '[', ']', '|':
		return true
	}
	return false
}
