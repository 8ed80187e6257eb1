package db

import (
	"strings"
	"unicode"
)

// sqlScanner splits a migration file into statements. Semicolons inside
// quotes, comments and dollar-quoted bodies do not terminate a statement.
type sqlScanner struct {
	src        string
	pos        int
	current    strings.Builder
	statements []string
}

func splitSQLStatements(content string) []string {
	s := &sqlScanner{src: content}
	s.run()

	return s.statements
}

func (s *sqlScanner) run() {
	for s.pos < len(s.src) {
		switch {
		case s.hasPrefix("--"):
			s.skipLineComment()
		case s.hasPrefix("/*"):
			s.skipBlockComment()
		case s.src[s.pos] == '\'' || s.src[s.pos] == '"':
			s.copyQuoted(s.src[s.pos])
		case s.src[s.pos] == '$':
			if tag := dollarTag(s.src[s.pos:]); tag != "" {
				s.copyDollarQuoted(tag)
			} else {
				s.copyByte()
			}
		case s.src[s.pos] == ';':
			s.flush()
			s.pos++
		default:
			s.copyByte()
		}
	}

	s.flush()
}

func (s *sqlScanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func (s *sqlScanner) copyByte() {
	s.current.WriteByte(s.src[s.pos])
	s.pos++
}

func (s *sqlScanner) skipLineComment() {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		s.pos = len(s.src)
		return
	}

	s.pos += end
}

func (s *sqlScanner) skipBlockComment() {
	end := strings.Index(s.src[s.pos+2:], "*/")
	if end < 0 {
		s.pos = len(s.src)
		return
	}

	s.pos += end + 4
}

// copyQuoted copies a quoted literal or identifier, including doubled quote
// escapes, verbatim.
func (s *sqlScanner) copyQuoted(quote byte) {
	s.copyByte()

	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.copyByte()

		if ch == quote {
			if s.pos < len(s.src) && s.src[s.pos] == quote {
				s.copyByte()
				continue
			}

			return
		}
	}
}

func (s *sqlScanner) copyDollarQuoted(tag string) {
	s.current.WriteString(tag)
	s.pos += len(tag)

	end := strings.Index(s.src[s.pos:], tag)
	if end < 0 {
		s.current.WriteString(s.src[s.pos:])
		s.pos = len(s.src)

		return
	}

	s.current.WriteString(s.src[s.pos : s.pos+end+len(tag)])
	s.pos += end + len(tag)
}

func (s *sqlScanner) flush() {
	if stmt := strings.TrimSpace(s.current.String()); stmt != "" {
		s.statements = append(s.statements, stmt)
	}

	s.current.Reset()
}

// dollarTag returns the opening "$tag$" at the start of content, or "" when
// content starts with a positional parameter or a lone dollar.
func dollarTag(content string) string {
	for i := 1; i < len(content); i++ {
		ch := content[i]
		if ch == '$' {
			return content[:i+1]
		}

		if ch != '_' && !unicode.IsLetter(rune(ch)) && (i == 1 || !unicode.IsDigit(rune(ch))) {
			return ""
		}
	}

	return ""
}

// extractVersion returns the numeric prefix of a migration file name.
func extractVersion(filename string) string {
	version, _, _ := strings.Cut(filename, "_")
	return version
}
