package env

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/reliverse/reliverse/internal/fsutil"
)

// line is one physical line of an env file. Lines without a key are
// comments, blanks or anything unparsable, and are written back verbatim.
type line struct {
	raw   string
	key   string
	value string
}

// File is an in-memory .env file. Comments, blank lines and ordering are
// preserved; key lines are addressable by key.
type File struct {
	lines []line
	index map[string]int
	// trailingNewline records whether the source ended with a newline.
	trailingNewline bool
	// eol is the line ending used when rendering, "\n" or "\r\n".
	eol string
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{index: make(map[string]int), trailingNewline: true, eol: "\n"}
}

// ParseFile parses env file content. A file using CRLF line endings is
// rendered back with CRLF.
func ParseFile(data []byte) *File {
	f := NewFile()
	text := string(data)
	if strings.Contains(text, "\r\n") {
		f.eol = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	if text == "" {
		return f
	}
	f.trailingNewline = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")

	for _, raw := range strings.Split(text, "\n") {
		ln := line{raw: raw}
		if key, value, ok := parseLine(raw); ok {
			ln.key = key
			ln.value = value
			// The first occurrence owns the key.
			if _, seen := f.index[key]; !seen {
				f.index[key] = len(f.lines)
			}
		}
		f.lines = append(f.lines, ln)
	}
	return f
}

// ReadFile reads and parses the env file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(data), nil
}

// Keys returns the keys in file order without duplicates.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for i, ln := range f.lines {
		if ln.key != "" && f.index[ln.key] == i {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Get returns the decoded value of key and whether a line for it exists.
func (f *File) Get(key string) (string, bool) {
	i, ok := f.index[key]
	if !ok {
		return "", false
	}
	return f.lines[i].value, true
}

// HasValue reports whether key is present with a non-empty value.
func (f *File) HasValue(key string) bool {
	v, ok := f.Get(key)
	return ok && strings.TrimSpace(v) != ""
}

// Set writes value for key. An existing line is rewritten in place; a new
// key is appended at the end.
func (f *File) Set(key, value string) {
	ln := line{raw: FormatLine(key, value), key: key, value: value}
	if i, ok := f.index[key]; ok {
		f.lines[i] = ln
		return
	}
	f.index[key] = len(f.lines)
	f.lines = append(f.lines, ln)
}

// Bytes renders the file.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	for i, ln := range f.lines {
		if i > 0 {
			buf.WriteString(f.eol)
		}
		buf.WriteString(ln.raw)
	}
	if len(f.lines) > 0 && f.trailingNewline {
		buf.WriteString(f.eol)
	}
	return buf.Bytes()
}

// WriteFile atomically writes the file to path.
func (f *File) WriteFile(path string) error {
	return fsutil.WriteFileAtomic(path, f.Bytes(), 0o600)
}

// FormatLine renders KEY="value" with quotes, backslashes and newlines
// escaped.
func FormatLine(key, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return key + `="` + r.Replace(value) + `"`
}

// NormalizeInput cleans a value pasted by a user for key: surrounding
// whitespace, an accidental "KEY=" or "KEY = " prefix and one pair of
// matching quotes are removed.
func NormalizeInput(key, raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "export ")
	if name, rest, ok := strings.Cut(v, "="); ok && strings.TrimSpace(name) == key {
		v = strings.TrimSpace(rest)
	}
	return unquote(v)
}

// parseLine splits a KEY=value line. Comments, blanks and lines without a
// valid key report ok=false.
func parseLine(raw string) (key, value string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "#") {
		return "", "", false
	}
	s = strings.TrimPrefix(s, "export ")
	name, rest, found := strings.Cut(s, "=")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if !ValidKeyName(name) {
		return "", "", false
	}
	return name, decodeValue(rest), true
}

// decodeValue turns the raw right-hand side of a line into its value.
func decodeValue(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	switch v[0] {
	case '"':
		if end := closingQuote(v, '"'); end > 0 {
			return unescapeDouble(v[1:end])
		}
	case '\'':
		if end := strings.IndexByte(v[1:], '\''); end >= 0 {
			return v[1 : end+1]
		}
	}
	// Unquoted: an inline comment starts at " #".
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

// closingQuote returns the index of the unescaped quote closing v[0].
func closingQuote(v string, q byte) int {
	for i := 1; i < len(v); i++ {
		switch v[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

func unescapeDouble(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// unquote strips one pair of matching surrounding quotes.
func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// loadOrEmpty reads the env file at path, returning an empty File when it
// does not exist.
func loadOrEmpty(path string) (*File, error) {
	f, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}
