// Package keyfile reads and writes the GLib key-file dialect used by flatpak
// metadata, .flatpakref files, remote configuration and instance info.
package keyfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrParse is returned for malformed input.
	ErrParse = errors.New("keyfile: parse error")
	// ErrGroupNotFound is returned when a group is missing.
	ErrGroupNotFound = errors.New("keyfile: group not found")
	// ErrKeyNotFound is returned when a key is missing from its group.
	ErrKeyNotFound = errors.New("keyfile: key not found")
)

// File is a parsed key file. Group and key order is preserved.
type File struct {
	groups []*group
}

type group struct {
	name string
	keys []string
	vals map[string]string
}

// New returns an empty key file.
func New() *File {
	return &File{}
}

// Parse reads a key file. Blank lines and lines starting with '#' are
// ignored; key/value pairs before the first group header are an error, as in
// GLib.
func Parse(data []byte) (*File, error) {
	f := New()
	var cur *group

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") || len(line) < 3 {
				return nil, fmt.Errorf("%w: line %d: invalid group header %q", ErrParse, lineNo, line)
			}
			cur = f.ensure(line[1 : len(line)-1])
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			return nil, fmt.Errorf("%w: line %d: expected key=value", ErrParse, lineNo)
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: line %d: key outside of any group", ErrParse, lineNo)
		}

		key := strings.TrimSpace(line[:idx])
		val, err := unescape(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, lineNo, err)
		}
		cur.set(key, val)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return f, nil
}

func (f *File) find(name string) *group {
	for _, g := range f.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

func (f *File) ensure(name string) *group {
	if g := f.find(name); g != nil {
		return g
	}
	g := &group{name: name, vals: make(map[string]string)}
	f.groups = append(f.groups, g)
	return g
}

func (g *group) set(key, val string) {
	if _, ok := g.vals[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.vals[key] = val
}

// Groups returns group names in file order.
func (f *File) Groups() []string {
	names := make([]string, 0, len(f.groups))
	for _, g := range f.groups {
		names = append(names, g.name)
	}
	return names
}

// HasGroup reports whether the group exists.
func (f *File) HasGroup(name string) bool {
	return f.find(name) != nil
}

// Keys returns the keys of a group in file order.
func (f *File) Keys(groupName string) ([]string, error) {
	g := f.find(groupName)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupName)
	}
	return append([]string(nil), g.keys...), nil
}

// String returns the unescaped value of group/key.
func (f *File) String(groupName, key string) (string, error) {
	g := f.find(groupName)
	if g == nil {
		return "", fmt.Errorf("%w: %s", ErrGroupNotFound, groupName)
	}
	v, ok := g.vals[key]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrKeyNotFound, groupName, key)
	}
	return v, nil
}

// Lookup returns the value and whether it was present.
func (f *File) Lookup(groupName, key string) (string, bool) {
	v, err := f.String(groupName, key)
	return v, err == nil
}

// Bool parses a "true"/"false" value.
func (f *File) Bool(groupName, key string) (bool, error) {
	v, err := f.String(groupName, key)
	if err != nil {
		return false, err
	}
	switch v {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s.%s: invalid boolean %q", ErrParse, groupName, key, v)
}

// List splits a ';'-separated list value. A trailing separator is allowed.
func (f *File) List(groupName, key string) ([]string, error) {
	v, err := f.String(groupName, key)
	if err != nil {
		return nil, err
	}
	v = strings.TrimSuffix(v, ";")
	if v == "" {
		return []string{}, nil
	}
	return strings.Split(v, ";"), nil
}

// Set stores a value, creating the group if needed.
func (f *File) Set(groupName, key, val string) {
	f.ensure(groupName).set(key, val)
}

// SetList stores a ';'-separated list.
func (f *File) SetList(groupName, key string, vals []string) {
	if len(vals) == 0 {
		f.Set(groupName, key, "")
		return
	}
	f.Set(groupName, key, strings.Join(vals, ";")+";")
}

// Map flattens the file into group -> key -> value.
func (f *File) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(f.groups))
	for _, g := range f.groups {
		m := make(map[string]string, len(g.vals))
		for k, v := range g.vals {
			m[k] = v
		}
		out[g.name] = m
	}
	return out
}

// FromMap builds a file from a map. Groups and keys are sorted so the
// encoding is deterministic.
func FromMap(m map[string]map[string]string) *File {
	f := New()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := f.ensure(name)
		keys := make([]string, 0, len(m[name]))
		for k := range m[name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			g.set(k, m[name][k])
		}
	}
	return f
}

// Bytes encodes the file.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	for i, g := range f.groups {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "[%s]\n", g.name)
		for _, k := range g.keys {
			fmt.Fprintf(&buf, "%s=%s\n", k, escape(g.vals[k]))
		}
	}
	return buf.Bytes()
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", errors.New("trailing escape")
		}
		switch s[i] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case ';':
			// list separators stay escaped for List to see
			b.WriteString(`\;`)
		default:
			return "", fmt.Errorf("invalid escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			if i+1 < len(s) && s[i+1] == ';' {
				b.WriteByte('\\')
				continue
			}
			b.WriteString(`\\`)
		case ' ':
			if i == 0 {
				b.WriteString(`\s`)
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
