package alias

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyBase is returned when a base string yields no prefix.
var ErrEmptyBase = errors.New("alias: empty base string")

// prefixes caches segment -> prefix. Read-heavy, written once per key.
var prefixes sync.Map

// Prefix returns the alias prefix of path. Only the last dot-separated
// segment is considered. Returns "" for an empty segment.
func Prefix(path string) string {
	segment := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		segment = path[i+1:]
	}
	if segment == "" {
		return ""
	}
	if p, ok := prefixes.Load(segment); ok {
		return p.(string)
	}
	p, _ := prefixes.LoadOrStore(segment, derive(segment))
	return p.(string)
}

// derive computes the camel-case initials of segment.
func derive(segment string) string {
	segment = norm.NFC.String(segment)

	first, size := utf8.DecodeRuneInString(segment)
	var b strings.Builder
	b.WriteRune(first)
	for _, r := range segment[size:] {
		if unicode.IsUpper(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Manager assigns unique aliases within one compilation.
type Manager struct {
	used map[string]struct{}
	next map[string]int // prefix -> next numeric suffix to try
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		used: make(map[string]struct{}),
		next: make(map[string]int),
	}
}

// Register derives the prefix of base and returns an alias not yet handed
// out by this Manager.
func (m *Manager) Register(base string) (string, error) {
	prefix := Prefix(base)
	if prefix == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyBase, base)
	}
	return m.Reserve(prefix), nil
}

// Reserve hands out prefix itself when free, otherwise prefix followed by
// the next free counter value for that prefix.
func (m *Manager) Reserve(prefix string) string {
	if _, taken := m.used[prefix]; !taken {
		m.used[prefix] = struct{}{}
		return prefix
	}

	n, ok := m.next[prefix]
	if !ok {
		n = 2
	}
	for {
		candidate := prefix + strconv.Itoa(n)
		n++
		if _, taken := m.used[candidate]; !taken {
			m.next[prefix] = n
			m.used[candidate] = struct{}{}
			return candidate
		}
	}
}
