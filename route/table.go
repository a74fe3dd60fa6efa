package route

import (
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Meta is the authorization metadata a protected route declares. An empty
// Roles set means the route only requires authentication.
type Meta struct {
	Path  string   `yaml:"path"`
	Roles []string `yaml:"roles"`
}

// Table maps normalized route paths to their declared metadata. A Table is
// populated during startup and read concurrently by the guard afterwards.
type Table struct {
	mu     sync.RWMutex
	routes map[string]Meta
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: make(map[string]Meta)}
}

// Add registers metadata for a path, replacing any earlier declaration.
func (t *Table) Add(meta Meta) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[Normalize(meta.Path)] = meta
}

// Lookup returns the metadata declared for the path, matched on the
// normalized form. The second return is false when the route declares none,
// which the guard reads as authenticated-only.
func (t *Table) Lookup(path string) (Meta, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	meta, ok := t.routes[Normalize(path)]
	return meta, ok
}

// Len returns the number of declared routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Normalize strips a trailing slash and any query/fragment suffix so that
// "/auth/users/", "/auth/users?tab=2", and "/auth/users" address the same
// declaration. The root path "/" is preserved.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// Section returns the last non-empty segment of the path, the token the
// legacy section policy matches against role grants. A root path yields "".
func Section(path string) string {
	path = Normalize(path)
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

type routesFile struct {
	Routes []Meta `yaml:"routes"`
}

// ParseYAML reads route declarations from r. The document shape is:
//
//	routes:
//	  - path: /auth/users
//	    roles: [admin]
//	  - path: /auth/products
//	    roles: [user, admin]
func ParseYAML(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	table := NewTable()
	for _, meta := range file.Routes {
		table.Add(meta)
	}
	return table, nil
}

// LoadYAML reads route declarations from the file at path.
func LoadYAML(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseYAML(f)
}
