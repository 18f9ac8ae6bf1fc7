// Package registry maps file extensions to the source kind that reads them.
// The connector's auto-detection goes through a Registry, so callers can add
// extensions (for example ".tsv" read as CSV) without touching the dispatcher.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/dataconnector/pkg/connector/core"
	"github.com/ajitpratap0/dataconnector/pkg/errors"
	"github.com/ajitpratap0/dataconnector/pkg/logger"
)

// Registry manages extension registration and lookup.
type Registry struct {
	kinds  map[string]core.SourceKind
	mu     sync.RWMutex
	logger *zap.Logger
}

// builtin lists the extensions every default registry knows.
var builtin = []struct {
	ext  string
	kind core.SourceKind
}{
	{".csv", core.SourceKindCSV},
	{".xlsx", core.SourceKindExcel},
	{".xls", core.SourceKindExcel},
	{".json", core.SourceKindJSON},
	{".jsonl", core.SourceKindJSON},
	{".ndjson", core.SourceKindJSON},
	{".db", core.SourceKindSQLite},
	{".sqlite", core.SourceKindSQLite},
	{".sqlite3", core.SourceKindSQLite},
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:  make(map[string]core.SourceKind),
		logger: logger.Get().With(zap.String("component", "extension_registry")),
	}
}

// Default creates a registry seeded with the built-in extensions.
func Default() *Registry {
	r := NewRegistry()
	for _, b := range builtin {
		r.kinds[b.ext] = b.kind
	}
	return r
}

// WithLogger replaces the registry's logger.
func (r *Registry) WithLogger(l *zap.Logger) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l.With(zap.String("component", "extension_registry"))
	return r
}

// Register maps ext to kind. Extensions are case-insensitive and the leading
// dot is optional. Only file kinds can be registered and an extension can be
// registered once.
func (r *Registry) Register(ext string, kind core.SourceKind) error {
	norm := normalize(ext)
	if norm == "." {
		return errors.New(errors.ErrorTypeConfig, "extension must not be empty")
	}
	if !kind.IsFile() {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source kind %s cannot be read from a file extension", kind)).
			WithDetail("extension", norm)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.kinds[norm]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("extension %s already registered as %s", norm, existing)).
			WithDetail("extension", norm)
	}

	r.kinds[norm] = kind
	r.logger.Debug("extension registered", zap.String("extension", norm), zap.String("kind", string(kind)))
	return nil
}

// Lookup returns the kind registered for ext.
func (r *Registry) Lookup(ext string) (core.SourceKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, ok := r.kinds[normalize(ext)]
	return kind, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.kinds))
	for ext := range r.kinds {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Kinds returns the distinct kinds with at least one extension, sorted.
func (r *Registry) Kinds() []core.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[core.SourceKind]bool)
	kinds := make([]core.SourceKind, 0, len(core.FileKinds))
	for _, kind := range r.kinds {
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
