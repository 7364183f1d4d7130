package dialect

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]Dialect)
)

// Register adds d to the registry under its name.
// Called by dialect plugins in their init() functions.
func Register(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name())] = d
}

// Get returns the dialect registered under name, ignoring case.
func Get(name string) (Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Lookup is Get with an error naming the registered dialects.
func Lookup(name string) (Dialect, error) {
	if d, ok := Get(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownDialect, name, strings.Join(List(), ", "))
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying d as the active dialect for a
// session or transaction.
func WithContext(ctx context.Context, d Dialect) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// FromContext returns the active dialect stored in ctx.
func FromContext(ctx context.Context) (Dialect, bool) {
	d, ok := ctx.Value(contextKey{}).(Dialect)
	return d, ok && d != nil
}
