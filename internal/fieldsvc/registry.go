// Package fieldsvc runs named handlers for fields whose value can only be
// computed once the complete exported page set exists (e.g. a table of
// contents needs every page's final number).
package fieldsvc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/atelier-guides/maquette/internal/export"
	"github.com/atelier-guides/maquette/internal/types"
)

// Handler computes one field value for one page. It returns a plain string
// for text/meta fields or a JSON-serialized string for structured fields.
type Handler func(ctx context.Context, fc *Context) (string, error)

// Context is what a handler sees: the guide, the page being augmented, the
// complete ordered list of already-exported pages, and the store for
// supplementary lookups. It is only constructible from a finished extractor
// document, which enforces the build-then-compute stage boundary.
type Context struct {
	GuideID string
	Guide   *types.Guide
	Page    *export.Page
	Pages   []*export.Page
	Store   export.Store
}

// NewContext builds a handler context from a finished first-pass document.
func NewContext(doc *export.Document, guide *types.Guide, page *export.Page, store export.Store) *Context {
	return &Context{
		GuideID: guide.ID,
		Guide:   guide,
		Page:    page,
		Pages:   doc.Pages,
		Store:   store,
	}
}

// Registry holds field service handlers by id. Thread-safe.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{handlers: make(map[string]Handler), logger: logger}
}

// DefaultRegistry returns a registry with the built-in handlers registered.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(SommaireServiceID, Sommaire)
	return r
}

// Register adds a handler under a service id, replacing any existing one.
func (r *Registry) Register(id string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = h
	r.logger.Info("registered field service", "service_id", id)
}

// List returns all registered service ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run invokes the handler registered under id. An unregistered id is an
// error naming the requested id and every implemented one; callers treat it
// as fatal for the field being computed, not for the export.
func (r *Registry) Run(ctx context.Context, id string, fc *Context) (string, error) {
	r.mu.RLock()
	h, ok := r.handlers[id]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("field service %q is not registered (implemented: %s)",
			id, strings.Join(r.List(), ", "))
	}
	return h(ctx, fc)
}
