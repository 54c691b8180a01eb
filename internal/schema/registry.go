// Package schema holds the DefraDB collection definitions for guides,
// templates, chemins-de-fer and pages, and applies them at startup.
package schema

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed schemas/*.graphql
var schemaFS embed.FS

// Schema represents a DefraDB collection schema.
type Schema struct {
	Name  string // collection name (e.g. "Guide")
	SDL   string // GraphQL SDL definition
	Order int    // initialization order (lower = first)
}

// registry holds all schemas in dependency order. Parent collections must be
// created before the collections that reference them.
var registry = []Schema{
	{Name: "Guide", Order: 1},
	{Name: "Template", Order: 2},       // standalone, referenced by name from pages
	{Name: "GuideStructure", Order: 3}, // depends on Guide
	{Name: "Cluster", Order: 4},        // depends on Guide
	{Name: "Poi", Order: 5},            // depends on Cluster
	{Name: "Inspiration", Order: 6},    // depends on Guide
	{Name: "CheminDeFer", Order: 7},    // depends on Guide
	{Name: "Page", Order: 8},           // depends on CheminDeFer, Template
}

// All returns all schemas in dependency order, with SDL loaded from the
// embedded .graphql files.
func All() ([]Schema, error) {
	schemas := make([]Schema, len(registry))
	copy(schemas, registry)

	for i := range schemas {
		filename := fmt.Sprintf("schemas/%s.graphql", strings.ToLower(schemas[i].Name))
		content, err := schemaFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", schemas[i].Name, err)
		}
		schemas[i].SDL = string(content)
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Order < schemas[j].Order
	})

	return schemas, nil
}

// Get returns a single schema by collection name.
func Get(name string) (*Schema, error) {
	for _, s := range registry {
		if s.Name == name {
			filename := fmt.Sprintf("schemas/%s.graphql", strings.ToLower(s.Name))
			content, err := schemaFS.ReadFile(filename)
			if err != nil {
				return nil, fmt.Errorf("failed to read schema %s: %w", s.Name, err)
			}
			return &Schema{Name: s.Name, SDL: string(content), Order: s.Order}, nil
		}
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}
