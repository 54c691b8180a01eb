// Package export builds the first-pass export document of a guide: pages
// loaded from the document store, field values partitioned into typed
// buckets against the owning template's field definitions.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/atelier-guides/maquette/internal/mapping"
	"github.com/atelier-guides/maquette/internal/types"
)

// Version identifies the export document format.
const Version = "2"

// Options tune a single extraction run.
type Options struct {
	// Language overrides the guide's language in the export meta.
	Language string
}

// ComputedField marks a field whose value is produced by a field service
// after the full page set exists.
type ComputedField struct {
	Page      *Page
	FieldName string
	FieldType types.FieldType
	ServiceID string
}

// Result is a finished first-pass extraction.
type Result struct {
	Doc      *Document
	Guide    *types.Guide
	Computed []ComputedField

	// MaxChars collects per-field max_chars from the templates seen during
	// extraction, for the normalizer's length table.
	MaxChars map[string]int
}

// Extractor produces first-pass export documents.
type Extractor struct {
	store  Store
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(store Store, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{store: store, logger: logger}
}

// Extract loads the guide, its chemin-de-fer and pages, and assembles the
// first-pass document. A missing guide or chemin-de-fer is fatal; a missing
// page template degrades to a page with empty content buckets.
func (e *Extractor) Extract(ctx context.Context, guideID string, opts Options) (*Result, error) {
	guide, err := e.store.GuideByID(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("export extract: %w", err)
	}

	cdf, err := e.store.CheminDeFerByGuide(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("export extract: %w", err)
	}

	pages, err := e.store.PagesByCheminDeFer(ctx, cdf.ID)
	if err != nil {
		return nil, fmt.Errorf("export extract: load pages: %w", err)
	}

	language := opts.Language
	if language == "" {
		language = guide.Language
	}

	res := &Result{
		Guide:    guide,
		MaxChars: make(map[string]int),
		Doc: &Document{
			Meta: Meta{
				GuideID:     guide.ID,
				GuideName:   guide.Name,
				Destination: guide.Destination,
				Year:        guide.Year,
				Language:    language,
				Version:     Version,
				ExportedAt:  time.Now().UTC().Format(time.RFC3339),
			},
			Mappings: Mappings{
				Fields:      mapping.FieldLayers(),
				PictoLayers: mapping.PictoLayers(),
				PictoValues: mapping.PictoValues(),
			},
		},
	}

	templates := make(map[string]*types.Template)
	excluded := make(map[string]int)

	for i := range pages {
		page := &pages[i]
		if !page.Status.IsExportable() {
			excluded[string(page.Status)]++
			continue
		}
		exported := e.exportPage(ctx, page, templates, res)
		res.Doc.Pages = append(res.Doc.Pages, exported)
	}

	res.Doc.Meta.Stats = Stats{
		TotalPages:       len(pages),
		ExportedPages:    len(res.Doc.Pages),
		ExcludedDrafts:   len(pages) - len(res.Doc.Pages),
		ExcludedStatuses: sortedKeys(excluded),
	}

	e.logger.Info("export extracted",
		"guide_id", guide.ID,
		"pages", len(res.Doc.Pages),
		"excluded", res.Doc.Meta.Stats.ExcludedDrafts,
		"computed_fields", len(res.Computed))

	return res, nil
}

// exportPage partitions one page's stored content into typed buckets.
func (e *Extractor) exportPage(ctx context.Context, page *types.Page, templates map[string]*types.Template, res *Result) *Page {
	out := &Page{
		ID:         page.ID,
		PageNumber: page.Order,
		Template:   page.TemplateName,
		Section:    page.SectionName,
		Status:     string(page.Status),
		URLSource:  page.Metadata.ArticleSource,
		Metadata:   page.Metadata,
		Content: Content{
			Text:   map[string]string{},
			Images: map[string]*Image{},
			Pictos: map[string]*Picto{},
		},
	}

	tmpl, err := e.templateFor(ctx, page, templates)
	if err != nil {
		e.logger.Warn("template lookup failed, exporting page with empty buckets",
			"page_id", page.ID, "template", page.TemplateName, "err", err)
		return out
	}

	for _, field := range tmpl.FieldsInOrder() {
		if field.MaxChars > 0 {
			res.MaxChars[field.Name] = field.MaxChars
		}
		if field.FieldService != "" {
			res.Computed = append(res.Computed, ComputedField{
				Page:      out,
				FieldName: field.Name,
				FieldType: field.Type,
				ServiceID: field.FieldService,
			})
		}

		value := strings.TrimSpace(page.Content[field.Name])
		if value == "" {
			continue
		}

		switch {
		case field.Type == types.FieldPicto || mapping.IsPictoField(field.Name):
			pv := mapping.ResolvePictoMapping(field.Name, value)
			out.Content.Pictos[field.Name] = &Picto{
				Value:         value,
				PictoKey:      nullableKey(pv.Key),
				IndesignLayer: pictoLayerFor(field, value),
				Label:         pv.Label,
			}
		case field.Type == types.FieldImage:
			slug := templateSlug(tmpl.Name)
			out.Content.Images[field.Name] = &Image{
				URL:           value,
				LocalFilename: fmt.Sprintf("p%03d_%s_%s.jpg", page.Order, slug, strings.ToLower(field.Name)),
				LocalPath:     "images/" + slug + "/",
			}
		default:
			out.Content.Text[field.Name] = value
			if field.Type == types.FieldTitle && out.Titre == "" {
				out.Titre = value
			}
		}
		out.Content.FieldOrder = append(out.Content.FieldOrder, field.Name)
	}

	return out
}

// templateFor resolves a page's template, by id first and by name as a
// fallback, with a per-run cache shared across pages of the same template.
func (e *Extractor) templateFor(ctx context.Context, page *types.Page, cache map[string]*types.Template) (*types.Template, error) {
	key := page.TemplateID
	if key == "" {
		key = "name:" + page.TemplateName
	}
	if tmpl, ok := cache[key]; ok {
		if tmpl == nil {
			return nil, types.NotFoundf("template %s", page.TemplateName)
		}
		return tmpl, nil
	}

	var tmpl *types.Template
	var err error
	if page.TemplateID != "" {
		tmpl, err = e.store.TemplateByID(ctx, page.TemplateID)
	} else {
		tmpl, err = e.store.TemplateByName(ctx, page.TemplateName)
	}
	if err != nil {
		cache[key] = nil
		return nil, err
	}
	cache[key] = tmpl
	return tmpl, nil
}

// pictoLayerFor resolves the layer of a picto variant: the field's own
// option_layers first, then the static variant table, then the field-level
// layer resolution.
func pictoLayerFor(field types.FieldDef, value string) string {
	if len(field.OptionLayers) > 0 {
		if layer, ok := field.OptionLayers[value]; ok {
			return layer
		}
	} else if layer := mapping.ResolveVariantLayer(field.Name, value); layer != "" {
		return layer
	}
	return mapping.ResolveFieldLayer(field.Name, field.IndesignLayer)
}

func nullableKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

func templateSlug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
