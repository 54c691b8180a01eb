// Package chemindefer expands an abstract guide structure into the concrete
// ordered page sequence of a guide's chemin-de-fer.
package chemindefer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-guides/maquette/internal/types"
)

// Template names the builder emits for dynamic sections.
const (
	ClusterTemplate     = "CLUSTER"
	PoiTemplate         = "POI"
	InspirationTemplate = "INSPIRATION"
)

// DefaultPoisPerPage is the inspiration page capacity when the block does
// not set one.
const DefaultPoisPerPage = 6

// seasonsBlockName is the legacy logical name of the seasons section.
// Blocks carrying an explicit PageMeta list take precedence over this.
const seasonsBlockName = "SAISONS"

// seasonMeta is the metadata attached to the first four pages of a legacy
// seasons section, by page index.
var seasonMeta = []types.PageMetadata{
	{Season: "printemps", PageType: "saison"},
	{Season: "ete", PageType: "saison"},
	{Season: "automne", PageType: "saison"},
	{Season: "hiver", PageType: "saison"},
}

// TemplateSource resolves page templates by name.
type TemplateSource interface {
	TemplateByName(ctx context.Context, name string) (*types.Template, error)
}

// Input carries everything a build needs: the guide, its structure, and the
// three upstream datasets. Datasets may be empty; sections needing a missing
// dataset contribute zero pages.
type Input struct {
	GuideID      string
	Structure    *types.GuideStructure
	Clusters     []types.Cluster
	Pois         []types.POI
	Inspirations []types.Inspiration
}

// Result is a fully built chemin-de-fer with its ordered page list.
// Callers persist it.
type Result struct {
	CheminDeFer types.CheminDeFer
	Pages       []types.Page
}

// Builder performs the deterministic structure-to-pages expansion.
type Builder struct {
	templates TemplateSource
	logger    *slog.Logger

	// per-run template cache, keyed by template name
	cache map[string]*types.Template
}

// New creates a Builder.
func New(templates TemplateSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{templates: templates, logger: logger}
}

// Build expands the structure into an ordered page list. Page orders form a
// contiguous 1-based sequence across the whole structure. Only missing
// required identifiers are fatal; missing datasets or templates degrade to
// fewer pages or empty field lists.
func (b *Builder) Build(ctx context.Context, in Input) (*Result, error) {
	if in.GuideID == "" {
		return nil, fmt.Errorf("chemin-de-fer build: guide id is required")
	}
	if in.Structure == nil || in.Structure.ID == "" {
		return nil, fmt.Errorf("chemin-de-fer build: guide structure is required")
	}

	b.cache = make(map[string]*types.Template)

	cdf := types.CheminDeFer{
		ID:      uuid.NewString(),
		GuideID: in.GuideID,
		BuiltAt: time.Now().UTC(),
	}

	var pages []types.Page
	order := 1

	for _, block := range in.Structure.Blocks {
		var emitted []types.Page
		switch {
		case block.Kind == types.BlockFixedPage:
			emitted = []types.Page{b.newPage(ctx, cdf.ID, block.TemplateName, order, "", block.Name, types.PageMetadata{})}
		case block.Kind == types.BlockSection && block.Source == types.SourceClusters:
			emitted = b.expandClusterSection(ctx, cdf.ID, block, in.Clusters, in.Pois, order)
		case block.Kind == types.BlockSection && block.Source == types.SourceInspirations:
			emitted = b.expandInspirationSection(ctx, cdf.ID, block, in.Inspirations, order)
		case block.Kind == types.BlockSection && block.Source == types.SourceNone &&
			block.PagesCount > 0 && block.TemplateName != "":
			emitted = b.expandRepeatedFixed(ctx, cdf.ID, block, order)
		default:
			// Unrecognized block/source combinations emit nothing.
			b.logger.Warn("skipping unrecognized structure block",
				"guide_id", in.GuideID, "kind", block.Kind, "source", block.Source, "name", block.Name)
		}
		pages = append(pages, emitted...)
		order += len(emitted)
	}

	cdf.PageCount = len(pages)
	return &Result{CheminDeFer: cdf, Pages: pages}, nil
}

// expandClusterSection emits one CLUSTER intro page per non-empty cluster,
// each followed by one POI page per assigned POI. Clusters without POIs are
// skipped entirely.
func (b *Builder) expandClusterSection(ctx context.Context, cdfID string, block types.Block, clusters []types.Cluster, pois []types.POI, startOrder int) []types.Page {
	if len(clusters) == 0 || len(pois) == 0 {
		b.logger.Warn("cluster section has no upstream data, emitting zero pages",
			"section", block.Name, "clusters", len(clusters), "pois", len(pois))
		return nil
	}

	byCluster := make(map[string][]types.POI)
	for _, p := range pois {
		if p.ClusterID != "" {
			byCluster[p.ClusterID] = append(byCluster[p.ClusterID], p)
		}
	}

	sectionID := uuid.NewString()
	var pages []types.Page
	order := startOrder

	for _, cluster := range clusters {
		assigned := byCluster[cluster.ID]
		if len(assigned) == 0 {
			continue
		}

		intro := b.newPage(ctx, cdfID, ClusterTemplate, order, sectionID, block.Name, types.PageMetadata{
			ClusterID:   cluster.ID,
			ClusterName: cluster.Name,
			PageType:    "cluster",
		})
		pages = append(pages, intro)
		order++

		for _, poi := range assigned {
			page := b.newPage(ctx, cdfID, PoiTemplate, order, sectionID, block.Name, types.PageMetadata{
				ClusterID:     cluster.ID,
				ClusterName:   cluster.Name,
				PoiID:         poi.ID,
				PoiName:       poi.Name,
				ArticleSource: poi.ArticleSource,
				PageType:      "poi",
			})
			pages = append(pages, page)
			order++
		}
	}
	return pages
}

// expandInspirationSection emits ceil(places/poisPerPage) INSPIRATION pages
// per non-empty inspiration, each tagged with its 1-based page index and the
// inspiration's total page count.
func (b *Builder) expandInspirationSection(ctx context.Context, cdfID string, block types.Block, inspirations []types.Inspiration, startOrder int) []types.Page {
	if len(inspirations) == 0 {
		b.logger.Warn("inspiration section has no upstream data, emitting zero pages", "section", block.Name)
		return nil
	}

	perPage := block.PoisPerPage
	if perPage <= 0 {
		perPage = DefaultPoisPerPage
	}

	sectionID := uuid.NewString()
	var pages []types.Page
	order := startOrder

	for _, insp := range inspirations {
		count := len(insp.PoiIDs)
		if count == 0 {
			continue
		}
		total := (count + perPage - 1) / perPage
		for idx := 1; idx <= total; idx++ {
			page := b.newPage(ctx, cdfID, InspirationTemplate, order, sectionID, block.Name, types.PageMetadata{
				InspirationID:    insp.ID,
				InspirationTitle: insp.Title,
				PageType:         "inspiration",
				PageIndex:        idx,
				TotalPages:       total,
			})
			pages = append(pages, page)
			order++
		}
	}
	return pages
}

// expandRepeatedFixed emits exactly PagesCount pages of the block's
// template. Per-page metadata comes from the block's explicit PageMeta list
// (entry i applies to page i); the legacy seasons block name falls back to
// the four fixed season tags.
func (b *Builder) expandRepeatedFixed(ctx context.Context, cdfID string, block types.Block, startOrder int) []types.Page {
	meta := block.PageMeta
	if len(meta) == 0 && block.Name == seasonsBlockName {
		meta = seasonMeta
	}

	sectionID := uuid.NewString()
	pages := make([]types.Page, 0, block.PagesCount)
	for i := 0; i < block.PagesCount; i++ {
		var m types.PageMetadata
		if i < len(meta) {
			m = meta[i]
		}
		pages = append(pages, b.newPage(ctx, cdfID, block.TemplateName, startOrder+i, sectionID, block.Name, m))
	}
	return pages
}

// newPage creates a draft page with content initialized to empty values for
// every field of the template. A missing template degrades to an empty
// field list.
func (b *Builder) newPage(ctx context.Context, cdfID, templateName string, order int, sectionID, sectionName string, meta types.PageMetadata) types.Page {
	page := types.Page{
		ID:            uuid.NewString(),
		CheminDeFerID: cdfID,
		Order:         order,
		TemplateName:  templateName,
		SectionID:     sectionID,
		SectionName:   sectionName,
		Status:        types.StatusDraft,
		Content:       map[string]string{},
		Metadata:      meta,
	}

	tmpl, err := b.template(ctx, templateName)
	if err != nil {
		b.logger.Warn("template lookup failed, page created with empty field list",
			"template", templateName, "order", order, "err", err)
		return page
	}

	page.TemplateID = tmpl.ID
	for _, f := range tmpl.Fields {
		page.Content[f.Name] = ""
	}
	return page
}

func (b *Builder) template(ctx context.Context, name string) (*types.Template, error) {
	if tmpl, ok := b.cache[name]; ok {
		if tmpl == nil {
			return nil, types.NotFoundf("template %s", name)
		}
		return tmpl, nil
	}
	tmpl, err := b.templates.TemplateByName(ctx, name)
	if err != nil {
		b.cache[name] = nil
		return nil, err
	}
	b.cache[name] = tmpl
	return tmpl, nil
}
