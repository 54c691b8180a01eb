// Package store persists guides, templates, chemins-de-fer and pages in
// DefraDB and reads them back for the export pipeline.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atelier-guides/maquette/internal/defra"
	"github.com/atelier-guides/maquette/internal/types"
)

// Store is a DefraDB-backed document store for guide data.
type Store struct {
	client *defra.Client
}

// New creates a store on top of a DefraDB client.
func New(client *defra.Client) *Store {
	return &Store{client: client}
}

// GuideByID fetches a guide by its application ID.
func (s *Store) GuideByID(ctx context.Context, id string) (*types.Guide, error) {
	if err := defra.ValidateID(id); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Guide").
		Filter("guide_id", id).
		Fields("guide_id", "name", "destination", "year", "language").
		Limit(1).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch guide: %w", err)
	}
	if len(docs) == 0 {
		return nil, types.NotFoundf("guide %s", id)
	}
	d := docs[0]
	return &types.Guide{
		ID:          asString(d["guide_id"]),
		Name:        asString(d["name"]),
		Destination: asString(d["destination"]),
		Year:        asInt(d["year"]),
		Language:    asString(d["language"]),
	}, nil
}

// CheminDeFerByGuide fetches the most recent chemin-de-fer of a guide.
func (s *Store) CheminDeFerByGuide(ctx context.Context, guideID string) (*types.CheminDeFer, error) {
	if err := defra.ValidateID(guideID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("CheminDeFer").
		Filter("guide_id", guideID).
		Fields("chemin_de_fer_id", "guide_id", "generated_at", "page_count").
		OrderBy("generated_at", "DESC").
		Limit(1).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch chemin-de-fer: %w", err)
	}
	if len(docs) == 0 {
		return nil, types.NotFoundf("chemin-de-fer for guide %s", guideID)
	}
	d := docs[0]
	builtAt, _ := time.Parse(time.RFC3339, asString(d["generated_at"]))
	return &types.CheminDeFer{
		ID:        asString(d["chemin_de_fer_id"]),
		GuideID:   asString(d["guide_id"]),
		PageCount: asInt(d["page_count"]),
		BuiltAt:   builtAt,
	}, nil
}

// PagesByCheminDeFer fetches the pages of a chemin-de-fer in page order.
func (s *Store) PagesByCheminDeFer(ctx context.Context, cdfID string) ([]types.Page, error) {
	if err := defra.ValidateID(cdfID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Page").
		Filter("chemin_de_fer_id", cdfID).
		Fields("page_id", "chemin_de_fer_id", "order", "template_id", "template_name",
			"section_id", "section_name", "status", "content_json", "metadata_json").
		OrderBy("order", "ASC").
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch pages: %w", err)
	}

	pages := make([]types.Page, 0, len(docs))
	for _, d := range docs {
		page := types.Page{
			ID:            asString(d["page_id"]),
			CheminDeFerID: asString(d["chemin_de_fer_id"]),
			Order:         asInt(d["order"]),
			TemplateID:    asString(d["template_id"]),
			TemplateName:  asString(d["template_name"]),
			SectionID:     asString(d["section_id"]),
			SectionName:   asString(d["section_name"]),
			Status:        types.PageStatus(asString(d["status"])),
		}
		if err := decodeJSONColumn(d["content_json"], &page.Content); err != nil {
			return nil, fmt.Errorf("page %s content: %w", page.ID, err)
		}
		if page.Content == nil {
			page.Content = map[string]string{}
		}
		if err := decodeJSONColumn(d["metadata_json"], &page.Metadata); err != nil {
			return nil, fmt.Errorf("page %s metadata: %w", page.ID, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// TemplateByID fetches a template by its application ID.
func (s *Store) TemplateByID(ctx context.Context, id string) (*types.Template, error) {
	return s.templateBy(ctx, "template_id", id)
}

// TemplateByName fetches a template by name.
func (s *Store) TemplateByName(ctx context.Context, name string) (*types.Template, error) {
	return s.templateBy(ctx, "name", name)
}

func (s *Store) templateBy(ctx context.Context, field, value string) (*types.Template, error) {
	if err := defra.ValidateID(value); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Template").
		Filter(field, value).
		Fields("template_id", "name", "fields_json").
		Limit(1).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}
	if len(docs) == 0 {
		return nil, types.NotFoundf("template %s", value)
	}
	d := docs[0]
	tpl := &types.Template{
		ID:   asString(d["template_id"]),
		Name: asString(d["name"]),
	}
	if err := decodeJSONColumn(d["fields_json"], &tpl.Fields); err != nil {
		return nil, fmt.Errorf("template %s fields: %w", tpl.Name, err)
	}
	return tpl, nil
}

// StructureByGuide fetches the page structure declared for a guide.
func (s *Store) StructureByGuide(ctx context.Context, guideID string) (*types.GuideStructure, error) {
	if err := defra.ValidateID(guideID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("GuideStructure").
		Filter("guide_id", guideID).
		Fields("structure_id", "name", "blocks_json").
		Limit(1).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch structure: %w", err)
	}
	if len(docs) == 0 {
		return nil, types.NotFoundf("structure for guide %s", guideID)
	}
	d := docs[0]
	st := &types.GuideStructure{
		ID:   asString(d["structure_id"]),
		Name: asString(d["name"]),
	}
	if err := decodeJSONColumn(d["blocks_json"], &st.Blocks); err != nil {
		return nil, fmt.Errorf("structure blocks: %w", err)
	}
	return st, nil
}

// ClustersByGuide fetches a guide's clusters ordered by their position.
func (s *Store) ClustersByGuide(ctx context.Context, guideID string) ([]types.Cluster, error) {
	if err := defra.ValidateID(guideID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Cluster").
		Filter("guide_id", guideID).
		Fields("cluster_id", "name", "order").
		OrderBy("order", "ASC").
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch clusters: %w", err)
	}
	clusters := make([]types.Cluster, 0, len(docs))
	for _, d := range docs {
		clusters = append(clusters, types.Cluster{
			ID:    asString(d["cluster_id"]),
			Name:  asString(d["name"]),
			Order: asInt(d["order"]),
		})
	}
	return clusters, nil
}

// PoisByGuide fetches a guide's points of interest.
func (s *Store) PoisByGuide(ctx context.Context, guideID string) ([]types.POI, error) {
	if err := defra.ValidateID(guideID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Poi").
		Filter("guide_id", guideID).
		Fields("poi_id", "cluster_id", "name", "article_source").
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch pois: %w", err)
	}
	pois := make([]types.POI, 0, len(docs))
	for _, d := range docs {
		pois = append(pois, types.POI{
			ID:            asString(d["poi_id"]),
			ClusterID:     asString(d["cluster_id"]),
			Name:          asString(d["name"]),
			ArticleSource: asString(d["article_source"]),
		})
	}
	return pois, nil
}

// InspirationsByGuide fetches a guide's inspiration articles in order.
func (s *Store) InspirationsByGuide(ctx context.Context, guideID string) ([]types.Inspiration, error) {
	if err := defra.ValidateID(guideID); err != nil {
		return nil, err
	}
	docs, err := defra.NewQuery("Inspiration").
		Filter("guide_id", guideID).
		Fields("inspiration_id", "title", "order", "poi_ids_json").
		OrderBy("order", "ASC").
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("fetch inspirations: %w", err)
	}
	inspirations := make([]types.Inspiration, 0, len(docs))
	for _, d := range docs {
		insp := types.Inspiration{
			ID:    asString(d["inspiration_id"]),
			Title: asString(d["title"]),
			Order: asInt(d["order"]),
		}
		if err := decodeJSONColumn(d["poi_ids_json"], &insp.PoiIDs); err != nil {
			return nil, fmt.Errorf("inspiration %s pois: %w", insp.ID, err)
		}
		inspirations = append(inspirations, insp)
	}
	return inspirations, nil
}

// SaveCheminDeFer persists a freshly built chemin-de-fer and its pages.
func (s *Store) SaveCheminDeFer(ctx context.Context, cdf *types.CheminDeFer, pages []types.Page) error {
	if cdf.BuiltAt.IsZero() {
		cdf.BuiltAt = time.Now().UTC()
	}
	cdf.PageCount = len(pages)

	_, err := s.client.Create(ctx, "CheminDeFer", map[string]any{
		"chemin_de_fer_id": cdf.ID,
		"guide_id":         cdf.GuideID,
		"generated_at":     cdf.BuiltAt.Format(time.RFC3339),
		"page_count":       cdf.PageCount,
	})
	if err != nil {
		return fmt.Errorf("save chemin-de-fer: %w", err)
	}
	return s.SavePages(ctx, pages)
}

// SavePages persists pages in one batch per call.
func (s *Store) SavePages(ctx context.Context, pages []types.Page) error {
	if len(pages) == 0 {
		return nil
	}
	inputs := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		contentJSON, err := json.Marshal(p.Content)
		if err != nil {
			return fmt.Errorf("page %s content: %w", p.ID, err)
		}
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("page %s metadata: %w", p.ID, err)
		}
		inputs = append(inputs, map[string]any{
			"page_id":          p.ID,
			"chemin_de_fer_id": p.CheminDeFerID,
			"order":            p.Order,
			"template_id":      p.TemplateID,
			"template_name":    p.TemplateName,
			"section_id":       p.SectionID,
			"section_name":     p.SectionName,
			"status":           string(p.Status),
			"content_json":     string(contentJSON),
			"metadata_json":    string(metadataJSON),
			"updated_at":       time.Now().UTC().Format(time.RFC3339),
		})
	}
	if _, err := s.client.CreateMany(ctx, "Page", inputs); err != nil {
		return fmt.Errorf("save pages: %w", err)
	}
	return nil
}

// decodeJSONColumn unmarshals a JSON-string column into dst. Absent or empty
// columns leave dst untouched.
func decodeJSONColumn(raw any, dst any) error {
	str, ok := raw.(string)
	if !ok || str == "" {
		return nil
	}
	return json.Unmarshal([]byte(str), dst)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt tolerates the float64 that encoding/json produces for GraphQL Int.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
