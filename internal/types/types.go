// Package types provides shared domain types used across multiple packages.
// This package has no dependencies on other maquette packages to avoid import cycles.
package types

import "time"

// FieldType classifies a template field.
type FieldType string

const (
	FieldTitle FieldType = "title"
	FieldText  FieldType = "text"
	FieldImage FieldType = "image"
	FieldLink  FieldType = "link"
	FieldMeta  FieldType = "meta"
	FieldList  FieldType = "list"
	FieldPicto FieldType = "picto"
)

// FieldDef describes one field of a page template.
// Field names are unique within a template and always begin with the
// template name followed by an underscore (e.g. POI_TITRE).
type FieldDef struct {
	Name           string            `json:"name"`
	Type           FieldType         `json:"type"`
	Label          string            `json:"label,omitempty"`
	Description    string            `json:"description,omitempty"`
	AIInstructions string            `json:"ai_instructions,omitempty"`
	MaxChars       int               `json:"max_chars,omitempty"`
	Options        []string          `json:"options,omitempty"`
	OptionLayers   map[string]string `json:"option_layers,omitempty"`
	IndesignLayer  string            `json:"indesign_layer,omitempty"`
	FieldService   string            `json:"field_service,omitempty"`
	Order          int               `json:"order"`
}

// Template is a named, ordered field schema shared by all pages of a type.
type Template struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Fields []FieldDef `json:"fields"`
}

// FieldsInOrder returns the template fields sorted by their Order value.
// The stored slice is assumed mostly ordered; a stable insertion pass keeps
// equal orders in definition order.
func (t *Template) FieldsInOrder() []FieldDef {
	out := make([]FieldDef, len(t.Fields))
	copy(out, t.Fields)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Order > out[j].Order; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Guide is a tourist guidebook project tied to a destination.
type Guide struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	Year        int       `json:"year"`
	Language    string    `json:"language"`
	StructureID string    `json:"structure_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// BlockKind discriminates guide structure blocks.
type BlockKind string

const (
	BlockFixedPage BlockKind = "fixed_page"
	BlockSection   BlockKind = "section"
)

// SectionSource selects the upstream dataset a section expands from.
type SectionSource string

const (
	SourceClusters     SectionSource = "clusters"
	SourceInspirations SectionSource = "inspirations"
	SourceNone         SectionSource = "none"
)

// Block is one entry of a guide structure: either a single fixed page or a
// dynamic section expanded from an upstream dataset.
type Block struct {
	Kind         BlockKind     `json:"kind"`
	Name         string        `json:"name,omitempty"`
	TemplateName string        `json:"template_name,omitempty"`
	Source       SectionSource `json:"source,omitempty"`
	PoisPerPage  int           `json:"pois_per_page,omitempty"`
	PagesCount   int           `json:"pages_count,omitempty"`

	// PageMeta carries per-page-index metadata templates for repeated fixed
	// sections (entry i applies to the section's i-th page). Replaces the
	// legacy name-sniffed season tagging.
	PageMeta []PageMetadata `json:"page_meta,omitempty"`
}

// GuideStructure is the ordered block list a guide's page flow expands from.
type GuideStructure struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

// CheminDeFer is the ordered page-flow container for a guide. One per guide.
type CheminDeFer struct {
	ID        string    `json:"id"`
	GuideID   string    `json:"guide_id"`
	PageCount int       `json:"page_count"`
	BuiltAt   time.Time `json:"built_at,omitempty"`
}

// PageStatus is the editorial workflow state of a page.
type PageStatus string

const (
	StatusDraft     PageStatus = "draft"
	StatusGenerated PageStatus = "generated"
	StatusInReview  PageStatus = "in_review"
	StatusValidated PageStatus = "validated"
)

// ExportableStatuses is the fixed allow-list of post-generation states a
// page must be in to appear in an export. Everything else counts as draft.
var ExportableStatuses = []PageStatus{StatusGenerated, StatusInReview, StatusValidated}

// IsExportable reports whether the status is in the export allow-list.
func (s PageStatus) IsExportable() bool {
	for _, st := range ExportableStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// PageMetadata captures page provenance from the structure expansion.
type PageMetadata struct {
	ClusterID        string `json:"cluster_id,omitempty"`
	ClusterName      string `json:"cluster_name,omitempty"`
	PoiID            string `json:"poi_id,omitempty"`
	PoiName          string `json:"poi_name,omitempty"`
	ArticleSource    string `json:"article_source,omitempty"`
	InspirationID    string `json:"inspiration_id,omitempty"`
	InspirationTitle string `json:"inspiration_title,omitempty"`
	Season           string `json:"season,omitempty"`
	PageType         string `json:"page_type,omitempty"`
	PageIndex        int    `json:"page_index,omitempty"`
	TotalPages       int    `json:"total_pages,omitempty"`
}

// Page is one page of a guide's chemin-de-fer. Content maps field names to
// stored values; the export extractor validates it against the owning
// template's field definitions rather than trusting the stored shape.
type Page struct {
	ID            string            `json:"id"`
	CheminDeFerID string            `json:"chemin_de_fer_id"`
	Order         int               `json:"order"`
	TemplateID    string            `json:"template_id,omitempty"`
	TemplateName  string            `json:"template_name"`
	SectionID     string            `json:"section_id,omitempty"`
	SectionName   string            `json:"section_name,omitempty"`
	Status        PageStatus        `json:"status"`
	Content       map[string]string `json:"content"`
	Metadata      PageMetadata      `json:"metadata"`
}

// Cluster is a geographic grouping of POIs used for zone-based sections.
type Cluster struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// POI is a point of interest selected for a guide, optionally assigned to a
// cluster.
type POI struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArticleSource string `json:"article_source,omitempty"`
	ClusterID     string `json:"cluster_id,omitempty"`
}

// Inspiration is a thematic grouping of POIs used for cross-cutting pages.
type Inspiration struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Order  int      `json:"order"`
	PoiIDs []string `json:"poi_ids"`
}
