package export

import "github.com/atelier-guides/maquette/internal/types"

// Document is the export artifact handed to the external renderer: guide
// meta, the static mapping tables, and the ordered page list. The
// Normalization section is attached by the second pass.
type Document struct {
	Meta          Meta           `json:"meta"`
	Mappings      Mappings       `json:"mappings"`
	Pages         []*Page        `json:"pages"`
	Normalization *Normalization `json:"normalization,omitempty"`
}

// Meta describes the guide and the export run.
type Meta struct {
	GuideID      string `json:"guide_id"`
	GuideName    string `json:"guide_name"`
	Destination  string `json:"destination"`
	Year         int    `json:"year"`
	Language     string `json:"language"`
	Version      string `json:"version"`
	ExportedAt   string `json:"exported_at"`
	NormalizedAt string `json:"normalized_at,omitempty"`
	Stats        Stats  `json:"stats"`
}

// Stats summarizes which pages made it into the export.
type Stats struct {
	TotalPages       int      `json:"total_pages"`
	ExportedPages    int      `json:"exported_pages"`
	ExcludedDrafts   int      `json:"excluded_drafts"`
	ExcludedStatuses []string `json:"excluded_statuses"`
}

// Mappings carries the static lookup tables so the renderer need not know
// internal naming conventions.
type Mappings struct {
	Fields      map[string]string            `json:"fields"`
	PictoLayers map[string]string            `json:"picto_layers"`
	PictoValues map[string]map[string]string `json:"picto_values"`
}

// Page is one exported page with its typed content buckets.
type Page struct {
	ID         string             `json:"id"`
	PageNumber int                `json:"page_number"`
	Template   string             `json:"template"`
	Section    string             `json:"section,omitempty"`
	Titre      string             `json:"titre"`
	Status     string             `json:"status"`
	URLSource  string             `json:"url_source,omitempty"`
	Metadata   types.PageMetadata `json:"metadata"`
	Content    Content            `json:"content"`
	Layout     *Layout            `json:"layout,omitempty"`
}

// Content partitions a page's field values into typed buckets. FieldOrder
// preserves the template's field-definition order for the keys present in
// the buckets; it is process-local and never serialized.
type Content struct {
	Text         map[string]string `json:"text"`
	Images       map[string]*Image `json:"images"`
	Pictos       map[string]*Picto `json:"pictos"`
	PictosActive []ActivePicto     `json:"pictos_active,omitempty"`

	FieldOrder []string `json:"-"`
}

// Image is an exported image reference. Local is filled by the image
// resolution step once the file exists on disk.
type Image struct {
	URL           string `json:"url"`
	LocalFilename string `json:"local_filename"`
	LocalPath     string `json:"local_path"`
	Local         string `json:"local,omitempty"`
}

// Picto is an exported picto value. A nil PictoKey marks an inactive picto.
type Picto struct {
	Value         string  `json:"value"`
	PictoKey      *string `json:"picto_key"`
	IndesignLayer string  `json:"indesign_layer"`
	Label         string  `json:"label"`
}

// ActivePicto is one entry of the pictos_active array built during
// normalization: only pictos with a non-null key, in field-definition order.
type ActivePicto struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	PictoKey      string `json:"picto_key"`
	IndesignLayer string `json:"indesign_layer"`
	Label         string `json:"label"`
}

// Layout holds the derived layout-decision flags for one page. Recomputed
// on every normalization run, never authoritative.
type Layout struct {
	HasImage       bool     `json:"has_image"`
	ImageCount     int      `json:"image_count"`
	TextCharCount  int      `json:"text_char_count"`
	TextDensity    string   `json:"text_density"`
	PictoCount     int      `json:"picto_count"`
	LayoutVariant  string   `json:"layout_variant"`
	IsComplete     bool     `json:"is_complete"`
	MissingHints   []string `json:"missing_hints"`
	TextsTruncated int      `json:"texts_truncated"`
}

// Normalization records how the second pass was run.
type Normalization struct {
	Version string               `json:"version"`
	Options NormalizationOptions `json:"options"`
	Stats   NormalizationStats   `json:"stats"`
}

// NormalizationOptions echoes the effective options of the run.
type NormalizationOptions struct {
	Marker         string         `json:"marker"`
	DropNullPictos bool           `json:"drop_null_pictos"`
	MaxLengths     map[string]int `json:"max_lengths,omitempty"`
}

// NormalizationStats aggregates field-level cleanup counts across pages.
type NormalizationStats struct {
	PagesProcessed     int `json:"pages_processed"`
	NullFieldsRemoved  int `json:"null_fields_removed"`
	EmptyFieldsRemoved int `json:"empty_fields_removed"`
	TextsTruncated     int `json:"texts_truncated"`
	ImagesDropped      int `json:"images_dropped"`
	PictosDroppedEmpty int `json:"pictos_dropped_empty"`
	PictosDroppedNull  int `json:"pictos_dropped_null"`
}
