// Package normalize is the second export pass: it cleans and truncates
// field content, filters pictos, and annotates every page with derived
// layout-decision flags. It never drops or reorders pages.
package normalize

import (
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier-guides/maquette/internal/export"
)

// Version identifies the normalization pass format.
const Version = "1"

// DefaultMarker is appended to truncated text values.
const DefaultMarker = "…"

// Text density thresholds, in characters of cleaned text per page.
const (
	densityLightMax  = 400
	densityMediumMax = 1000
)

// Options tune a normalization run.
type Options struct {
	// MaxLengths overrides the built-in truncation table per field name.
	MaxLengths map[string]int
	// Marker replaces DefaultMarker when non-empty.
	Marker string
	// KeepNullPictos retains pictos whose key is null in the pictos bucket.
	// They still never enter pictos_active.
	KeepNullPictos bool
	Logger         *slog.Logger
}

// Apply normalizes the document in place and returns it. Safe to re-apply:
// truncation is idempotent and layout flags are recomputed from scratch.
func Apply(doc *export.Document, opts Options) *export.Document {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	lengths := mergedMaxLengths(opts.MaxLengths)

	var stats export.NormalizationStats
	for _, page := range doc.Pages {
		normalizePage(page, lengths, marker, !opts.KeepNullPictos, &stats)
	}
	stats.PagesProcessed = len(doc.Pages)

	doc.Meta.NormalizedAt = time.Now().UTC().Format(time.RFC3339)
	doc.Normalization = &export.Normalization{
		Version: Version,
		Options: export.NormalizationOptions{
			Marker:         marker,
			DropNullPictos: !opts.KeepNullPictos,
			MaxLengths:     opts.MaxLengths,
		},
		Stats: stats,
	}

	logger.Info("export normalized",
		"pages", stats.PagesProcessed,
		"truncated", stats.TextsTruncated,
		"empty_removed", stats.EmptyFieldsRemoved,
		"images_dropped", stats.ImagesDropped)

	return doc
}

func normalizePage(page *export.Page, lengths map[string]int, marker string, dropNullPictos bool, stats *export.NormalizationStats) {
	truncated := 0

	// Text: drop empties, truncate over-length values.
	for name, value := range page.Content.Text {
		cleaned := strings.TrimSpace(value)
		if cleaned == "" {
			delete(page.Content.Text, name)
			stats.EmptyFieldsRemoved++
			continue
		}
		if limit, ok := lengths[name]; ok && limit > 0 {
			if cut, did := Truncate(cleaned, limit, marker); did {
				cleaned = cut
				truncated++
				stats.TextsTruncated++
			}
		}
		page.Content.Text[name] = cleaned
	}

	// Images: drop null entries and entries without a url.
	for name, img := range page.Content.Images {
		if img == nil {
			delete(page.Content.Images, name)
			stats.NullFieldsRemoved++
			continue
		}
		if strings.TrimSpace(img.URL) == "" {
			delete(page.Content.Images, name)
			stats.ImagesDropped++
		}
	}

	// Pictos: drop null entries, value-less entries, and (by default)
	// entries whose resolved key is null.
	for name, picto := range page.Content.Pictos {
		if picto == nil {
			delete(page.Content.Pictos, name)
			stats.NullFieldsRemoved++
			continue
		}
		if strings.TrimSpace(picto.Value) == "" {
			delete(page.Content.Pictos, name)
			stats.PictosDroppedEmpty++
			continue
		}
		if dropNullPictos && picto.PictoKey == nil {
			delete(page.Content.Pictos, name)
			stats.PictosDroppedNull++
		}
	}

	page.Content.PictosActive = activePictos(&page.Content)
	page.Layout = layoutFor(page, truncated)
}

// activePictos lists every retained picto with a non-null key, in
// field-definition order when known.
func activePictos(content *export.Content) []export.ActivePicto {
	active := []export.ActivePicto{}
	for _, name := range pictoOrder(content) {
		picto := content.Pictos[name]
		if picto == nil || picto.PictoKey == nil {
			continue
		}
		active = append(active, export.ActivePicto{
			Name:          name,
			Value:         picto.Value,
			PictoKey:      *picto.PictoKey,
			IndesignLayer: picto.IndesignLayer,
			Label:         picto.Label,
		})
	}
	return active
}

// pictoOrder returns picto bucket keys in field-definition order, falling
// back to sorted keys for documents without order information (e.g. loaded
// back from JSON).
func pictoOrder(content *export.Content) []string {
	if len(content.FieldOrder) > 0 {
		order := make([]string, 0, len(content.Pictos))
		for _, name := range content.FieldOrder {
			if _, ok := content.Pictos[name]; ok {
				order = append(order, name)
			}
		}
		return order
	}
	order := make([]string, 0, len(content.Pictos))
	for name := range content.Pictos {
		order = append(order, name)
	}
	sort.Strings(order)
	return order
}

func layoutFor(page *export.Page, truncated int) *export.Layout {
	charCount := 0
	for _, v := range page.Content.Text {
		charCount += utf8.RuneCountInString(v)
	}

	density := "heavy"
	switch {
	case charCount < densityLightMax:
		density = "light"
	case charCount < densityMediumMax:
		density = "medium"
	}

	hints := []string{}
	if strings.TrimSpace(page.Titre) == "" {
		hints = append(hints, "titre")
	}
	if len(page.Content.Text) == 0 {
		hints = append(hints, "text_fields")
	}
	if len(page.Content.Images) == 0 {
		hints = append(hints, "images")
	}

	return &export.Layout{
		HasImage:       len(page.Content.Images) > 0,
		ImageCount:     len(page.Content.Images),
		TextCharCount:  charCount,
		TextDensity:    density,
		PictoCount:     len(page.Content.PictosActive),
		LayoutVariant:  variantFor(page.Template),
		IsComplete:     strings.TrimSpace(page.Titre) != "" && len(page.Content.Text) > 0,
		MissingHints:   hints,
		TextsTruncated: truncated,
	}
}

func variantFor(template string) string {
	for _, lv := range layoutVariants {
		if strings.HasPrefix(template, lv.prefix) {
			return lv.variant
		}
	}
	return "generic"
}

// Truncate cuts s to max runes including the marker, trimming trailing
// whitespace before appending it. Strings already within the limit come
// back unchanged, which makes re-normalization a no-op.
func Truncate(s string, max int, marker string) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	cut := max - utf8.RuneCountInString(marker)
	if cut < 0 {
		cut = 0
	}
	runes := []rune(s)
	out := strings.TrimRight(string(runes[:cut]), " \t\n")
	return out + marker, true
}
