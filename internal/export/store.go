package export

import (
	"context"

	"github.com/atelier-guides/maquette/internal/types"
)

// Store is the document-store surface the export pipeline reads from.
// Implementations return errors wrapping types.ErrNotFound for missing
// entities and types.ErrInvalidID for malformed identifiers.
type Store interface {
	GuideByID(ctx context.Context, id string) (*types.Guide, error)
	CheminDeFerByGuide(ctx context.Context, guideID string) (*types.CheminDeFer, error)
	// PagesByCheminDeFer returns all pages of a chemin-de-fer sorted by
	// their order field.
	PagesByCheminDeFer(ctx context.Context, cheminDeFerID string) ([]types.Page, error)
	TemplateByID(ctx context.Context, id string) (*types.Template, error)
	TemplateByName(ctx context.Context, name string) (*types.Template, error)
}
