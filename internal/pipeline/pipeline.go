// Package pipeline runs the guide export stages in their required order:
// extraction, field services, normalization, contract validation. Each
// stage only starts once the previous one has fully materialized.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atelier-guides/maquette/internal/contract"
	"github.com/atelier-guides/maquette/internal/export"
	"github.com/atelier-guides/maquette/internal/fieldsvc"
	"github.com/atelier-guides/maquette/internal/normalize"
)

// Deps are the collaborators of an export run.
type Deps struct {
	Store    export.Store
	Services *fieldsvc.Registry
	Logger   *slog.Logger
}

// Options tune an export run.
type Options struct {
	// Language overrides the guide's language in the export meta.
	Language string
	// MaxLengths are caller-supplied truncation overrides. They win over
	// template max_chars, which in turn wins over the built-in table.
	MaxLengths map[string]int
	// Marker replaces the default truncation marker when non-empty.
	Marker string
	// KeepNullPictos retains inactive pictos in the pictos bucket.
	KeepNullPictos bool
	// SkipValidation disables the renderer-contract check.
	SkipValidation bool
}

// ServiceError records one failed computed field. The field stays unfilled;
// the export continues.
type ServiceError struct {
	PageID    string
	FieldName string
	ServiceID string
	Err       error
}

// Report summarizes the non-fatal outcomes of a run.
type Report struct {
	ComputedFields int
	ServiceErrors  []ServiceError
}

// Run executes the full export pipeline for a guide and returns the
// normalized, validated document.
func Run(ctx context.Context, deps Deps, guideID string, opts Options) (*export.Document, *Report, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extractor := export.NewExtractor(deps.Store, logger)
	res, err := extractor.Extract(ctx, guideID, export.Options{Language: opts.Language})
	if err != nil {
		return nil, nil, err
	}

	report := &Report{}
	runFieldServices(ctx, deps, res, report, logger)

	lengths := mergeLengths(res.MaxChars, opts.MaxLengths)
	normalize.Apply(res.Doc, normalize.Options{
		MaxLengths:     lengths,
		Marker:         opts.Marker,
		KeepNullPictos: opts.KeepNullPictos,
		Logger:         logger,
	})

	if !opts.SkipValidation {
		if err := contract.Validate(res.Doc); err != nil {
			return nil, report, fmt.Errorf("export pipeline: %w", err)
		}
	}

	return res.Doc, report, nil
}

// runFieldServices computes every service-backed field against the complete
// first-pass page set. A failing handler leaves only its own field
// unfilled.
func runFieldServices(ctx context.Context, deps Deps, res *export.Result, report *Report, logger *slog.Logger) {
	if deps.Services == nil || len(res.Computed) == 0 {
		return
	}

	for _, ref := range res.Computed {
		fc := fieldsvc.NewContext(res.Doc, res.Guide, ref.Page, deps.Store)
		value, err := deps.Services.Run(ctx, ref.ServiceID, fc)
		if err != nil {
			logger.Error("field service failed, field left unfilled",
				"service_id", ref.ServiceID, "page_id", ref.Page.ID, "field", ref.FieldName, "err", err)
			report.ServiceErrors = append(report.ServiceErrors, ServiceError{
				PageID:    ref.Page.ID,
				FieldName: ref.FieldName,
				ServiceID: ref.ServiceID,
				Err:       err,
			})
			continue
		}

		ref.Page.Content.Text[ref.FieldName] = value
		if !containsField(ref.Page.Content.FieldOrder, ref.FieldName) {
			ref.Page.Content.FieldOrder = append(ref.Page.Content.FieldOrder, ref.FieldName)
		}
		report.ComputedFields++
	}
}

func mergeLengths(fromTemplates, overrides map[string]int) map[string]int {
	merged := make(map[string]int, len(fromTemplates)+len(overrides))
	for k, v := range fromTemplates {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func containsField(order []string, name string) bool {
	for _, n := range order {
		if n == name {
			return true
		}
	}
	return false
}
