package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/atelier-guides/maquette/internal/fieldsvc"
	"github.com/atelier-guides/maquette/internal/types"
)

type fakeStore struct {
	guide     *types.Guide
	cdf       *types.CheminDeFer
	pages     []types.Page
	templates map[string]*types.Template
}

func (f *fakeStore) GuideByID(_ context.Context, id string) (*types.Guide, error) {
	if f.guide == nil || f.guide.ID != id {
		return nil, types.NotFoundf("guide %s", id)
	}
	return f.guide, nil
}

func (f *fakeStore) CheminDeFerByGuide(_ context.Context, guideID string) (*types.CheminDeFer, error) {
	if f.cdf == nil || f.cdf.GuideID != guideID {
		return nil, types.NotFoundf("chemin-de-fer for guide %s", guideID)
	}
	return f.cdf, nil
}

func (f *fakeStore) PagesByCheminDeFer(_ context.Context, _ string) ([]types.Page, error) {
	return f.pages, nil
}

func (f *fakeStore) TemplateByID(_ context.Context, id string) (*types.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, types.NotFoundf("template %s", id)
	}
	return t, nil
}

func (f *fakeStore) TemplateByName(_ context.Context, name string) (*types.Template, error) {
	for _, t := range f.templates {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, types.NotFoundf("template %s", name)
}

func exportStore() *fakeStore {
	return &fakeStore{
		guide: &types.Guide{ID: "g-1", Name: "Guide de Nantes", Destination: "Nantes", Year: 2026, Language: "fr"},
		cdf:   &types.CheminDeFer{ID: "cdf-1", GuideID: "g-1"},
		templates: map[string]*types.Template{
			"t-sommaire": {ID: "t-sommaire", Name: "SOMMAIRE", Fields: []types.FieldDef{
				{Name: "SOMMAIRE_TITRE", Type: types.FieldTitle, Order: 1},
				{Name: "SOMMAIRE_CONTENU", Type: types.FieldList, Order: 2, FieldService: "sommaire"},
			}},
			"t-section": {ID: "t-section", Name: "SECTION_ZONES", Fields: []types.FieldDef{
				{Name: "SECTION_TITRE", Type: types.FieldTitle, Order: 1},
			}},
			"t-cluster": {ID: "t-cluster", Name: "CLUSTER", Fields: []types.FieldDef{
				{Name: "CLUSTER_TITRE", Type: types.FieldTitle, Order: 1, MaxChars: 60},
			}},
		},
		pages: []types.Page{
			{
				ID: "pg-1", Order: 1, TemplateID: "t-sommaire", TemplateName: "SOMMAIRE",
				Status:  types.StatusGenerated,
				Content: map[string]string{"SOMMAIRE_TITRE": "Sommaire"},
			},
			{
				ID: "pg-2", Order: 2, TemplateID: "t-section", TemplateName: "SECTION_ZONES",
				Status:  types.StatusValidated,
				Content: map[string]string{"SECTION_TITRE": "Les quartiers"},
			},
			{
				ID: "pg-3", Order: 3, TemplateID: "t-cluster", TemplateName: "CLUSTER",
				Status:   types.StatusValidated,
				Content:  map[string]string{"CLUSTER_TITRE": "Centre-ville"},
				Metadata: types.PageMetadata{ClusterID: "c-1", ClusterName: "Centre", PageType: "cluster"},
			},
		},
	}
}

func TestRunInjectsSommaire(t *testing.T) {
	deps := Deps{Store: exportStore(), Services: fieldsvc.DefaultRegistry(nil)}

	doc, report, err := Run(context.Background(), deps, "g-1", Options{})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if report.ComputedFields != 1 || len(report.ServiceErrors) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	raw := doc.Pages[0].Content.Text["SOMMAIRE_CONTENU"]
	if raw == "" {
		t.Fatal("sommaire field not injected")
	}
	var toc struct {
		Sections []struct {
			Titre    string `json:"titre"`
			Page     int    `json:"page"`
			Clusters []struct {
				Nom  string `json:"nom"`
				Page int    `json:"page"`
			} `json:"clusters"`
		} `json:"sections"`
	}
	if err := json.Unmarshal([]byte(raw), &toc); err != nil {
		t.Fatalf("injected sommaire is not JSON: %v", err)
	}
	if len(toc.Sections) != 1 || toc.Sections[0].Titre != "Les quartiers" {
		t.Fatalf("unexpected sommaire: %+v", toc)
	}
	if len(toc.Sections[0].Clusters) != 1 || toc.Sections[0].Clusters[0].Page != 3 {
		t.Fatalf("unexpected sommaire clusters: %+v", toc.Sections[0].Clusters)
	}
}

func TestRunNormalizesAndValidates(t *testing.T) {
	deps := Deps{Store: exportStore(), Services: fieldsvc.DefaultRegistry(nil)}

	doc, _, err := Run(context.Background(), deps, "g-1", Options{})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if doc.Normalization == nil {
		t.Fatal("normalization section missing")
	}
	for _, page := range doc.Pages {
		if page.Layout == nil {
			t.Fatalf("page %s has no layout flags", page.ID)
		}
	}
}

func TestRunCallerOverridesWinOverTemplate(t *testing.T) {
	deps := Deps{Store: exportStore(), Services: fieldsvc.DefaultRegistry(nil)}

	// Template says 60 for CLUSTER_TITRE; caller tightens it to 8.
	doc, _, err := Run(context.Background(), deps, "g-1", Options{
		MaxLengths: map[string]int{"CLUSTER_TITRE": 8},
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	got := doc.Pages[2].Content.Text["CLUSTER_TITRE"]
	if len([]rune(got)) != 8 || !strings.HasSuffix(got, "…") {
		t.Fatalf("caller override not applied: %q", got)
	}
}

func TestRunServiceFailureDoesNotAbort(t *testing.T) {
	store := exportStore()
	store.templates["t-sommaire"].Fields[1].FieldService = "fantome"
	deps := Deps{Store: store, Services: fieldsvc.DefaultRegistry(nil)}

	doc, report, err := Run(context.Background(), deps, "g-1", Options{})
	if err != nil {
		t.Fatalf("a failing field service must not abort the export: %v", err)
	}
	if len(report.ServiceErrors) != 1 {
		t.Fatalf("service failure not reported: %+v", report)
	}
	se := report.ServiceErrors[0]
	if se.ServiceID != "fantome" || se.FieldName != "SOMMAIRE_CONTENU" {
		t.Fatalf("unexpected service error: %+v", se)
	}
	if _, ok := doc.Pages[0].Content.Text["SOMMAIRE_CONTENU"]; ok {
		t.Fatal("failed field must stay unfilled")
	}
	if len(doc.Pages) != 3 {
		t.Fatal("other pages must survive a service failure")
	}
}

func TestRunGuideNotFoundIsFatal(t *testing.T) {
	deps := Deps{Store: exportStore(), Services: fieldsvc.DefaultRegistry(nil)}
	_, _, err := Run(context.Background(), deps, "g-missing", Options{})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
