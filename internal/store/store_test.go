package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelier-guides/maquette/internal/defra"
	"github.com/atelier-guides/maquette/internal/types"
)

// graphQLStub answers every query with the documents registered for the
// collection named in the query text.
func graphQLStub(t *testing.T, data map[string][]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		for collection, docs := range data {
			if strings.Contains(req.Query, collection) {
				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{collection: docs},
				})
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
}

func TestGuideByID(t *testing.T) {
	server := graphQLStub(t, map[string][]map[string]any{
		"Guide": {{
			"guide_id": "g-1", "name": "Guide de Nantes", "destination": "Nantes",
			"year": float64(2026), "language": "fr",
		}},
	})
	defer server.Close()

	s := New(defra.NewClient(server.URL))
	guide, err := s.GuideByID(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("GuideByID failed: %v", err)
	}
	if guide.Name != "Guide de Nantes" || guide.Year != 2026 || guide.Language != "fr" {
		t.Fatalf("unexpected guide: %+v", guide)
	}
}

func TestGuideByIDNotFound(t *testing.T) {
	server := graphQLStub(t, map[string][]map[string]any{"Guide": {}})
	defer server.Close()

	s := New(defra.NewClient(server.URL))
	_, err := s.GuideByID(context.Background(), "g-missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGuideByIDRejectsInvalidID(t *testing.T) {
	s := New(defra.NewClient("http://localhost:0"))
	_, err := s.GuideByID(context.Background(), `g"1`)
	if !errors.Is(err, types.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestPagesByCheminDeFerDecodesJSONColumns(t *testing.T) {
	server := graphQLStub(t, map[string][]map[string]any{
		"Page": {{
			"page_id":          "pg-1",
			"chemin_de_fer_id": "cdf-1",
			"order":            float64(3),
			"template_name":    "POI",
			"status":           "validated",
			"content_json":     `{"POI_TITRE":"Les Machines"}`,
			"metadata_json":    `{"cluster_id":"c-1","page_type":"poi"}`,
		}},
	})
	defer server.Close()

	s := New(defra.NewClient(server.URL))
	pages, err := s.PagesByCheminDeFer(context.Background(), "cdf-1")
	if err != nil {
		t.Fatalf("PagesByCheminDeFer failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	p := pages[0]
	if p.Order != 3 || p.Status != types.StatusValidated {
		t.Fatalf("unexpected page: %+v", p)
	}
	if p.Content["POI_TITRE"] != "Les Machines" {
		t.Fatalf("content column not decoded: %+v", p.Content)
	}
	if p.Metadata.ClusterID != "c-1" || p.Metadata.PageType != "poi" {
		t.Fatalf("metadata column not decoded: %+v", p.Metadata)
	}
}

func TestPagesByCheminDeFerTolerateEmptyContent(t *testing.T) {
	server := graphQLStub(t, map[string][]map[string]any{
		"Page": {{"page_id": "pg-1", "status": "draft"}},
	})
	defer server.Close()

	s := New(defra.NewClient(server.URL))
	pages, err := s.PagesByCheminDeFer(context.Background(), "cdf-1")
	if err != nil {
		t.Fatalf("PagesByCheminDeFer failed: %v", err)
	}
	if pages[0].Content == nil {
		t.Fatal("content must be initialized when the column is absent")
	}
}

func TestTemplateByNameDecodesFields(t *testing.T) {
	server := graphQLStub(t, map[string][]map[string]any{
		"Template": {{
			"template_id": "t-1",
			"name":        "POI",
			"fields_json": `[{"name":"POI_TITRE","type":"title","order":1,"max_chars":60}]`,
		}},
	})
	defer server.Close()

	s := New(defra.NewClient(server.URL))
	tpl, err := s.TemplateByName(context.Background(), "POI")
	if err != nil {
		t.Fatalf("TemplateByName failed: %v", err)
	}
	if len(tpl.Fields) != 1 || tpl.Fields[0].Name != "POI_TITRE" || tpl.Fields[0].MaxChars != 60 {
		t.Fatalf("fields column not decoded: %+v", tpl.Fields)
	}
}

func TestAsIntTolerance(t *testing.T) {
	if asInt(float64(7)) != 7 || asInt(7) != 7 || asInt(int64(7)) != 7 || asInt("7") != 0 || asInt(nil) != 0 {
		t.Fatal("asInt conversions wrong")
	}
}
