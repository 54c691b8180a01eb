package fieldsvc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/atelier-guides/maquette/internal/export"
	"github.com/atelier-guides/maquette/internal/types"
)

type sommaireResult struct {
	Sections []SommaireSection `json:"sections"`
}

func runSommaire(t *testing.T, pages []*export.Page) sommaireResult {
	t.Helper()
	fc := &Context{Pages: pages}
	raw, err := Sommaire(context.Background(), fc)
	if err != nil {
		t.Fatalf("sommaire failed: %v", err)
	}
	var res sommaireResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		t.Fatalf("sommaire output is not valid JSON: %v", err)
	}
	return res
}

func TestSommaireSectionsAndClusters(t *testing.T) {
	pages := []*export.Page{
		{PageNumber: 1, Template: "COVER"},
		{PageNumber: 2, Template: "SECTION_ZONES", Titre: "Les quartiers"},
		{PageNumber: 3, Template: "CLUSTER", Metadata: types.PageMetadata{ClusterName: "Centre", PageType: "cluster"}},
		{PageNumber: 4, Template: "POI"},
		{PageNumber: 5, Template: "CLUSTER", Metadata: types.PageMetadata{ClusterName: "Port", PageType: "cluster"}},
		{PageNumber: 6, Template: "SECTION_ENVIES", Titre: "Nos envies"},
		{PageNumber: 7, Template: "INSPIRATION"},
	}

	res := runSommaire(t, pages)
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(res.Sections))
	}

	first := res.Sections[0]
	if first.Titre != "Les quartiers" || first.Page != 2 {
		t.Fatalf("unexpected first section: %+v", first)
	}
	if len(first.Clusters) != 2 {
		t.Fatalf("expected 2 clusters in first section, got %d", len(first.Clusters))
	}
	if first.Clusters[0].Nom != "Centre" || first.Clusters[0].Page != 3 {
		t.Fatalf("unexpected cluster entry: %+v", first.Clusters[0])
	}
	if first.Clusters[1].Nom != "Port" || first.Clusters[1].Page != 5 {
		t.Fatalf("unexpected cluster entry: %+v", first.Clusters[1])
	}

	second := res.Sections[1]
	if second.Titre != "Nos envies" || second.Page != 6 || len(second.Clusters) != 0 {
		t.Fatalf("unexpected second section: %+v", second)
	}
}

func TestSommaireImplicitSection(t *testing.T) {
	pages := []*export.Page{
		{PageNumber: 1, Template: "CLUSTER", Metadata: types.PageMetadata{ClusterName: "Centre", PageType: "cluster"}},
	}

	res := runSommaire(t, pages)
	if len(res.Sections) != 1 {
		t.Fatalf("expected implicit section, got %d sections", len(res.Sections))
	}
	if res.Sections[0].Titre != "Clusters et lieux" {
		t.Fatalf("unexpected implicit section title: %s", res.Sections[0].Titre)
	}
	if len(res.Sections[0].Clusters) != 1 || res.Sections[0].Clusters[0].Nom != "Centre" {
		t.Fatalf("implicit section missing cluster entry: %+v", res.Sections[0])
	}
}

func TestSommaireSectionTitleFallbacks(t *testing.T) {
	pages := []*export.Page{
		{PageNumber: 1, Template: "SECTION_SANS_TITRE", Section: "ZONES"},
		{PageNumber: 2, Template: "SECTION_NUE"},
	}

	res := runSommaire(t, pages)
	if res.Sections[0].Titre != "ZONES" {
		t.Fatalf("expected section-name fallback, got %s", res.Sections[0].Titre)
	}
	if res.Sections[1].Titre != "SECTION_NUE" {
		t.Fatalf("expected template-name fallback, got %s", res.Sections[1].Titre)
	}
}

func TestSommaireEmptyPageSet(t *testing.T) {
	res := runSommaire(t, nil)
	if res.Sections == nil || len(res.Sections) != 0 {
		t.Fatalf("empty page set must yield empty sections array: %+v", res)
	}
}
