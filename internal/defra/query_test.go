package defra

import (
	"errors"
	"strings"
	"testing"

	"github.com/atelier-guides/maquette/internal/types"
)

func TestValidateID(t *testing.T) {
	for _, id := range []string{"Page", "guide-123", "pg_01", "bafybeid"} {
		if err := ValidateID(id); err != nil {
			t.Fatalf("ValidateID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "pg 1", `pg"1`, "pg{1}", strings.Repeat("a", 501)} {
		err := ValidateID(id)
		if !errors.Is(err, types.ErrInvalidID) {
			t.Fatalf("ValidateID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestQueryBuilderFiltersUseVariables(t *testing.T) {
	query, vars, err := NewQuery("Page").
		Filter("chemin_de_fer_id", "cdf-1").
		Filter("order", 3).
		Fields("order", "template_name").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if strings.Contains(query, "cdf-1") {
		t.Fatalf("filter value leaked into query text: %s", query)
	}
	if !strings.Contains(query, "$f_chemin_de_fer_id: String") {
		t.Fatalf("missing string variable declaration: %s", query)
	}
	if !strings.Contains(query, "$f_order: Int") {
		t.Fatalf("missing int variable declaration: %s", query)
	}
	if vars["f_chemin_de_fer_id"] != "cdf-1" || vars["f_order"] != 3 {
		t.Fatalf("unexpected variables: %+v", vars)
	}
	if !strings.Contains(query, "_docID") {
		t.Fatalf("_docID not selected: %s", query)
	}
}

func TestQueryBuilderOrderAndLimit(t *testing.T) {
	query, _, err := NewQuery("Page").
		Filter("chemin_de_fer_id", "cdf-1").
		OrderBy("order", "asc").
		Limit(10).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(query, "order: {order: ASC}") {
		t.Fatalf("order clause missing: %s", query)
	}
	if !strings.Contains(query, "limit: 10") {
		t.Fatalf("limit clause missing: %s", query)
	}
}

func TestQueryBuilderFilterIn(t *testing.T) {
	query, vars, err := NewQuery("Poi").
		FilterIn("_docID", []string{"a", "b"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(query, "_in: $in__docID") {
		t.Fatalf("membership filter missing: %s", query)
	}
	got, ok := vars["in__docID"].([]string)
	if !ok || len(got) != 2 {
		t.Fatalf("unexpected in-variable: %+v", vars)
	}
}

func TestQueryBuilderRejectsBadFieldNames(t *testing.T) {
	_, _, err := NewQuery("Page").Filter(`order) { _docID } #`, 1).Build()
	if !errors.Is(err, types.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for injected field name, got %v", err)
	}
	_, _, err = NewQuery("bad collection").Build()
	if !errors.Is(err, types.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for bad collection, got %v", err)
	}
}

func TestMapToGraphQLInputEscapesStrings(t *testing.T) {
	out, err := mapToGraphQLInput(map[string]any{"name": `Quai "des" Antilles`})
	if err != nil {
		t.Fatalf("mapToGraphQLInput failed: %v", err)
	}
	if !strings.Contains(out, `\"des\"`) {
		t.Fatalf("quotes not escaped: %s", out)
	}
}
