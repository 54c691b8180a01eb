package mapping

import "testing"

func TestResolveFieldLayerPrecedence(t *testing.T) {
	// Explicit override wins over the static table.
	if got := ResolveFieldLayer("POI_TITRE", "custom_layer"); got != "custom_layer" {
		t.Fatalf("explicit override not honored: %s", got)
	}
	// Static field table.
	if got := ResolveFieldLayer("POI_TITRE", ""); got != "poi_titre" {
		t.Fatalf("field table lookup failed: %s", got)
	}
	// Static picto table.
	if got := ResolveFieldLayer("POI_PICTO_PARKING", ""); got != "picto_parking" {
		t.Fatalf("picto table lookup failed: %s", got)
	}
	// Convention fallback: identity.
	if got := ResolveFieldLayer("POI_CHAMP_INCONNU", ""); got != "POI_CHAMP_INCONNU" {
		t.Fatalf("fallback should be identity, got %s", got)
	}
}

func TestResolvePictoMappingKnown(t *testing.T) {
	pv := ResolvePictoMapping("POI_PICTO_PARKING", "oui")
	if pv.Key != "parking" {
		t.Fatalf("expected key parking, got %q", pv.Key)
	}
	if pv.Label != "Parking" {
		t.Fatalf("expected label Parking, got %q", pv.Label)
	}
}

func TestResolvePictoMappingInactiveValue(t *testing.T) {
	// "non" values are mapped but resolve to an inactive (empty) key.
	pv := ResolvePictoMapping("POI_PICTO_ESCALIERS", "non")
	if pv.Key != "" {
		t.Fatalf("expected inactive picto, got key %q", pv.Key)
	}
	if pv.Label != "Escaliers" {
		t.Fatalf("expected mapped label, got %q", pv.Label)
	}
}

func TestResolvePictoMappingMissIsSafe(t *testing.T) {
	pv := ResolvePictoMapping("POI_PICTO_MYSTERE", "peut-etre")
	if pv.Key != "" {
		t.Fatalf("unknown combination should be inactive, got key %q", pv.Key)
	}
	if pv.Label != "peut-etre" {
		t.Fatalf("unknown combination should keep verbatim label, got %q", pv.Label)
	}
}

func TestResolveVariantLayer(t *testing.T) {
	if got := ResolveVariantLayer("POI_PICTO_PRIX", "moyen"); got != "picto_prix_2" {
		t.Fatalf("variant layer lookup failed: %s", got)
	}
	if got := ResolveVariantLayer("POI_PICTO_PRIX", "inconnu"); got != "" {
		t.Fatalf("variant miss should be empty, got %s", got)
	}
}

func TestIsPictoField(t *testing.T) {
	cases := map[string]bool{
		"POI_PICTO_PARKING":  true,
		"CLUSTER_PICTO_ZONE": true,
		"POI_TITRE":          false,
		"PICTOGRAMME":        false,
	}
	for name, want := range cases {
		if got := IsPictoField(name); got != want {
			t.Fatalf("IsPictoField(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestTableCopiesAreIndependent(t *testing.T) {
	a := FieldLayers()
	a["POI_TITRE"] = "mutated"
	if b := FieldLayers(); b["POI_TITRE"] == "mutated" {
		t.Fatal("FieldLayers must return an independent copy")
	}
}
