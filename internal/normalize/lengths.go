package normalize

// defaultMaxLengths is the built-in per-field truncation table. Callers can
// override any entry (template max_chars and explicit overrides both merge
// on top of this).
var defaultMaxLengths = map[string]int{
	"COVER_TITRE":        40,
	"EDITO_TITRE":        60,
	"EDITO_TEXTE":        1200,
	"SECTION_TITRE":      50,
	"SECTION_SOUS_TITRE": 90,
	"CLUSTER_TITRE":      60,
	"CLUSTER_INTRO":      600,
	"POI_TITRE":          60,
	"POI_ACCROCHE":       150,
	"POI_DESCRIPTION":    800,
	"POI_ADRESSE":        120,
	"POI_HORAIRES":       160,
	"INSPIRATION_TITRE":  60,
	"INSPIRATION_INTRO":  500,
	"SAISON_TITRE":       40,
	"SAISON_TEXTE":       700,
}

// layoutVariants maps template-name prefixes to layout variants, checked in
// order; the first matching prefix wins.
var layoutVariants = []struct {
	prefix  string
	variant string
}{
	{"COVER", "cover"},
	{"EDITO", "edito"},
	{"SOMMAIRE", "sommaire"},
	{"SECTION", "section"},
	{"CLUSTER", "cluster"},
	{"POI", "poi"},
	{"INSPIRATION", "inspiration"},
	{"SAISON", "saison"},
}

// mergedMaxLengths layers caller overrides on top of the built-in table.
func mergedMaxLengths(overrides map[string]int) map[string]int {
	merged := make(map[string]int, len(defaultMaxLengths)+len(overrides))
	for k, v := range defaultMaxLengths {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
