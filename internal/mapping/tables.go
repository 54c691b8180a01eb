package mapping

// Static lookup tables kept for backward compatibility with legacy field
// names. New templates carry indesign_layer and option_layers directly on
// the field definition; these tables are the deprecated fallback path.
// They are read-only and must never be mutated at runtime.

// fieldLayers maps legacy field names to InDesign layer identifiers.
var fieldLayers = map[string]string{
	"COVER_TITRE":          "cover_titre",
	"COVER_ANNEE":          "cover_annee",
	"COVER_IMAGE":          "cover_photo",
	"EDITO_TITRE":          "edito_titre",
	"EDITO_TEXTE":          "edito_texte",
	"SOMMAIRE_TITRE":       "sommaire_titre",
	"SOMMAIRE_CONTENU":     "sommaire_contenu",
	"SECTION_TITRE":        "section_titre",
	"SECTION_SOUS_TITRE":   "section_sous_titre",
	"CLUSTER_TITRE":        "cluster_titre",
	"CLUSTER_INTRO":        "cluster_intro",
	"CLUSTER_IMAGE":        "cluster_photo",
	"POI_TITRE":            "poi_titre",
	"POI_ACCROCHE":         "poi_accroche",
	"POI_DESCRIPTION":      "poi_texte",
	"POI_ADRESSE":          "poi_adresse",
	"POI_HORAIRES":         "poi_horaires",
	"POI_SITE_WEB":         "poi_site_web",
	"POI_IMAGE_1":          "poi_photo_1",
	"POI_IMAGE_2":          "poi_photo_2",
	"INSPIRATION_TITRE":    "inspiration_titre",
	"INSPIRATION_INTRO":    "inspiration_intro",
	"INSPIRATION_IMAGE":    "inspiration_photo",
	"SAISON_TITRE":         "saison_titre",
	"SAISON_TEXTE":         "saison_texte",
	"SAISON_IMAGE":         "saison_photo",
}

// pictoLayers maps legacy picto field names to their InDesign layers when
// the field definition has no explicit override.
var pictoLayers = map[string]string{
	"POI_PICTO_ACCES_PMR":  "picto_pmr",
	"POI_PICTO_ANIMAUX":    "picto_animaux",
	"POI_PICTO_ESCALIERS":  "picto_escaliers",
	"POI_PICTO_PARKING":    "picto_parking",
	"POI_PICTO_RESA":       "picto_resa",
	"POI_PICTO_PRIX":       "picto_prix",
	"CLUSTER_PICTO_ZONE":   "picto_zone",
}

// PictoValue is the resolution of one field/value pair: the abstract picto
// key the renderer toggles, and the human-readable label. An empty Key
// means the picto is inactive (serialized as a null picto_key).
type PictoValue struct {
	Key   string
	Label string
}

// pictoValues maps "FIELD_NAME:value" composite keys to picto resolutions.
// "non"/"off" style values deliberately resolve to an empty key: the picto
// exists in the layout but stays inactive.
var pictoValues = map[string]PictoValue{
	"POI_PICTO_ACCES_PMR:oui":      {Key: "pmr", Label: "Accessible PMR"},
	"POI_PICTO_ACCES_PMR:non":      {Key: "", Label: "Accessible PMR"},
	"POI_PICTO_ANIMAUX:oui":        {Key: "animaux", Label: "Animaux admis"},
	"POI_PICTO_ANIMAUX:non":        {Key: "", Label: "Animaux admis"},
	"POI_PICTO_ESCALIERS:oui":      {Key: "escaliers", Label: "Escaliers"},
	"POI_PICTO_ESCALIERS:non":      {Key: "", Label: "Escaliers"},
	"POI_PICTO_PARKING:oui":        {Key: "parking", Label: "Parking"},
	"POI_PICTO_PARKING:non":        {Key: "", Label: "Parking"},
	"POI_PICTO_RESA:conseillee":    {Key: "resa_conseillee", Label: "Réservation conseillée"},
	"POI_PICTO_RESA:obligatoire":   {Key: "resa_obligatoire", Label: "Réservation obligatoire"},
	"POI_PICTO_RESA:sans":          {Key: "", Label: "Sans réservation"},
	"POI_PICTO_PRIX:gratuit":       {Key: "prix_gratuit", Label: "Gratuit"},
	"POI_PICTO_PRIX:abordable":     {Key: "prix_1", Label: "€"},
	"POI_PICTO_PRIX:moyen":         {Key: "prix_2", Label: "€€"},
	"POI_PICTO_PRIX:cher":          {Key: "prix_3", Label: "€€€"},
	"CLUSTER_PICTO_ZONE:centre":    {Key: "zone_centre", Label: "Centre-ville"},
	"CLUSTER_PICTO_ZONE:littoral":  {Key: "zone_littoral", Label: "Littoral"},
	"CLUSTER_PICTO_ZONE:campagne":  {Key: "zone_campagne", Label: "Campagne"},
}

// variantLayers maps "FIELD_NAME:value" composite keys to per-variant
// layers. Consulted only when the field definition lacks option_layers.
var variantLayers = map[string]string{
	"POI_PICTO_RESA:conseillee":  "picto_resa_conseillee",
	"POI_PICTO_RESA:obligatoire": "picto_resa_obligatoire",
	"POI_PICTO_PRIX:gratuit":     "picto_prix_gratuit",
	"POI_PICTO_PRIX:abordable":   "picto_prix_1",
	"POI_PICTO_PRIX:moyen":       "picto_prix_2",
	"POI_PICTO_PRIX:cher":        "picto_prix_3",
}

// FieldLayers returns a copy of the static field-to-layer table.
func FieldLayers() map[string]string {
	return copyTable(fieldLayers)
}

// PictoLayers returns a copy of the static picto-to-layer table.
func PictoLayers() map[string]string {
	return copyTable(pictoLayers)
}

// PictoValues returns a copy of the static picto-value table with string
// keys, for inclusion in export documents.
func PictoValues() map[string]map[string]string {
	out := make(map[string]map[string]string, len(pictoValues))
	for k, v := range pictoValues {
		out[k] = map[string]string{"picto_key": v.Key, "label": v.Label}
	}
	return out
}

func copyTable(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
