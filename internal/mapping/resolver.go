// Package mapping resolves template field names and picto values to the
// layer identifiers and abstract picto keys the external renderer consumes.
// All functions are pure lookups over immutable tables: they never fail and
// degrade to safe defaults on unknown inputs.
package mapping

import "strings"

// pictoMarker is the field-name segment identifying picto fields.
const pictoMarker = "_PICTO_"

// IsPictoField reports whether the field name carries the picto marker.
func IsPictoField(fieldName string) bool {
	return strings.Contains(fieldName, pictoMarker)
}

// ResolveFieldLayer resolves the output layer identifier for a field.
// Precedence: explicit per-field override, static field table, static picto
// table, then the convention-derived fallback. Always returns a usable
// string.
func ResolveFieldLayer(fieldName, explicitLayer string) string {
	if explicitLayer != "" {
		return explicitLayer
	}
	if layer, ok := fieldLayers[fieldName]; ok {
		return layer
	}
	if layer, ok := pictoLayers[fieldName]; ok {
		return layer
	}
	return DeriveLayerName(fieldName)
}

// DeriveLayerName is the convention fallback for fields absent from every
// table: the layer id equals the field name.
func DeriveLayerName(fieldName string) string {
	return fieldName
}

// ResolvePictoMapping resolves a field/value pair to its picto key and
// label. Unknown combinations degrade to an inactive picto with the stored
// value as verbatim label.
func ResolvePictoMapping(fieldName, value string) PictoValue {
	if pv, ok := pictoValues[fieldName+":"+value]; ok {
		return pv
	}
	return PictoValue{Key: "", Label: value}
}

// ResolveVariantLayer resolves a per-variant layer from the static table.
// Used only when the field definition lacks its own option_layers. Returns
// an empty string on miss.
func ResolveVariantLayer(fieldName, value string) string {
	return variantLayers[fieldName+":"+value]
}
