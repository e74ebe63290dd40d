package assemble

import (
	"math"
	"reflect"

	"github.com/seenimoa/etftracker/pkg/models"
)

// Sanitize returns v with every NaN or ±Inf float replaced by 0, descending
// into map[string]any and []any. Other values are returned unchanged.
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Sanitize(item)
		}
		return out
	case float64:
		return finite(t)
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return float32(0)
		}
		return t
	default:
		return v
	}
}

// SanitizeRecord zeroes non-finite floats in rec in place.
func SanitizeRecord(rec *models.InstrumentRecord) {
	SanitizeValue(rec)
}

// SanitizeRecords zeroes non-finite floats in every record in place.
func SanitizeRecords(recs []models.InstrumentRecord) {
	for i := range recs {
		SanitizeValue(&recs[i])
	}
}

// SanitizeValue walks the value ptr points to (structs, slices, arrays,
// maps, pointers, interfaces) and zeroes every non-finite float in place.
// Unexported fields are skipped.
func SanitizeValue(ptr any) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	walk(v.Elem())
}

func walk(v reflect.Value) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		if v.CanSet() {
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				v.SetFloat(0)
			}
		}
	case reflect.Pointer:
		if !v.IsNil() {
			walk(v.Elem())
		}
	case reflect.Interface:
		if v.IsNil() || !v.CanSet() {
			return
		}
		// Interface contents are not addressable: walk a copy and store it back.
		elem := reflect.New(v.Elem().Type()).Elem()
		elem.Set(v.Elem())
		walk(elem)
		v.Set(elem)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				walk(v.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() {
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.New(iter.Value().Type()).Elem()
			elem.Set(iter.Value())
			walk(elem)
			v.SetMapIndex(iter.Key(), elem)
		}
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
