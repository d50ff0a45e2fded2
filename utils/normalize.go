package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// NormalizeDTO trims string fields and rounds float64 fields on a pointer-to-struct DTO.
// Nested structs and slices of structs are walked as well.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizeValue(v.Elem())
}

func normalizeValue(s reflect.Value) {
	switch s.Kind() {
	case reflect.Struct:
		for i := 0; i < s.NumField(); i++ {
			normalizeValue(s.Field(i))
		}
	case reflect.Slice:
		for i := 0; i < s.Len(); i++ {
			normalizeValue(s.Index(i))
		}
	case reflect.Ptr:
		if !s.IsNil() {
			normalizeValue(s.Elem())
		}
	case reflect.String:
		if s.CanSet() {
			s.SetString(strings.TrimSpace(s.String()))
		}
	case reflect.Float64:
		if s.CanSet() {
			s.SetFloat(Round2(s.Float()))
		}
	}
}

// ParseIntDefault parses a non-negative int, returning def on error.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}

// ClampLimit bounds a requested page size to (0, max], using max when unset.
func ClampLimit(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
