package contract

import (
	"math"
	"reflect"

	"gopkg.in/yaml.v3"
)

// ViewField describes one field of a strongly-typed metadata view.
//
// Views are plain structs. The metadata key defaults to the field name and
// can be overridden with a `meta` tag; `meta:"-"` skips the field. A
// `default` tag holds a YAML scalar used when the key is absent:
//
//	type PluginMeta struct {
//	    Name     string
//	    Priority int `meta:"priority" default:"42"`
//	}
type ViewField struct {
	Name       string
	Key        string
	Type       reflect.Type
	Default    string
	HasDefault bool
	index      int
}

// ViewFields returns the fields of the metadata view t. Map views
// (map[string]V) have no fields. Pointer views describe their element.
func ViewFields(t reflect.Type) ([]ViewField, error) {
	if t == nil {
		return nil, ArgumentError{Name: "view", Reason: "must not be nil"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case isMapView(t):
		return nil, nil
	case t.Kind() != reflect.Struct:
		return nil, ArgumentError{Name: "view", Reason: t.String() + " is not a struct or map[string] metadata view"}
	}

	fields := make([]ViewField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := sf.Name
		if tag, ok := sf.Tag.Lookup("meta"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				key = tag
			}
		}
		def, hasDef := sf.Tag.Lookup("default")
		fields = append(fields, ViewField{
			Name:       sf.Name,
			Key:        key,
			Type:       sf.Type,
			Default:    def,
			HasDefault: hasDef,
			index:      i,
		})
	}
	return fields, nil
}

// RequiredMetadata lists the keys a view cannot populate without: fields
// that declare no default.
func RequiredMetadata(view reflect.Type) []Requirement {
	fields, err := ViewFields(view)
	if err != nil {
		return nil
	}
	var reqs []Requirement
	for _, f := range fields {
		if !f.HasDefault {
			reqs = append(reqs, Requirement{Key: f.Key, Type: f.Type})
		}
	}
	return reqs
}

// Project builds a value of the view type from md.
//
// Struct views take each field from its key, falling back to the declared
// default; a field with neither fails with MetadataMismatchError. Map views
// receive a copy of every entry whose value fits the map's element type.
func Project(md Metadata, view reflect.Type) (any, error) {
	if view == nil {
		return nil, ArgumentError{Name: "view", Reason: "must not be nil"}
	}
	if view.Kind() == reflect.Pointer {
		v, err := Project(md, view.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(view.Elem())
		ptr.Elem().Set(reflect.ValueOf(v))
		return ptr.Interface(), nil
	}
	if isMapView(view) {
		out := reflect.MakeMapWithSize(view, len(md))
		for k, v := range md {
			if v == nil {
				continue
			}
			fv, ok := fit(reflect.ValueOf(v), view.Elem())
			if !ok {
				continue
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(view.Key()), fv)
		}
		return out.Interface(), nil
	}

	fields, err := ViewFields(view)
	if err != nil {
		return nil, err
	}
	out := reflect.New(view).Elem()
	for _, f := range fields {
		dst := out.Field(f.index)
		raw, ok := md[f.Key]
		switch {
		case ok && raw != nil:
			if err := assign(dst, reflect.ValueOf(raw)); err != nil {
				return nil, mismatch(view, f, "value of type "+reflect.TypeOf(raw).String()+" does not fit "+f.Type.String())
			}
		case f.HasDefault:
			if err := yaml.Unmarshal([]byte(f.Default), dst.Addr().Interface()); err != nil {
				return nil, mismatch(view, f, "bad default "+f.Default+": "+err.Error())
			}
		default:
			return nil, mismatch(view, f, "no value and no default")
		}
	}
	return out.Interface(), nil
}

func isMapView(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func assign(dst, src reflect.Value) error {
	v, ok := fit(src, dst.Type())
	if !ok {
		return ErrMetadataMismatch
	}
	dst.Set(v)
	return nil
}

// Fits reports whether v can be stored in a field of type t: v is
// assignable, or both are numeric and the conversion loses nothing.
func Fits(v any, t reflect.Type) bool {
	if v == nil || t == nil {
		return false
	}
	_, ok := fit(reflect.ValueOf(v), t)
	return ok
}

func fit(src reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if src.Type().AssignableTo(t) {
		return src, true
	}
	if !isNumeric(src.Kind()) || !isNumeric(t.Kind()) {
		return reflect.Value{}, false
	}
	zero := reflect.New(t).Elem()
	switch {
	case isInt(src.Kind()):
		n := src.Int()
		switch {
		case isInt(t.Kind()):
			return src.Convert(t), !zero.OverflowInt(n)
		case isUint(t.Kind()):
			return src.Convert(t), n >= 0 && !zero.OverflowUint(uint64(n))
		}
		return src.Convert(t), true
	case isUint(src.Kind()):
		n := src.Uint()
		switch {
		case isInt(t.Kind()):
			return src.Convert(t), n <= math.MaxInt64 && !zero.OverflowInt(int64(n))
		case isUint(t.Kind()):
			return src.Convert(t), !zero.OverflowUint(n)
		}
		return src.Convert(t), true
	}

	f := src.Float()
	switch {
	case isInt(t.Kind()):
		ok := f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
		if !ok {
			return reflect.Value{}, false
		}
	case isUint(t.Kind()):
		ok := f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
		if !ok {
			return reflect.Value{}, false
		}
	default:
		if zero.OverflowFloat(f) {
			return reflect.Value{}, false
		}
	}
	return src.Convert(t), true
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func mismatch(view reflect.Type, f ViewField, reason string) error {
	return MetadataMismatchError{View: view.String(), Field: f.Name, Key: f.Key, Reason: reason}
}
