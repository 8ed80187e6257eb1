package config

import (
	"reflect"
	"strings"
)

// Redacted converts cfg into a generic map for logging, dropping every field
// tagged `sensitive:"true"` and every nil pointer.
func Redacted(cfg interface{}) map[string]interface{} {
	out, _ := redact(reflect.ValueOf(cfg)).(map[string]interface{})
	if out == nil {
		return map[string]interface{}{}
	}

	return out
}

func redact(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]interface{}, t.NumField())

		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("sensitive") == "true" {
				continue
			}

			name := strings.Split(f.Tag.Get("json"), ",")[0]
			if name == "-" {
				continue
			}

			if name == "" {
				name = f.Name
			}

			if val := redact(v.Field(i)); val != nil {
				out[name] = val
			}
		}

		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = redact(v.Index(i))
		}

		return out
	case reflect.Map:
		out := make(map[string]interface{}, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			if iter.Key().Kind() == reflect.String {
				out[iter.Key().String()] = redact(iter.Value())
			}
		}

		return out
	case reflect.Invalid:
		return nil
	default:
		return v.Interface()
	}
}
