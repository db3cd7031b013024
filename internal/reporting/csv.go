package reporting

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// RenderCSV renders a slice of flat record structs as CSV.
//
// The header row comes from the fields of the first record, using the json
// tag name when present. String values are quoted, numeric values are
// written bare. An empty slice renders to an empty string.
func RenderCSV(records any) (string, error) {
	v := reflect.ValueOf(records)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return "", fmt.Errorf("reporting: expected a slice, got %s", v.Kind())
	}
	if v.Len() == 0 {
		return "", nil
	}

	first := v.Index(0)
	for first.Kind() == reflect.Ptr {
		if first.IsNil() {
			return "", fmt.Errorf("reporting: nil record at index 0")
		}
		first = first.Elem()
	}
	if first.Kind() != reflect.Struct {
		return "", fmt.Errorf("reporting: expected struct records, got %s", first.Kind())
	}

	fields := csvFields(first.Type())

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(f.name)
	}
	sb.WriteByte('\n')

	for i := 0; i < v.Len(); i++ {
		rec := v.Index(i)
		for rec.Kind() == reflect.Ptr {
			if rec.IsNil() {
				return "", fmt.Errorf("reporting: nil record at index %d", i)
			}
			rec = rec.Elem()
		}
		for j, f := range fields {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(csvValue(rec.Field(f.index)))
		}
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

type csvField struct {
	name  string
	index int
}

// csvFields lists exported fields in declaration order, named by json tag
// when one is set.
func csvFields(t reflect.Type) []csvField {
	var fields []csvField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, csvField{name: name, index: i})
	}
	return fields
}

// csvValue formats one cell. Strings are quoted with internal quotes
// doubled, numbers and booleans are bare, times use RFC 3339.
func csvValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return quote(t.Format(time.RFC3339))
	}

	switch v.Kind() {
	case reflect.String:
		return quote(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return quote(fmt.Sprint(v.Interface()))
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
