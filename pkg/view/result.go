// pkg/view/result.go
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"reflect"

	"github.com/joeydtaylor/modview/pkg/codec"
)

// Truthy reports whether v counts as a result: nil, false, zero numbers and
// empty strings, slices and maps do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case template.HTML:
		return x != ""
	case []byte:
		return len(x) > 0
	case http.Handler:
		return !isNilPtr(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// Respond converts a callback result into a response. Non-truthy values give
// nil (the pipeline continues); handlers pass through; strings and markup are
// served as HTML; anything else is encoded as JSON.
func Respond(v any) http.Handler {
	if !Truthy(v) {
		return nil
	}
	switch x := v.(type) {
	case http.Handler:
		return x
	case string:
		return HTML(x)
	case template.HTML:
		return HTML(string(x))
	case []byte:
		return HTML(string(x))
	default:
		return JSON(http.StatusOK, x)
	}
}

// HTML serves s with a text/html content type.
func HTML(s string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
	})
}

// JSON serves v encoded with the strict JSON codec.
func JSON(status int, v any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		b, err := codec.JSONStrict.Marshal(v)
		if err != nil {
			http.Error(w, "encode: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
		w.WriteHeader(status)
		_, _ = w.Write(b)
	})
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case template.HTML:
		return string(x)
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func isNilPtr(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
