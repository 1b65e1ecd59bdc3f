// Package fingerprint computes short content digests used as cache keys.
// The digests gate reuse of expensive analysis results; they are not a security boundary.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Length is the number of hex characters in a fingerprint.
const Length = 8

// Of returns an 8-character lowercase hex fingerprint of content, or "" when
// content is absent (nil, a nil pointer, or an empty string).
//
// Strings are hashed as-is. Any other value is serialized with encoding/json
// first, which emits struct fields in declaration order and map keys sorted,
// so equal values always produce equal fingerprints.
func Of(content any) string {
	if isAbsent(content) {
		return ""
	}

	var data []byte
	switch v := content.(type) {
	case string:
		data = []byte(v)
	case *string:
		data = []byte(*v)
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			encoded = []byte(fmt.Sprintf("%#v", v))
		}
		data = encoded
	}

	sum := xxhash.Sum64(data)
	return fmt.Sprintf("%08x", uint32(sum>>32))
}

// Equal reports whether two fingerprints are both present and identical.
func Equal(a, b string) bool {
	return a != "" && a == b
}

func isAbsent(content any) bool {
	if content == nil {
		return true
	}
	switch v := content.(type) {
	case string:
		return v == ""
	case *string:
		return v == nil || *v == ""
	case []byte:
		return len(v) == 0
	}
	rv := reflect.ValueOf(content)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
