package pipe

import (
	"github.com/walterwhite-69/Miruro-API/internal/jsonvalue"
)

// identifierKey is the only member name whose string values get decoded
const identifierKey = "id"

// TranslateInPlace decodes every string stored under an "id" key anywhere in v.
// Other strings, including array elements and look-alike values under other
// keys, are left alone.
func TranslateInPlace(v *jsonvalue.Value) int {
	translated := 0
	jsonvalue.Walk(v, func(key string, child *jsonvalue.Value) {
		if key != identifierKey {
			return
		}
		s, ok := child.AsString()
		if !ok {
			return
		}
		if res := tryDecodeIdentifier(s); res.decoded {
			child.SetString(res.text)
			translated++
		}
	})
	return translated
}
