package jsonvalue

// WalkFunc is called for every object member and array element below the root.
// key is the member key, or "" for array elements.
type WalkFunc func(key string, v *Value)

// Walk visits v depth first. fn sees each child before Walk descends into it,
// so fn may rewrite a scalar child in place.
func Walk(v *Value, fn WalkFunc) {
	switch v.Kind() {
	case Object:
		for _, m := range v.members {
			fn(m.Key, m.Value)
			if m.Value.IsContainer() {
				Walk(m.Value, fn)
			}
		}
	case Array:
		for _, item := range v.items {
			fn("", item)
			if item.IsContainer() {
				Walk(item, fn)
			}
		}
	}
}
