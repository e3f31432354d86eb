package entity

// FieldBag is an untyped key-value record returned by the AI extraction
// service. Field names vary by provider and prompt, so a bag is never read
// directly by downstream components; it is always passed through the
// accessor and normalization functions in the reconcile package first.
type FieldBag map[string]any

// Has reports whether the bag carries a non-nil value for key.
func (b FieldBag) Has(key string) bool {
	if b == nil {
		return false
	}
	v, ok := b[key]
	return ok && v != nil
}

// Get returns the raw value for key, or nil when absent.
func (b FieldBag) Get(key string) any {
	if b == nil {
		return nil
	}
	return b[key]
}

// First returns the value of the first key present in the bag, probing in
// the given priority order. The second return reports whether any key hit.
func (b FieldBag) First(keys ...string) (any, bool) {
	for _, key := range keys {
		if b.Has(key) {
			return b[key], true
		}
	}
	return nil, false
}

// Slice returns the value under key as a []any, or nil when the key is
// absent or holds a non-slice value.
func (b FieldBag) Slice(key string) []any {
	v, ok := b.Get(key).([]any)
	if !ok {
		return nil
	}
	return v
}

// Bags returns the value under key as a list of field bags, skipping
// elements that are not objects.
func (b FieldBag) Bags(key string) []FieldBag {
	return AsBags(b.Slice(key))
}

// AsBag converts a raw decoded JSON value into a FieldBag, returning nil
// when the value is not an object.
func AsBag(v any) FieldBag {
	switch m := v.(type) {
	case FieldBag:
		return m
	case map[string]any:
		return FieldBag(m)
	default:
		return nil
	}
}

// AsBags converts a raw decoded JSON array into field bags, dropping
// non-object elements.
func AsBags(items []any) []FieldBag {
	if len(items) == 0 {
		return nil
	}
	bags := make([]FieldBag, 0, len(items))
	for _, item := range items {
		if bag := AsBag(item); bag != nil {
			bags = append(bags, bag)
		}
	}
	return bags
}
