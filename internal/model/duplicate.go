package model

// DuplicateGroup is a cluster of subscriptions judged to be the same service.
type DuplicateGroup struct {
	Key           string // Sorted member ids joined by "-"
	Reason        string
	Subscriptions []Subscription
	Similarity    float64
}

// KeySet is a set of dismissed keys, either duplicate group keys or
// notification ids.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from the given keys.
func NewKeySet(keys ...string) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Has reports whether key is present. A nil set contains nothing.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key into the set.
func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}
