package quote

import (
	"encoding/json"
	"slices"
)

// TagSet is an ordered set of strings. Insertion order is preserved and a
// string appears at most once.
type TagSet struct {
	items []string
}

// NewTagSet builds a TagSet from tags, dropping duplicates and empty strings.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	s.Add(tags...)
	return s
}

// ParseTagSet parses the JSON-array serialization used by the store.
// An empty string yields an empty set.
func ParseTagSet(raw string) (TagSet, error) {
	if raw == "" {
		return TagSet{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return TagSet{}, err
	}
	return NewTagSet(tags...), nil
}

// Add appends each tag not already present and returns how many were added.
func (s *TagSet) Add(tags ...string) int {
	added := 0
	for _, t := range tags {
		if t == "" || s.Contains(t) {
			continue
		}
		s.items = append(s.items, t)
		added++
	}
	return added
}

// Remove drops every tag in tags and returns how many were removed.
// Surviving tags keep their relative order.
func (s *TagSet) Remove(tags ...string) int {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(t string) bool {
		return slices.Contains(tags, t)
	})
	return before - len(s.items)
}

// Contains reports whether tag is in the set.
func (s TagSet) Contains(tag string) bool {
	return slices.Contains(s.items, tag)
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s.items)
}

// First returns the first tag (the capture scope), or "" when empty.
func (s TagSet) First() string {
	if len(s.items) == 0 {
		return ""
	}
	return s.items[0]
}

// Slice returns a copy of the tags in order.
func (s TagSet) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// String returns the JSON-array serialization.
func (s TagSet) String() string {
	data, _ := json.Marshal(s.Slice())
	return string(data)
}

// MarshalJSON implements json.Marshaler.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
