package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StatusSet is a set of HTTP status codes, unmarshaled from a YAML
// list and kept as a map for O(1) membership checks.
//
// The source design's config loader has to guard against a cyclic
// reference when deep-copying a dynamic table that can hold either an
// array or a nested object at the same key. StatusSet sidesteps the
// whole class of bug: Go's static typing means this field can only
// ever be the flat list of ints the schema says it is, so there is
// nothing dynamic left to walk when the Config is copied.
type StatusSet map[int]struct{}

// NewStatusSet builds a StatusSet from a slice of status codes.
func NewStatusSet(codes ...int) StatusSet {
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether code is a member of the set.
func (s StatusSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

// UnmarshalYAML decodes a YAML sequence of integers into the set.
func (s *StatusSet) UnmarshalYAML(value *yaml.Node) error {
	var codes []int
	if err := value.Decode(&codes); err != nil {
		return fmt.Errorf("status set: %w", err)
	}
	*s = NewStatusSet(codes...)
	return nil
}

// MarshalYAML encodes the set back to a sorted YAML sequence.
func (s StatusSet) MarshalYAML() (interface{}, error) {
	codes := make([]int, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j-1] > codes[j]; j-- {
			codes[j-1], codes[j] = codes[j], codes[j-1]
		}
	}
	return codes, nil
}
