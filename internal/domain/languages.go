package domain

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize returns the canonical form of a free-text language tag or
// place name: NFC-normalized, trimmed, inner whitespace collapsed, case-folded
// and then title-cased. The canonical form is what gets stored and compared,
// so " english" and "ENGLISH" are the same tag.
//
// An input that is empty after trimming canonicalizes to "".
func Canonicalize(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if s == "" {
		return ""
	}
	// Casers carry state and are not safe for concurrent use, so build them per call.
	folded := cases.Fold().String(s)
	return cases.Title(language.Und).String(folded)
}

// LanguageSet is an unordered set of canonical language tags.
// The zero value is an empty set. Tags are kept sorted internally so that the
// serialized form is stable.
type LanguageSet struct {
	tags []string
}

// NewLanguageSet builds a set from raw tags, canonicalizing each one and
// dropping blanks and duplicates.
func NewLanguageSet(raw ...string) LanguageSet {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		tag := Canonicalize(r)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return LanguageSet{tags: tags}
}

// Len returns the number of tags in the set.
func (s LanguageSet) Len() int {
	return len(s.tags)
}

// Tags returns a sorted copy of the tags.
func (s LanguageSet) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Contains reports whether tag (after canonicalization) is in the set.
func (s LanguageSet) Contains(tag string) bool {
	tag = Canonicalize(tag)
	i := sort.SearchStrings(s.tags, tag)
	return i < len(s.tags) && s.tags[i] == tag
}

// Intersection returns the tags present in both sets.
func (s LanguageSet) Intersection(other LanguageSet) LanguageSet {
	var common []string
	i, j := 0, 0
	for i < len(s.tags) && j < len(other.tags) {
		switch {
		case s.tags[i] == other.tags[j]:
			common = append(common, s.tags[i])
			i++
			j++
		case s.tags[i] < other.tags[j]:
			i++
		default:
			j++
		}
	}
	return LanguageSet{tags: common}
}

// Intersects reports whether the two sets share at least one tag.
func (s LanguageSet) Intersects(other LanguageSet) bool {
	return s.Intersection(other).Len() > 0
}

// Equal reports whether both sets hold the same tags.
func (s LanguageSet) Equal(other LanguageSet) bool {
	if len(s.tags) != len(other.tags) {
		return false
	}
	for i := range s.tags {
		if s.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// String joins the tags for display.
func (s LanguageSet) String() string {
	return strings.Join(s.tags, ", ")
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s LanguageSet) MarshalJSON() ([]byte, error) {
	if s.tags == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.tags)
}

// UnmarshalJSON decodes a JSON array of tags, re-canonicalizing them.
func (s *LanguageSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLanguages, err)
	}
	*s = NewLanguageSet(raw...)
	return nil
}

// Value implements driver.Valuer so the set can be written to a JSONB column.
func (s LanguageSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB columns.
func (s *LanguageSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = LanguageSet{}
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidLanguages, src)
	}
}
