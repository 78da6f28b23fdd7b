package recommend

import (
	"sort"
	"strings"
)

// TagSet is a normalized set of tags: lower-cased, trimmed, deduplicated.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from raw values, normalizing each entry.
func NewTagSet(values ...string) TagSet {
	set := make(TagSet, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the tag.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Values returns the tags in sorted order.
func (s TagSet) Values() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// RawItem is an item record as the catalog store hands it over. Tag fields
// live in a loosely-typed metadata map because stored shapes vary: a tag
// field may be a list of strings or a single comma-delimited string.
// RawRelevance is the relevance estimate supplied by the embedding index,
// where higher means more relevant; it is zero when the index supplied none.
type RawItem struct {
	ID           string
	Name         string
	Description  string
	Price        float64
	Currency     string
	Brand        string
	Link         string
	ImageURL     string
	Tags         map[string]any
	Rating       float64
	ReviewCount  int
	InStock      bool
	RawRelevance float64
}

// CandidateTags holds the canonical tag sets of one candidate.
type CandidateTags struct {
	Interests  TagSet
	Vibe       TagSet
	Categories TagSet
	Occasions  TagSet
}

// Candidate is one item under consideration within a single request.
// Immutable once built; the pipeline owns its lifetime.
type Candidate struct {
	ID           string
	Name         string
	Description  string
	Price        float64
	Currency     string
	Brand        string
	Link         string
	ImageURL     string
	Rating       float64
	ReviewCount  int
	InStock      bool
	Tags         CandidateTags
	RawRelevance float64
}

// NormalizeCandidate coerces a raw catalog item into the canonical Candidate
// shape. Tag fields that are neither list nor string normalize to empty sets;
// garbage tags never disqualify an otherwise relevant item.
func NormalizeCandidate(raw RawItem) Candidate {
	return Candidate{
		ID:           raw.ID,
		Name:         raw.Name,
		Description:  raw.Description,
		Price:        raw.Price,
		Currency:     raw.Currency,
		Brand:        raw.Brand,
		Link:         raw.Link,
		ImageURL:     raw.ImageURL,
		Rating:       raw.Rating,
		ReviewCount:  raw.ReviewCount,
		InStock:      raw.InStock,
		RawRelevance: raw.RawRelevance,
		Tags: CandidateTags{
			Interests:  NormalizeTagField(raw.Tags["interests"]),
			Vibe:       NormalizeTagField(raw.Tags["vibe"]),
			Categories: NormalizeTagField(raw.Tags["categories"]),
			Occasions:  NormalizeTagField(raw.Tags["occasions"]),
		},
	}
}

// NormalizeTagField coerces a list-or-string tag value into a TagSet.
// Lists map element-wise, strings split on commas, anything else is empty.
func NormalizeTagField(value any) TagSet {
	switch v := value.(type) {
	case []string:
		return NewTagSet(v...)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return NewTagSet(parts...)
	case string:
		return NewTagSet(strings.Split(v, ",")...)
	default:
		return TagSet{}
	}
}
