package plugin

import (
	"fmt"
	"sort"
)

// ObjectSet is the ordered list of records making up a plugin.
type ObjectSet []Record

// Record is one top-level plugin record.
type Record struct {
	Tag     string  `json:"type"`
	Unknown uint32  `json:"header,omitempty"`
	Flags   uint32  `json:"flags,omitempty"`
	Fields  []Field `json:"fields"`
}

// Field is one sub-record. Exactly one of Text or Data carries the payload;
// both are empty for zero-length sub-records.
type Field struct {
	Tag        string  `json:"tag"`
	Text       *string `json:"text,omitempty"`
	Terminated bool    `json:"terminated,omitempty"`
	Data       []byte  `json:"data,omitempty"`
}

// TextField builds a NUL-terminated text sub-record.
func TextField(tag, text string) Field {
	return Field{Tag: tag, Text: &text, Terminated: true}
}

// DataField builds a raw sub-record.
func DataField(tag string, data []byte) Field {
	return Field{Tag: tag, Data: data}
}

// Validate checks the structural rules the writer depends on.
func (s ObjectSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidObjectSet)
	}
	if s[0].Tag != headerTag {
		return fmt.Errorf("%w: first record is %q, want %q", ErrInvalidObjectSet, s[0].Tag, headerTag)
	}
	for i, rec := range s {
		if !validTag(rec.Tag) {
			return fmt.Errorf("%w: record %d has invalid tag %q", ErrInvalidObjectSet, i, rec.Tag)
		}
		for j, f := range rec.Fields {
			if !validTag(f.Tag) {
				return fmt.Errorf("%w: record %d (%s) field %d has invalid tag %q", ErrInvalidObjectSet, i, rec.Tag, j, f.Tag)
			}
			if f.Text != nil && f.Data != nil {
				return fmt.Errorf("%w: record %d (%s) field %s has both text and data", ErrInvalidObjectSet, i, rec.Tag, f.Tag)
			}
			if f.Terminated && f.Text == nil {
				return fmt.Errorf("%w: record %d (%s) field %s is terminated without text", ErrInvalidObjectSet, i, rec.Tag, f.Tag)
			}
		}
	}
	return nil
}

// TagCount is the number of records sharing a tag.
type TagCount struct {
	Tag   string
	Count int
}

// Summarize counts records by tag, most frequent first.
func Summarize(set ObjectSet) []TagCount {
	counts := make(map[string]int)
	for _, rec := range set {
		counts[rec.Tag]++
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
