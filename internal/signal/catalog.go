package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Pattern is one selectable waveform template. ID is sent verbatim to the
// generation service; DisplayName is presentation only.
type Pattern struct {
	DisplayName string `json:"display_name"`
	ID          string `json:"id"`
}

// CategoryPatterns holds the patterns offered under one category, in service
// order.
type CategoryPatterns struct {
	Category Category  `json:"category"`
	Patterns []Pattern `json:"patterns"`
}

// PatternCatalog maps categories to ordered patterns for a single family.
type PatternCatalog struct {
	Family     Family             `json:"family"`
	Categories []CategoryPatterns `json:"categories"`
}

// IsEmpty reports whether the catalog offers no patterns at all.
func (c PatternCatalog) IsEmpty() bool {
	for _, cat := range c.Categories {
		if len(cat.Patterns) > 0 {
			return false
		}
	}
	return true
}

// CategoryNames returns the category keys in service order.
func (c PatternCatalog) CategoryNames() []Category {
	out := make([]Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, cat.Category)
	}
	return out
}

// Patterns returns the ordered patterns for category.
func (c PatternCatalog) Patterns(category Category) ([]Pattern, bool) {
	for _, cat := range c.Categories {
		if cat.Category == category {
			return cat.Patterns, true
		}
	}
	return nil, false
}

// HasCategory reports whether category is offered.
func (c PatternCatalog) HasCategory(category Category) bool {
	_, ok := c.Patterns(category)
	return ok
}

// Contains reports whether patternID is offered under category.
func (c PatternCatalog) Contains(category Category, patternID string) bool {
	patterns, ok := c.Patterns(category)
	if !ok {
		return false
	}
	for _, p := range patterns {
		if p.ID == patternID {
			return true
		}
	}
	return false
}

// FindPattern locates a pattern identifier anywhere in the catalog.
func (c PatternCatalog) FindPattern(patternID string) (Category, Pattern, bool) {
	for _, cat := range c.Categories {
		for _, p := range cat.Patterns {
			if p.ID == patternID {
				return cat.Category, p, true
			}
		}
	}
	return "", Pattern{}, false
}

// ResolvePattern accepts either a pattern identifier or a display name
// (case-insensitive) within category and returns the matching pattern.
func (c PatternCatalog) ResolvePattern(category Category, value string) (Pattern, bool) {
	patterns, ok := c.Patterns(category)
	if !ok {
		return Pattern{}, false
	}
	value = strings.TrimSpace(value)
	for _, p := range patterns {
		if p.ID == value {
			return p, true
		}
	}
	for _, p := range patterns {
		if strings.EqualFold(p.DisplayName, value) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Validate enforces uniqueness of identifiers within the family and of
// display names within each category.
func (c PatternCatalog) Validate() error {
	if c.IsEmpty() {
		return errors.New("catalog has no patterns")
	}
	ids := make(map[string]Category)
	seenCategories := make(map[Category]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if strings.TrimSpace(string(cat.Category)) == "" {
			return errors.New("catalog has an empty category key")
		}
		if _, dup := seenCategories[cat.Category]; dup {
			return fmt.Errorf("category %q listed twice", cat.Category)
		}
		seenCategories[cat.Category] = struct{}{}

		names := make(map[string]struct{}, len(cat.Patterns))
		for _, p := range cat.Patterns {
			if strings.TrimSpace(p.ID) == "" {
				return fmt.Errorf("category %q: pattern %q has an empty identifier", cat.Category, p.DisplayName)
			}
			if _, dup := names[p.DisplayName]; dup {
				return fmt.Errorf("category %q: display name %q listed twice", cat.Category, p.DisplayName)
			}
			names[p.DisplayName] = struct{}{}
			if prev, dup := ids[p.ID]; dup {
				return fmt.Errorf("pattern identifier %q appears in %q and %q", p.ID, prev, cat.Category)
			}
			ids[p.ID] = cat.Category
		}
	}
	return nil
}

// DecodeCatalog reads the service's `{category: {displayName: id}}` payload,
// keeping key order, and validates the result.
func DecodeCatalog(family Family, r io.Reader) (PatternCatalog, error) {
	catalog := PatternCatalog{Family: family}
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return PatternCatalog{}, err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return PatternCatalog{}, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return PatternCatalog{}, fmt.Errorf("category %q: %w", key, err)
		}
		entry := CategoryPatterns{Category: Category(key)}
		for dec.More() {
			name, err := stringToken(dec)
			if err != nil {
				return PatternCatalog{}, fmt.Errorf("category %q: %w", key, err)
			}
			var id string
			if err := dec.Decode(&id); err != nil {
				return PatternCatalog{}, fmt.Errorf("category %q pattern %q: %w", key, name, err)
			}
			entry.Patterns = append(entry.Patterns, Pattern{DisplayName: name, ID: id})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return PatternCatalog{}, err
		}
		catalog.Categories = append(catalog.Categories, entry)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return PatternCatalog{}, err
	}
	if err := catalog.Validate(); err != nil {
		return PatternCatalog{}, err
	}
	return catalog, nil
}

// WireJSON renders the catalog in the service's ordered wire shape.
func (c PatternCatalog) WireJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, string(cat.Category)); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, p := range cat.Patterns {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, p.DisplayName); err != nil {
				return nil, err
			}
			id, err := json.Marshal(p.ID)
			if err != nil {
				return nil, err
			}
			buf.Write(id)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	encoded, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	buf.WriteByte(':')
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("decode catalog: expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decode catalog: %w", err)
	}
	value, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("decode catalog: expected object key, got %v", tok)
	}
	return value, nil
}
