// Package compliance checks recipes against client allergies and diets by
// substring keyword matching. It is a best-effort filter.
package compliance

import (
	"sort"
	"strings"
)

// Dictionary is an immutable tag → triggers lookup built once at start-up.
type Dictionary struct {
	allergens map[string][]string
	diets     map[string][]string
}

// NewDictionary builds a dictionary from base, merging extra allergen
// entries on top. Tags and triggers are lowercased; blank triggers are dropped.
func NewDictionary(base Keywords, extraAllergens map[string][]string) *Dictionary {
	d := &Dictionary{
		allergens: make(map[string][]string, len(base.Allergens)+len(extraAllergens)),
		diets:     make(map[string][]string, len(base.Diets)),
	}
	for tag, triggers := range base.Allergens {
		d.allergens[normalizeTag(tag)] = normalizeTriggers(triggers)
	}
	for tag, triggers := range extraAllergens {
		key := normalizeTag(tag)
		if key == "" {
			continue
		}
		d.allergens[key] = dedupe(append(d.allergens[key], normalizeTriggers(triggers)...))
	}
	for tag, triggers := range base.Diets {
		d.diets[normalizeTag(tag)] = normalizeTriggers(triggers)
	}
	return d
}

// NewDefaultDictionary builds the dictionary from the built-in tables.
func NewDefaultDictionary() *Dictionary {
	return NewDictionary(DefaultKeywords(), nil)
}

// AllergenTriggers resolves a client allergen tag. Unknown tags fall back
// to the lowercased tag itself.
func (d *Dictionary) AllergenTriggers(tag string) []string {
	key := normalizeTag(tag)
	if triggers, ok := d.allergens[key]; ok {
		return triggers
	}
	if key == "" {
		return nil
	}
	return []string{key}
}

// DietTriggers resolves a diet tag. Only known diets have triggers.
func (d *Dictionary) DietTriggers(tag string) ([]string, bool) {
	triggers, ok := d.diets[normalizeTag(tag)]
	return triggers, ok
}

// AllergenTags lists known allergen tags, sorted.
func (d *Dictionary) AllergenTags() []string {
	tags := make([]string, 0, len(d.allergens))
	for tag := range d.allergens {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func normalizeTriggers(triggers []string) []string {
	out := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(triggers []string) []string {
	seen := make(map[string]struct{}, len(triggers))
	out := triggers[:0]
	for _, t := range triggers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
