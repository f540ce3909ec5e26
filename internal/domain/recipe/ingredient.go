package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// IngredientRef is one ingredient descriptor. Stored recipes carry either a
// plain string or an object with a name or item field; both decode into this
// type and Text normalizes them to a single comparable string.
type IngredientRef struct {
	plain      string
	structured map[string]any
	isPlain    bool
}

// PlainIngredient builds a plain-text ingredient.
func PlainIngredient(text string) IngredientRef {
	return IngredientRef{plain: text, isPlain: true}
}

// StructuredIngredient builds an object ingredient such as {"name": "harina", "qty": "200g"}.
func StructuredIngredient(fields map[string]any) IngredientRef {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return IngredientRef{structured: cp}
}

// PlainIngredients is a convenience for lists of plain strings.
func PlainIngredients(texts ...string) []IngredientRef {
	refs := make([]IngredientRef, 0, len(texts))
	for _, t := range texts {
		refs = append(refs, PlainIngredient(t))
	}
	return refs
}

// IsPlain reports whether the descriptor is a plain string.
func (i IngredientRef) IsPlain() bool {
	return i.isPlain
}

// Text returns the display string of the descriptor: the string itself,
// else the name field, else the item field, else a JSON rendering of the
// whole object.
func (i IngredientRef) Text() string {
	if i.isPlain {
		return i.plain
	}
	for _, key := range []string{"name", "item"} {
		if v, ok := i.structured[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	if len(i.structured) == 0 {
		return ""
	}
	raw, err := json.Marshal(i.structured)
	if err != nil {
		return fmt.Sprint(i.structured)
	}
	return string(raw)
}

// MarshalJSON writes the descriptor back in its original shape.
func (i IngredientRef) MarshalJSON() ([]byte, error) {
	if i.isPlain {
		return json.Marshal(i.plain)
	}
	if i.structured == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(i.structured)
}

// UnmarshalJSON accepts a JSON string, an object, or any other scalar
// (numbers and booleans are kept as their literal text).
func (i *IngredientRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*i = PlainIngredient("")
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode ingredient string: %w", err)
		}
		*i = PlainIngredient(s)
	case '{':
		fields := map[string]any{}
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return fmt.Errorf("decode ingredient object: %w", err)
		}
		*i = IngredientRef{structured: fields}
	default:
		*i = PlainIngredient(string(trimmed))
	}
	return nil
}

// String implements fmt.Stringer.
func (i IngredientRef) String() string {
	return i.Text()
}

// normalized returns the lowercase comparable form.
func (i IngredientRef) normalized() string {
	return strings.ToLower(i.Text())
}
