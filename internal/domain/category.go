package domain

import (
	"fmt"
	"strings"
)

// Category is the closed set of event kinds. The value is the symbolic name.
type Category string

const (
	CategoryParty Category = "PARTY"
	CategorySport Category = "SPORT"
	CategoryShow  Category = "SHOW"
	CategoryTalk  Category = "TALK"
	CategoryOther Category = "OTHER"
)

var categoryLabels = map[Category]string{
	CategoryParty: "Party",
	CategorySport: "Sport",
	CategoryShow:  "Show",
	CategoryTalk:  "Talk",
	CategoryOther: "Other",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{CategoryParty, CategorySport, CategoryShow, CategoryTalk, CategoryOther}
}

// ParseCategory looks a category up by label or symbolic name, ignoring case
// and surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) || strings.EqualFold(categoryLabels[c], s) {
			return c, true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) String() string {
	return c.Label()
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText accepts labels as well as symbolic names. An empty value
// decodes to the zero category and is rejected later by validation.
func (c *Category) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*c = ""
		return nil
	}
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", string(text))
	}
	*c = parsed
	return nil
}
