package model

import "strings"

// Category groups content items; the set is fixed but unknown values are tolerated.
type Category string

// Known categories.
const (
	CategoryEntrepreneurship Category = "Entrepreneurship"
	CategoryCommunity        Category = "Community"
	CategoryLearning         Category = "Learning"
	CategorySustainability   Category = "Sustainability"
	CategoryCareer           Category = "Career"
	CategoryIndustryInsights Category = "Industry Insights"
	CategoryOther            Category = "Other"
)

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryEntrepreneurship,
		CategoryCommunity,
		CategoryLearning,
		CategorySustainability,
		CategoryCareer,
		CategoryIndustryInsights,
		CategoryOther,
	}
}

// ParseCategory matches s case-insensitively against the known categories.
// Unknown values are returned trimmed with ok=false; they are not an error.
func ParseCategory(s string) (Category, bool) {
	trimmed := strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), trimmed) {
			return c, true
		}
	}
	return Category(trimmed), false
}

// Known reports whether c is part of the fixed enumeration.
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}
