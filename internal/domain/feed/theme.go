package feed

import (
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/internal/domain/temporal"
)

// Theme is the visual treatment of a category.
type Theme struct {
	Accent   string `json:"accent"`
	Gradient string `json:"gradient"`
	Icon     string `json:"icon"`
}

var (
	defaultTheme = Theme{
		Accent:   "#FF8C00",
		Gradient: "linear-gradient(to bottom right, #FF8C00, #FFD700)",
		Icon:     "📚",
	}
	pastTheme = Theme{
		Accent:   "#6B7280",
		Gradient: "linear-gradient(to bottom right, #6B7280, #4B5563)",
		Icon:     "📅",
	}
	themes = map[model.Category]Theme{
		model.CategoryEntrepreneurship: {
			Accent:   "#E91E63",
			Gradient: "linear-gradient(to bottom right, #E91E63, #C2185B)",
			Icon:     "🚀",
		},
		model.CategoryCommunity: {
			Accent:   "#00BCD4",
			Gradient: "linear-gradient(to bottom right, #00BCD4, #2196F3)",
			Icon:     "🤝",
		},
		model.CategoryLearning: {
			Accent:   "#4CAF50",
			Gradient: "linear-gradient(to bottom right, #4CAF50, #8BC34A)",
			Icon:     "📚",
		},
		model.CategorySustainability: {
			Accent:   "#4CAF50",
			Gradient: "linear-gradient(to bottom right, #4CAF50, #8BC34A)",
			Icon:     "🌱",
		},
		model.CategoryCareer: {
			Accent:   "#FF8C00",
			Gradient: "linear-gradient(to bottom right, #FF8C00, #FFD700)",
			Icon:     "💼",
		},
		model.CategoryIndustryInsights: {
			Accent:   "#9C27B0",
			Gradient: "linear-gradient(to bottom right, #9C27B0, #E91E63)",
			Icon:     "🔍",
		},
	}
)

// ThemeFor maps a category to its theme. Unrecognized categories, Other
// included, get the default theme.
func ThemeFor(c model.Category) Theme {
	if t, ok := themes[c]; ok {
		return t
	}
	return defaultTheme
}

// DefaultTheme returns the fallback theme.
func DefaultTheme() Theme { return defaultTheme }

// DisplayTheme is ThemeFor with past items rendered in the muted gray theme.
func DisplayTheme(c model.Category, s temporal.Status) Theme {
	if s == temporal.Past {
		t := pastTheme
		t.Icon = ThemeFor(c).Icon
		return t
	}
	return ThemeFor(c)
}
