package feed

import (
	"strings"

	"github.com/okian/clubhouse/internal/domain/model"
)

// BlogItem is a post ready for rendering.
type BlogItem struct {
	Blog      model.Blog `json:"blog"`
	DateLabel string     `json:"dateLabel"`
	Theme     Theme      `json:"theme"`
}

// BlogFeed is the blog listing view state.
type BlogFeed struct {
	Latest   *BlogItem  `json:"latest,omitempty"`
	Category string     `json:"category"`
	Featured []BlogItem `json:"featured"`
	Items    []BlogItem `json:"items"`
}

// BuildBlogFeed keeps the repository order (newest first). Latest and
// Featured ignore the category filter; Items honours it.
func BuildBlogFeed(raw []model.Blog, category string) BlogFeed {
	f := BlogFeed{
		Category: "All",
		Featured: make([]BlogItem, 0),
		Items:    make([]BlogItem, 0, len(raw)),
	}

	var want model.Category
	filter := category != "" && !strings.EqualFold(category, "All")
	if filter {
		want, _ = model.ParseCategory(category)
		f.Category = string(want)
	}

	for i, b := range raw {
		item := BlogItem{
			Blog:      b,
			DateLabel: b.CreatedAt.Format(dayLayout),
			Theme:     ThemeFor(b.Category),
		}
		if i == 0 {
			latest := item
			f.Latest = &latest
		}
		if b.Featured {
			f.Featured = append(f.Featured, item)
		}
		if !filter || b.Category == want {
			f.Items = append(f.Items, item)
		}
	}
	return f
}
