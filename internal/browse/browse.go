// Package browse implements the dashboard's view operations over a snapshot:
// category filter, free-text search, ordering and category counts.
// Every function leaves its input untouched.
package browse

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/ppiankov/indicacoes/internal/extract"
	"github.com/ppiankov/indicacoes/internal/model"
	"github.com/ppiankov/indicacoes/internal/pipeline"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SortOrder selects how results are ordered
type SortOrder string

const (
	SortByIDOrder   SortOrder = "id"
	SortByDateOrder SortOrder = "date"
)

// ParseSortOrder accepts "id" or "date"; empty means id
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByIDOrder:
		return SortByIDOrder, nil
	case SortByDateOrder:
		return SortByDateOrder, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (supported: id, date)", s)
	}
}

// ParseCategory matches a category label ignoring case and accents.
// "" and "todas" select every category.
func ParseCategory(s string) (model.Category, error) {
	needle := fold(strings.TrimSpace(s))
	if needle == "" || needle == "todas" {
		return "", nil
	}
	for _, c := range model.AllCategories() {
		if fold(string(c)) == needle {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Query combines the dashboard controls. Zero values mean no filter.
type Query struct {
	Category model.Category
	Search   string
	Sort     SortOrder
}

// Apply filters by category, then by search text, then sorts
func Apply(matters []model.LegislativeMatter, q Query) []model.LegislativeMatter {
	out := FilterCategory(matters, q.Category)
	out = Search(out, q.Search)
	if q.Sort == SortByDateOrder {
		return SortByDate(out)
	}
	return SortByID(out)
}

// FilterCategory keeps matters of one category. An empty category keeps all.
func FilterCategory(matters []model.LegislativeMatter, category model.Category) []model.LegislativeMatter {
	out := make([]model.LegislativeMatter, 0, len(matters))
	for _, m := range matters {
		if category == "" || m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// Search keeps matters whose id, summary, address, neighborhood or protocol
// contains query, ignoring case and accents. A blank query keeps all.
func Search(matters []model.LegislativeMatter, query string) []model.LegislativeMatter {
	needle := fold(strings.TrimSpace(query))
	out := make([]model.LegislativeMatter, 0, len(matters))
	for _, m := range matters {
		if needle == "" || matches(m, needle) {
			out = append(out, m)
		}
	}
	return out
}

func matches(m model.LegislativeMatter, needle string) bool {
	for _, field := range []string{m.ID, m.Summary, m.Location.Address, m.Location.Neighborhood, m.Protocol} {
		if field != "" && strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

// fold lower-cases and strips combining marks so "iluminacao" finds "Iluminação"
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// SortByDate orders by presentation date, newest first.
// Unparseable dates sort last; ties keep their order.
func SortByDate(matters []model.LegislativeMatter) []model.LegislativeMatter {
	type dated struct {
		unix   int64
		matter model.LegislativeMatter
	}

	items := make([]dated, len(matters))
	for i, m := range matters {
		items[i].matter = m
		if t, ok := extract.ParsePresentationDate(m.PresentationDate); ok {
			items[i].unix = t.Unix()
		} else {
			items[i].unix = -1 << 62
		}
	}

	slices.SortStableFunc(items, func(a, b dated) int {
		return cmp.Compare(b.unix, a.unix)
	})

	out := make([]model.LegislativeMatter, len(items))
	for i := range items {
		out[i] = items[i].matter
	}
	return out
}

// SortByID orders by (year, number), newest first
func SortByID(matters []model.LegislativeMatter) []model.LegislativeMatter {
	out := slices.Clone(matters)
	pipeline.SortByIdentifier(out)
	return out
}

// CategoryCount is one bar of the category chart
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// CountByCategory counts matters for every category in priority order, zeros included
func CountByCategory(matters []model.LegislativeMatter) []CategoryCount {
	counts := make(map[model.Category]int, len(matters))
	for _, m := range matters {
		counts[m.Category]++
	}

	all := model.AllCategories()
	out := make([]CategoryCount, 0, len(all))
	for _, c := range all {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}
