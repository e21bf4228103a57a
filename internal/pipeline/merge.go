package pipeline

import (
	"cmp"
	"slices"

	"github.com/ppiankov/indicacoes/internal/extract"
	"github.com/ppiankov/indicacoes/internal/model"
)

// Dedupe keeps one matter per id. A later occurrence replaces an earlier one
// in place, so feeding pages in page order makes the highest page win.
func Dedupe(matters []model.LegislativeMatter) []model.LegislativeMatter {
	index := make(map[string]int, len(matters))
	out := make([]model.LegislativeMatter, 0, len(matters))

	for _, m := range matters {
		if i, ok := index[m.ID]; ok {
			out[i] = m
			continue
		}
		index[m.ID] = len(out)
		out = append(out, m)
	}

	return out
}

// SortByIdentifier orders matters newest first by (year, number).
// Ties, including unparseable ids, keep their relative order.
func SortByIdentifier(matters []model.LegislativeMatter) {
	type keyed struct {
		id     model.Identifier
		matter model.LegislativeMatter
	}

	items := make([]keyed, len(matters))
	for i, m := range matters {
		items[i] = keyed{id: extract.ParseIdentifier(m.ID), matter: m}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if c := cmp.Compare(b.id.Year, a.id.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.id.Num, a.id.Num)
	})

	for i := range items {
		matters[i] = items[i].matter
	}
}
