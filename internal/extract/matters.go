package extract

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/indicacoes/internal/model"
	"go.uber.org/zap"
)

// Rows need more than minCells cells: id link, summary, author, date
const minCells = 3

// ParseAnomaly describes a result row that was skipped
type ParseAnomaly struct {
	Row    int    // 0-based row index within the results table
	Cells  int    // Number of cells found
	Reason string // Why the row was skipped
}

func (a ParseAnomaly) Error() string {
	return fmt.Sprintf("row %d skipped (%d cells): %s", a.Row, a.Cells, a.Reason)
}

// PageResult is the outcome of parsing one listing page
type PageResult struct {
	Matters   []model.LegislativeMatter
	Anomalies []ParseAnomaly
}

// MatterParser turns a SAPL search results page into matters
type MatterParser struct {
	origin    *url.URL
	annotator Annotator
	logger    *zap.Logger
}

// NewMatterParser creates a parser that absolutizes links against origin.
// A nil annotator selects the heuristic one.
func NewMatterParser(origin string, annotator Annotator, logger *zap.Logger) (*MatterParser, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("origin must be absolute: %q", origin)
	}

	if annotator == nil {
		annotator = NewHeuristic()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatterParser{
		origin:    &url.URL{Scheme: base.Scheme, Host: base.Host},
		annotator: annotator,
		logger:    logger,
	}, nil
}

// Parse extracts one matter per valid row of the results table, in row order.
// Invalid rows are reported as anomalies; only context cancellation fails the page.
func (p *MatterParser) Parse(ctx context.Context, doc *goquery.Document) (*PageResult, error) {
	result := &PageResult{
		Matters: []model.LegislativeMatter{},
	}

	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		p.logger.Debug("no results table on page")
		return result, nil
	}

	rows := table.Find("tbody tr")
	for i := range rows.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matter, anomaly := p.parseRow(ctx, i, rows.Eq(i))
		if anomaly != nil {
			p.logger.Debug("skipping result row",
				zap.Int("row", anomaly.Row),
				zap.Int("cells", anomaly.Cells),
				zap.String("reason", anomaly.Reason))
			result.Anomalies = append(result.Anomalies, *anomaly)
			continue
		}
		result.Matters = append(result.Matters, *matter)
	}

	return result, nil
}

// parseRow maps the cells id-link | summary | author | date onto a matter
func (p *MatterParser) parseRow(ctx context.Context, index int, row *goquery.Selection) (*model.LegislativeMatter, *ParseAnomaly) {
	cells := row.ChildrenFiltered("td")
	if cells.Length() <= minCells {
		return nil, &ParseAnomaly{Row: index, Cells: cells.Length(), Reason: "too few columns"}
	}

	link := cells.Eq(0).Find("a").First()
	id := selectionText(link)
	if id == "" {
		return nil, &ParseAnomaly{Row: index, Cells: cells.Length(), Reason: "missing identifier"}
	}

	href, _ := link.Attr("href")
	summary := selectionText(cells.Eq(1))

	annotation, err := p.annotator.Annotate(ctx, summary)
	if err != nil || !annotation.Category.Valid() {
		p.logger.Debug("annotator failed, using heuristic",
			zap.String("id", id),
			zap.Error(err))
		annotation = Annotate(summary)
	}

	return &model.LegislativeMatter{
		ID:               id,
		Summary:          summary,
		Category:         annotation.Category,
		Location:         annotation.Location,
		PresentationDate: selectionText(cells.Eq(3)),
		Author:           selectionText(cells.Eq(2)),
		Status:           model.StatusAvailable,
		Protocol:         ProtocolFromLink(href),
		PDFLink:          NormalizeLink(p.origin, href),
	}, nil
}
