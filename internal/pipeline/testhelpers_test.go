package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/indicacoes/internal/model"
)

type testRow struct {
	id      string
	summary string
	date    string
}

// listingPage renders a SAPL-like results page with pagination links up to lastPage
func listingPage(lastPage int, rows ...testRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="table"><thead><tr><th>Matéria</th><th>Ementa</th><th>Autor</th><th>Data</th></tr></thead><tbody>`)
	for i, r := range rows {
		fmt.Fprintf(&b, `<tr><td><a href="/materia/%d?protocolo=%d">%s</a></td><td>%s</td><td>Vereador Teste</td><td>%s</td></tr>`,
			1000+i, 5000+i, r.id, r.summary, r.date)
	}
	b.WriteString(`</tbody></table>`)
	if lastPage > 1 {
		b.WriteString(`<ul class="pagination">`)
		for n := 1; n <= lastPage; n++ {
			fmt.Fprintf(&b, `<li><a href="?page=%d&tipo=8">%d</a></li>`, n, n)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func testConfig(baseURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Portal.BaseURL = baseURL
	cfg.Portal.Year = "2025"
	cfg.HTTP.Timeout = 300 * time.Millisecond
	return cfg
}
