package pipeline

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
)

// SearchQuery renders the SAPL matter search filter.
// The portal expects every form field, most of them empty, in form order.
type SearchQuery struct {
	base   string
	params string
}

// NewSearchQuery builds the listing query for the configured portal and filter
func NewSearchQuery(cfg model.PortalConfig) *SearchQuery {
	fields := [][2]string{
		{"tipo", cfg.DocumentType},
		{"ementa", ""},
		{"numero", ""},
		{"numeracao__numero_materia", ""},
		{"numero_protocolo", ""},
		{"ano", cfg.Year},
		{"autoria__autor", cfg.Author},
		{"autoria__primeiro_autor", "unknown"},
		{"autoria__autor__tipo", ""},
		{"autoria__autor__parlamentar_set__filiacao__partido", ""},
		{"o", ""},
		{"tipo_listagem", "1"},
		{"tipo_origem_externa", ""},
		{"numero_origem_externa", ""},
		{"ano_origem_externa", ""},
		{"data_origem_externa_0", ""},
		{"data_origem_externa_1", ""},
		{"local_origem_externa", ""},
		{"data_apresentacao_0", ""},
		{"data_apresentacao_1", ""},
		{"data_publicacao_0", ""},
		{"data_publicacao_1", ""},
		{"relatoria__parlamentar_id", ""},
		{"em_tramitacao", ""},
		{"tramitacao__unidade_tramitacao_destino", ""},
		{"tramitacao__status", ""},
		{"materiaassunto__assunto", ""},
		{"indexacao", ""},
		{"regime_tramitacao", ""},
		{"salvar", "Pesquisar"},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, url.QueryEscape(f[0])+"="+url.QueryEscape(f[1]))
	}

	return &SearchQuery{
		base:   strings.TrimRight(cfg.BaseURL, "/") + cfg.SearchPath,
		params: strings.Join(parts, "&"),
	}
}

// PageURL returns the URL of listing page n. Page 1 carries no page parameter.
func (q *SearchQuery) PageURL(n int) string {
	if n <= 1 {
		return q.base + "?" + q.params
	}
	return q.base + "?page=" + strconv.Itoa(n) + "&" + q.params
}
