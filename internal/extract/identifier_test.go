package extract

import (
	"net/url"
	"testing"

	"github.com/ppiankov/indicacoes/internal/model"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		id   string
		want model.Identifier
	}{
		{"Indicação 12/2025", model.Identifier{Num: 12, Year: 2025}},
		{"IND 5/2024", model.Identifier{Num: 5, Year: 2024}},
		{"Indicação  7/2023 ", model.Identifier{Num: 7, Year: 2023}},
		{"Pedido de Providência 101/2022", model.Identifier{Num: 101, Year: 2022}},
		{"Indicação 12a/2025", model.Identifier{Num: 12, Year: 2025}},
		{"Indicação x/2025", model.Identifier{Num: 0, Year: 2025}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ParseIdentifier(tt.id); got != tt.want {
				t.Errorf("ParseIdentifier(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseIdentifier_Malformed(t *testing.T) {
	malformed := []string{
		"",
		"   ",
		"12/2025",
		"Indicação 12-2025",
		"Indicação",
		"Indicação abc/def",
	}
	for _, id := range malformed {
		if got := ParseIdentifier(id); got != (model.Identifier{}) {
			t.Errorf("ParseIdentifier(%q) = %+v, want zero", id, got)
		}
	}
}

func TestProtocolFromLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"/materia/123?protocolo=4567", "4567"},
		{"/relatorios/documento?protocolo=89&ano=2025", "89"},
		{"/materia/123", model.ProtocolUnknown},
		{"", model.ProtocolUnknown},
		{"/x?protocolo=", model.ProtocolUnknown},
	}
	for _, tt := range tests {
		if got := ProtocolFromLink(tt.link); got != tt.want {
			t.Errorf("ProtocolFromLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestNormalizeLink(t *testing.T) {
	origin, _ := url.Parse("https://sapl.camarabento.rs.gov.br")

	tests := []struct {
		link string
		want string
	}{
		{"/documento/123", "https://sapl.camarabento.rs.gov.br/documento/123"},
		{"https://outro.gov.br/doc.pdf", "https://outro.gov.br/doc.pdf"},
		{"http://sapl.camarabento.rs.gov.br/a", "http://sapl.camarabento.rs.gov.br/a"},
		{"/materia/1?protocolo=9", "https://sapl.camarabento.rs.gov.br/materia/1?protocolo=9"},
		{"", "https://sapl.camarabento.rs.gov.br"},
		{"   ", "https://sapl.camarabento.rs.gov.br"},
	}
	for _, tt := range tests {
		if got := NormalizeLink(origin, tt.link); got != tt.want {
			t.Errorf("NormalizeLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}

	if got := NormalizeLink(nil, ""); got != "" {
		t.Errorf("NormalizeLink(nil, \"\") = %q, want empty", got)
	}
}
