package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/indicacoes/internal/model"
)

const testOrigin = "https://sapl.camarabento.rs.gov.br"

func mustParse(t *testing.T, htmlContent string) *PageResult {
	t.Helper()
	parser, err := NewMatterParser(testOrigin, nil, nil)
	if err != nil {
		t.Fatalf("NewMatterParser: %v", err)
	}
	doc, err := ParseDocument(htmlContent)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	result, err := parser.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return result
}

func TestMatterParser_SingleValidRow(t *testing.T) {
	page := `
	<html><body>
	<table class="table">
		<thead><tr><th>Matéria</th><th>Ementa</th><th>Autor</th><th>Data</th></tr></thead>
		<tbody>
		<tr>
			<td><a href="/materia/4321?protocolo=9876">Indicação 12/2025</a></td>
			<td>Solicita poda de árvores na Rua das Flores, bairro Centro</td>
			<td>Vereador Fulano</td>
			<td>30/07/2025</td>
		</tr>
		</tbody>
	</table>
	</body></html>`

	result := mustParse(t, page)
	if len(result.Matters) != 1 {
		t.Fatalf("Expected 1 matter, got %d", len(result.Matters))
	}

	m := result.Matters[0]
	if m.ID != "Indicação 12/2025" {
		t.Errorf("Unexpected id: %q", m.ID)
	}
	if m.Category != model.CategoryEnvironmentSanitation {
		t.Errorf("Expected %q, got %q", model.CategoryEnvironmentSanitation, m.Category)
	}
	if !strings.HasPrefix(m.Location.Address, "Rua das Flores") {
		t.Errorf("Expected address starting with Rua das Flores, got %q", m.Location.Address)
	}
	if m.Location.Neighborhood != "Centro" {
		t.Errorf("Expected neighborhood Centro, got %q", m.Location.Neighborhood)
	}
	if m.Author != "Vereador Fulano" {
		t.Errorf("Unexpected author: %q", m.Author)
	}
	if m.PresentationDate != "30/07/2025" {
		t.Errorf("Unexpected date: %q", m.PresentationDate)
	}
	if m.Protocol != "9876" {
		t.Errorf("Expected protocol 9876, got %q", m.Protocol)
	}
	if m.PDFLink != testOrigin+"/materia/4321?protocolo=9876" {
		t.Errorf("Unexpected pdf link: %q", m.PDFLink)
	}
	if m.Status != model.StatusAvailable {
		t.Errorf("Unexpected status: %q", m.Status)
	}
}

func TestMatterParser_RowValidity(t *testing.T) {
	page := `
	<table class="table"><tbody>
		<tr><td><a href="/a">Indicação 1/2025</a></td><td>Lixo</td><td>Autor A</td><td>01/01/2025</td></tr>
		<tr><td><a href="/b"></a></td><td>Sem id</td><td>Autor B</td><td>02/01/2025</td></tr>
		<tr><td><a href="/c">Indicação 3/2025</a></td><td>Poucas colunas</td><td>Autor C</td></tr>
		<tr><td>sem link</td><td>Nada</td><td>Autor D</td><td>03/01/2025</td></tr>
		<tr><td><a href="https://externo.gov.br/x.pdf">Indicação 5/2025</a></td><td>Praça</td><td>Autor E</td><td>04/01/2025</td></tr>
	</tbody></table>`

	result := mustParse(t, page)
	if len(result.Matters) != 2 {
		t.Fatalf("Expected 2 matters, got %d: %+v", len(result.Matters), result.Matters)
	}
	if result.Matters[0].ID != "Indicação 1/2025" || result.Matters[1].ID != "Indicação 5/2025" {
		t.Errorf("Unexpected order: %q, %q", result.Matters[0].ID, result.Matters[1].ID)
	}
	if result.Matters[1].PDFLink != "https://externo.gov.br/x.pdf" {
		t.Errorf("Absolute link should be unchanged, got %q", result.Matters[1].PDFLink)
	}
	if result.Matters[0].Protocol != model.ProtocolUnknown {
		t.Errorf("Expected N/A protocol, got %q", result.Matters[0].Protocol)
	}

	if len(result.Anomalies) != 3 {
		t.Fatalf("Expected 3 anomalies, got %d", len(result.Anomalies))
	}
	reasons := []string{"missing identifier", "too few columns", "missing identifier"}
	for i, a := range result.Anomalies {
		if a.Reason != reasons[i] {
			t.Errorf("anomaly %d: expected %q, got %q", i, reasons[i], a.Reason)
		}
	}
}

func TestMatterParser_LinkWithoutHref(t *testing.T) {
	page := `<table class="table"><tbody>
		<tr><td><a>Indicação 7/2025</a></td><td>Iluminação</td><td>Autor</td><td>05/01/2025</td></tr>
	</tbody></table>`

	result := mustParse(t, page)
	if len(result.Matters) != 1 {
		t.Fatalf("Expected 1 matter, got %d", len(result.Matters))
	}
	if got := result.Matters[0].PDFLink; got != testOrigin {
		t.Errorf("Expected pdf link to fall back to the portal origin, got %q", got)
	}
	if got := result.Matters[0].Protocol; got != model.ProtocolUnknown {
		t.Errorf("Expected N/A protocol, got %q", got)
	}
}

func TestMatterParser_NoTable(t *testing.T) {
	result := mustParse(t, `<html><body><p>Nenhum registro encontrado.</p></body></html>`)
	if result.Matters == nil {
		t.Fatal("Expected empty, non-nil slice")
	}
	if len(result.Matters) != 0 {
		t.Errorf("Expected no matters, got %d", len(result.Matters))
	}
}

func TestMatterParser_CollapsesWhitespace(t *testing.T) {
	page := `<table class="table"><tbody><tr>
		<td><a href="/m/1">
			Indicação
			9/2025
		</a></td>
		<td>Solicita   limpeza<br>da Rua Ernesto Alves</td>
		<td> Vereadora <b>Beltrana</b> </td>
		<td>10 de março de 2025</td>
	</tr></tbody></table>`

	result := mustParse(t, page)
	if len(result.Matters) != 1 {
		t.Fatalf("Expected 1 matter, got %d", len(result.Matters))
	}
	m := result.Matters[0]
	if m.ID != "Indicação 9/2025" {
		t.Errorf("Unexpected id: %q", m.ID)
	}
	if m.Summary != "Solicita limpeza da Rua Ernesto Alves" {
		t.Errorf("Unexpected summary: %q", m.Summary)
	}
	if m.Author != "Vereadora Beltrana" {
		t.Errorf("Unexpected author: %q", m.Author)
	}
}

type failingAnnotator struct{}

func (failingAnnotator) Annotate(context.Context, string) (Annotation, error) {
	return Annotation{}, errors.New("provider down")
}

type fixedAnnotator struct{ category model.Category }

func (a fixedAnnotator) Annotate(context.Context, string) (Annotation, error) {
	return Annotation{Category: a.category, Location: model.Location{Address: "IA"}}, nil
}

func TestMatterParser_AnnotatorVariants(t *testing.T) {
	page := `<table class="table"><tbody><tr>
		<td><a href="/m/1">Indicação 1/2025</a></td><td>Troca de lâmpada</td><td>A</td><td>01/01/2025</td>
	</tr></tbody></table>`
	doc, err := ParseDocument(page)
	if err != nil {
		t.Fatal(err)
	}

	parser, _ := NewMatterParser(testOrigin, failingAnnotator{}, nil)
	result, err := parser.Parse(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Matters[0].Category; got != model.CategoryPublicServices {
		t.Errorf("Expected heuristic fallback %q, got %q", model.CategoryPublicServices, got)
	}

	parser, _ = NewMatterParser(testOrigin, fixedAnnotator{category: model.CategoryCommunitySpaces}, nil)
	result, _ = parser.Parse(context.Background(), doc)
	if got := result.Matters[0]; got.Category != model.CategoryCommunitySpaces || got.Location.Address != "IA" {
		t.Errorf("Expected annotator output to be used, got %+v", got)
	}

	parser, _ = NewMatterParser(testOrigin, fixedAnnotator{category: "Outros"}, nil)
	result, _ = parser.Parse(context.Background(), doc)
	if got := result.Matters[0].Category; got != model.CategoryPublicServices {
		t.Errorf("Expected invalid category to fall back, got %q", got)
	}
}

func TestMatterParser_CancelledContext(t *testing.T) {
	page := `<table class="table"><tbody><tr>
		<td><a href="/m/1">Indicação 1/2025</a></td><td>x</td><td>A</td><td>01/01/2025</td>
	</tr></tbody></table>`
	doc, _ := ParseDocument(page)
	parser, _ := NewMatterParser(testOrigin, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := parser.Parse(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewMatterParser_RejectsRelativeOrigin(t *testing.T) {
	if _, err := NewMatterParser("/materia", nil, nil); err == nil {
		t.Error("Expected error for relative origin")
	}
}
