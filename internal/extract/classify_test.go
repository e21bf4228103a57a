package extract

import (
	"testing"

	"github.com/ppiankov/indicacoes/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    model.Category
	}{
		{"pavement", "Solicita pavimentação da Rua A", model.CategoryUrbanInfrastructure},
		{"pothole", "Conserto de BURACO na via", model.CategoryUrbanInfrastructure},
		{"pruning", "Solicita poda de árvores", model.CategoryEnvironmentSanitation},
		{"storm drain", "Limpeza de boca de lobo", model.CategoryEnvironmentSanitation},
		{"speed bump", "Instalação de lombada", model.CategoryMobilityTransit},
		{"crosswalk beats safety", "Pintura de faixa de segurança", model.CategoryMobilityTransit},
		{"street light", "Troca de lâmpada queimada", model.CategoryPublicServices},
		{"lighting uppercase", "ILUMINAÇÃO pública na praça", model.CategoryPublicServices},
		{"procon", "Fiscalização do Procon", model.CategoryPublicSafety},
		{"public safety", "Reforço da segurança escolar", model.CategoryPublicSafety},
		{"park", "Reforma do parque municipal", model.CategoryCommunitySpaces},
		{"no keyword", "Solicita informações ao Executivo", model.DefaultCategory},
		{"empty", "", model.DefaultCategory},
		{"infrastructure beats sanitation", "Calçamento e limpeza da rua", model.CategoryUrbanInfrastructure},
		{"sanitation beats mobility", "Remoção de entulho próximo à sinalização", model.CategoryEnvironmentSanitation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.summary); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.summary, got, tt.want)
			}
		})
	}
}

func TestClassify_MobilityWithoutHigherPriorityKeywords(t *testing.T) {
	for _, keyword := range []string{"trânsito", "sinalização", "faixa de segurança", "pedestre", "lombada", "estacionamento", "velocidade"} {
		summary := "Solicita melhorias de " + keyword + " na Avenida Central"
		if got := Classify(summary); got != model.CategoryMobilityTransit {
			t.Errorf("Classify(%q) = %q, want %q", summary, got, model.CategoryMobilityTransit)
		}
	}
}

func TestClassify_AlwaysValid(t *testing.T) {
	summaries := []string{"", "x", "praça", "lixo e praça e procon", "Rua sem nada"}
	for _, s := range summaries {
		if c := Classify(s); !c.Valid() {
			t.Errorf("Classify(%q) returned invalid category %q", s, c)
		}
	}
}

func TestKeywordGroups_OnePerCategoryInPriorityOrder(t *testing.T) {
	all := model.AllCategories()
	if len(keywordGroups) != len(all) {
		t.Fatalf("expected %d keyword groups, got %d", len(all), len(keywordGroups))
	}
	for i, group := range keywordGroups {
		if group.category != all[i] {
			t.Errorf("group %d: expected %q, got %q", i, all[i], group.category)
		}
	}
}
