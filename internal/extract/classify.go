package extract

import (
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keywordGroup maps a set of summary keywords to a category
type keywordGroup struct {
	category model.Category
	keywords []string
}

// keywordGroups is checked in order; the first group with a hit wins.
// "faixa de segurança" must stay ahead of the public safety "segurança".
var keywordGroups = []keywordGroup{
	{
		category: model.CategoryUrbanInfrastructure,
		keywords: []string{"paviment", "asfáltica", "calçamento", "buraco", "infraestrutura"},
	},
	{
		category: model.CategoryEnvironmentSanitation,
		keywords: []string{"lixo", "lixeira", "reciclável", "limpeza", "boca de lobo", "poda", "vegetação", "entulho", "drenagem"},
	},
	{
		category: model.CategoryMobilityTransit,
		keywords: []string{"trânsito", "sinalização", "faixa de segurança", "pedestre", "lombada", "estacionamento", "velocidade"},
	},
	{
		category: model.CategoryPublicServices,
		keywords: []string{"iluminação", "lâmpada"},
	},
	{
		category: model.CategoryPublicSafety,
		keywords: []string{"segurança", "procon"},
	},
	{
		category: model.CategoryCommunitySpaces,
		keywords: []string{"praça", "parque"},
	},
}

// Classify assigns exactly one category to a summary by keyword priority
func Classify(summary string) model.Category {
	lower := lowerPT(summary)
	for _, group := range keywordGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				return group.category
			}
		}
	}
	return model.DefaultCategory
}

// lowerPT lower-cases with Portuguese rules. Casers are not safe for
// concurrent use, so one is built per call.
func lowerPT(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(s)
}
