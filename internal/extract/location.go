package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
)

var (
	// Street type followed by the street name and any trailing words up to punctuation
	addressPattern = regexp.MustCompile(`(?i)(?:rua|avenida|travessa)\s+[\p{L}\p{N}\s.-]+`)

	// "bairro X", "no bairro X", "localidade de X"
	neighborhoodPattern = regexp.MustCompile(`(?i)(?:bairro|no bairro|localidade de)\s+([\p{L}\p{N}\s'-]+)`)
)

// ExtractLocation derives an address and, when mentioned, a neighborhood from a summary.
// Results are heuristic; unusual phrasing yields imprecise but non-empty output.
func ExtractLocation(summary string) model.Location {
	var address string
	if match := addressPattern.FindString(summary); match != "" {
		address = strings.TrimSpace(match)
	} else {
		address = strings.TrimSpace(strings.SplitN(summary, ",", 2)[0])
	}

	var neighborhood string
	if m := neighborhoodPattern.FindStringSubmatch(summary); m != nil {
		neighborhood = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[1]), ",."))
	}

	if neighborhood != "" && strings.Contains(lowerPT(address), lowerPT(neighborhood)) {
		address = stripNeighborhood(address, neighborhood)
	}

	address = strings.TrimSpace(strings.TrimSuffix(address, ","))

	return model.Location{
		Address:      address,
		Neighborhood: neighborhood,
	}
}

// stripNeighborhood removes the first "bairro X" phrase from the address
func stripNeighborhood(address, neighborhood string) string {
	phrase, err := regexp.Compile(`(?i),?\s*(?:bairro|no bairro)\s+` + regexp.QuoteMeta(neighborhood))
	if err != nil {
		return address
	}
	loc := phrase.FindStringIndex(address)
	if loc == nil {
		return address
	}
	return strings.TrimSpace(address[:loc[0]] + address[loc[1]:])
}
