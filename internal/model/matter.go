package model

// LegislativeMatter is one indication published by the chamber's portal.
// The JSON shape is consumed as-is by the dashboard.
type LegislativeMatter struct {
	ID               string   `json:"id"`               // "<type-label> <number>/<year>", unique per snapshot
	Summary          string   `json:"summary"`          // Ementa; every derived field comes from it
	Category         Category `json:"category"`         // Exactly one of AllCategories()
	Location         Location `json:"location"`         // Heuristic address/neighborhood
	PresentationDate string   `json:"presentationDate"` // As published: "DD/MM/YYYY" or "30 de julho de 2025"
	Author           string   `json:"author"`
	Status           string   `json:"status"`
	Protocol         string   `json:"protocol"` // ProtocolUnknown when the link carries none
	PDFLink          string   `json:"pdfLink"`  // Always absolute
}

// Location is the best-effort place a matter refers to
type Location struct {
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood,omitempty"`
}

// Identifier is the numeric form of a matter id, used for ordering
type Identifier struct {
	Num  int `json:"num"`
	Year int `json:"year"`
}

// Newer reports whether i sorts before other in newest-first order
func (i Identifier) Newer(other Identifier) bool {
	if i.Year != other.Year {
		return i.Year > other.Year
	}
	return i.Num > other.Num
}

const (
	// StatusAvailable is the status every ingested matter carries
	StatusAvailable = "Disponível no SAPL"

	// ProtocolUnknown is used when no protocol number is recoverable
	ProtocolUnknown = "N/A"
)

// Category is the topical classification of a matter
type Category string

const (
	CategoryUrbanInfrastructure   Category = "Infraestrutura Urbana"
	CategoryEnvironmentSanitation Category = "Meio Ambiente e Saneamento"
	CategoryMobilityTransit       Category = "Mobilidade e Trânsito"
	CategoryPublicServices        Category = "Serviços Públicos"
	CategoryPublicSafety          Category = "Segurança Pública"
	CategoryCommunitySpaces       Category = "Espaços Comunitários"
)

// DefaultCategory is assigned when no keyword matches
const DefaultCategory = CategoryUrbanInfrastructure

// AllCategories returns every category in classification priority order
func AllCategories() []Category {
	return []Category{
		CategoryUrbanInfrastructure,
		CategoryEnvironmentSanitation,
		CategoryMobilityTransit,
		CategoryPublicServices,
		CategoryPublicSafety,
		CategoryCommunitySpaces,
	}
}

// Valid reports whether c is one of the six known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the display label
func (c Category) String() string {
	return string(c)
}
