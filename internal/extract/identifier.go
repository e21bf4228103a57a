package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/indicacoes/internal/model"
)

var protocolPattern = regexp.MustCompile(`protocolo=(\d+)`)

// ParseIdentifier splits "Indicação 12/2025" into {12, 2025}.
// Malformed input yields the zero Identifier.
func ParseIdentifier(id string) model.Identifier {
	parts := strings.Fields(id)
	if len(parts) < 2 {
		return model.Identifier{}
	}

	numberParts := strings.Split(parts[len(parts)-1], "/")
	if len(numberParts) < 2 {
		return model.Identifier{}
	}

	return model.Identifier{
		Num:  leadingInt(numberParts[0]),
		Year: leadingInt(numberParts[1]),
	}
}

// ProtocolFromLink extracts the protocolo query value from a document link
func ProtocolFromLink(link string) string {
	if m := protocolPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return model.ProtocolUnknown
}

// NormalizeLink makes a document link absolute against the portal origin.
// Links that already carry a scheme are returned unchanged; an empty link
// yields the origin itself.
func NormalizeLink(origin *url.URL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		if origin == nil {
			return ""
		}
		return origin.String()
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if parsed.Scheme != "" {
		return link
	}
	if origin == nil {
		return link
	}

	return origin.ResolveReference(parsed).String()
}

// leadingInt parses the leading decimal digits of s, returning 0 when there are none
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
