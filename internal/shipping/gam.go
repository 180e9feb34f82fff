package shipping

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// gamCantons maps normalised province names to the set of cantons inside the
// Gran Área Metropolitana. Static reference data; destinations outside these
// provinces are never GAM.
var gamCantons = map[string][]string{
	"san jose": {
		"san jose", "escazu", "desamparados", "aserri", "mora", "goicoechea",
		"santa ana", "alajuelita", "vazquez de coronado", "tibas", "moravia",
		"montes de oca", "curridabat",
	},
	"alajuela": {
		"alajuela", "atenas", "poas",
	},
	"cartago": {
		"cartago", "paraiso", "la union", "alvarado", "oreamuno", "el guarco",
	},
	"heredia": {
		"heredia", "barva", "santo domingo", "santa barbara", "san rafael",
		"san isidro", "belen", "flores", "san pablo",
	},
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims and strips diacritics from a geographic name so
// "San José" and "san jose" compare equal.
func Normalize(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	stripped, _, err := transform.String(deaccent, lowered)
	if err != nil {
		return lowered
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// MetroCantons returns the GAM reference data as normalised province names
// mapped to their metro-area cantons, for address form autofill.
func MetroCantons() map[string][]string {
	out := make(map[string][]string, len(gamCantons))
	for province, cantons := range gamCantons {
		out[province] = append([]string(nil), cantons...)
	}
	return out
}

// IsGAM reports whether the canton belongs to the metro area of its province.
// Unknown provinces and cantons are not GAM.
func IsGAM(province, canton string) bool {
	cantons, ok := gamCantons[Normalize(province)]
	if !ok {
		return false
	}
	target := Normalize(canton)
	for _, c := range cantons {
		if c == target {
			return true
		}
	}
	return false
}
