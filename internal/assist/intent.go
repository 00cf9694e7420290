// Package assist – intent detection
package assist

import "regexp"

var (
	productWordRE   = regexp.MustCompile(`\bproducts?\b`)
	projectWordRE   = regexp.MustCompile(`\bprojects?\b`)
	developerWordRE = regexp.MustCompile(`\bdevelopers?\b`)
)

// Intent captures which entity kind a message is about. Exactly one of the
// Wants fields is set when a single keyword group appears; zero or multiple
// groups leave the intent ambiguous.
type Intent struct {
	WantsProduct   bool
	WantsProject   bool
	WantsDeveloper bool
	Ambiguous      bool
}

// DetectIntent inspects the lowercased message for entity keywords and
// returns the exclusive intent. Mentioning two kinds at once (or none) is
// ambiguous: the resolver then tries every kind instead of a single one.
func DetectIntent(message string) Intent {
	hasProduct := productWordRE.MatchString(message)
	hasProject := projectWordRE.MatchString(message)
	hasDeveloper := developerWordRE.MatchString(message)

	it := Intent{
		WantsProduct:   hasProduct && !hasProject && !hasDeveloper,
		WantsProject:   hasProject && !hasProduct && !hasDeveloper,
		WantsDeveloper: hasDeveloper && !hasProduct && !hasProject,
	}
	it.Ambiguous = (!hasProduct && !hasProject && !hasDeveloper) ||
		(hasProduct && hasProject) ||
		(hasDeveloper && (hasProduct || hasProject))
	return it
}
