// Package assist – input preprocessing
//
// Normalizes raw visitor input before any classification runs: length and
// policy validation, script stripping, lowercasing, whitespace collapsing,
// and an ordered whole-word typo/slang correction pass. The correction table
// is a slice, not a map: replacements apply in declaration order, and that
// order is observable (e.g. "u r" becomes "you are" only because "u" runs
// before "r" would see the rewritten text).
package assist

import (
	"regexp"
	"strings"
)

var (
	scriptTagRE  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// correction is one whole-word replacement applied during preprocessing.
type correction struct {
	from string
	to   string
	re   *regexp.Regexp
}

func newCorrection(from, to string) correction {
	return correction{from: from, to: to, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`)}
}

// corrections maps common typos, slang, and contractions to canonical forms.
// Order matters; entries are applied top to bottom.
var corrections = []correction{
	newCorrection("propertie", "product"),
	newCorrection("properti", "product"),
	newCorrection("developr", "developer"),
	newCorrection("developrs", "developers"),
	newCorrection("projct", "project"),
	newCorrection("projcts", "projects"),
	newCorrection("dubaii", "dubai"),
	newCorrection("duba", "dubai"),
	newCorrection("developement", "development"),
	newCorrection("realestate", "real estate"),
	newCorrection("real-estate", "real estate"),
	newCorrection("apartmnt", "apartment"),
	newCorrection("apartmnts", "apartments"),
	newCorrection("vila", "villa"),
	newCorrection("vilas", "villas"),
	newCorrection("luxry", "luxury"),
	newCorrection("wat", "what"),
	newCorrection("wer", "where"),
	newCorrection("wen", "when"),
	newCorrection("wich", "which"),
	newCorrection("thier", "their"),
	newCorrection("ther", "there"),
	newCorrection("teh", "the"),
	newCorrection("adn", "and"),
	newCorrection("fo", "for"),
	newCorrection("frm", "from"),
	newCorrection("abt", "about"),
	newCorrection("pls", "please"),
	newCorrection("thx", "thanks"),
	newCorrection("u", "you"),
	newCorrection("r", "are"),
	newCorrection("2", "to"),
	newCorrection("4", "for"),
	newCorrection("b4", "before"),
	newCorrection("c", "see"),
	newCorrection("y", "why"),
	newCorrection("hv", "have"),
	newCorrection("wud", "would"),
	newCorrection("cud", "could"),
	newCorrection("shud", "should"),
	newCorrection("dnt", "do not"),
	newCorrection("cnt", "cannot"),
	newCorrection("wont", "will not"),
	newCorrection("cant", "cannot"),
	newCorrection("im", "i am"),
	newCorrection("ive", "i have"),
	newCorrection("id", "i would"),
	newCorrection("ill", "i will"),
	newCorrection("theyre", "they are"),
	newCorrection("youre", "you are"),
	newCorrection("thats", "that is"),
	newCorrection("isnt", "is not"),
	newCorrection("arent", "are not"),
	newCorrection("werent", "were not"),
	newCorrection("dont", "do not"),
	newCorrection("doesnt", "does not"),
	newCorrection("didnt", "did not"),
	newCorrection("havent", "have not"),
	newCorrection("hasnt", "has not"),
	newCorrection("hadnt", "had not"),
	newCorrection("wouldnt", "would not"),
	newCorrection("couldnt", "could not"),
	newCorrection("shouldnt", "should not"),
	newCorrection("mightnt", "might not"),
	newCorrection("mustnt", "must not"),
}

// Preprocessor validates and normalizes visitor input.
type Preprocessor struct {
	// MaxChars caps the trimmed message length in characters.
	MaxChars int
	// Forbidden lists lowercase substrings that reject the message outright.
	Forbidden []string
}

// NewPreprocessor constructs a Preprocessor with the given limits.
func NewPreprocessor(maxChars int, forbidden []string) *Preprocessor {
	if maxChars <= 0 {
		maxChars = 1000
	}
	lowered := make([]string, 0, len(forbidden))
	for _, k := range forbidden {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Preprocessor{MaxChars: maxChars, Forbidden: lowered}
}

// Preprocess validates raw input and returns the normalized form.
//
// Returns ErrEmptyMessage for blank input, ErrMessageTooLong when the trimmed
// text exceeds MaxChars, and ErrForbiddenContent when any forbidden keyword
// appears (case-insensitive substring check on the raw text).
func (p *Preprocessor) Preprocess(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if len([]rune(trimmed)) > p.MaxChars {
		return "", ErrMessageTooLong
	}

	lower := strings.ToLower(trimmed)
	for _, k := range p.Forbidden {
		if strings.Contains(lower, k) {
			return "", ErrForbiddenContent
		}
	}

	processed := scriptTagRE.ReplaceAllString(trimmed, "")
	processed = strings.ToLower(processed)
	processed = whitespaceRE.ReplaceAllString(processed, " ")
	processed = strings.TrimSpace(processed)

	for _, c := range corrections {
		processed = c.re.ReplaceAllString(processed, c.to)
	}
	return processed, nil
}
