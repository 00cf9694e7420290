// Package assist – fuzzy entity resolution
//
// Resolution runs in two passes. Labeled mentions ("product: X",
// "developer: Y") are tried first because they carry explicit type
// information. When a kind is still unresolved and the intent implies it
// (or the intent is ambiguous), the whole message is reduced to a
// stop-word-filtered phrase and handed to the catalog's fuzzy lookup.
package assist

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
	"github.com/aellithy/go-portfolio-assistant/internal/repo"
)

// stopwords are filler tokens dropped before the phrase-based lookup.
var stopwords = map[string]struct{}{
	"write": {}, "link": {}, "of": {}, "the": {}, "for": {}, "give": {},
	"me": {}, "product": {}, "project": {}, "developer": {}, "please": {},
	"show": {}, "url": {}, "what": {}, "is": {}, "my": {}, "in": {},
	"to": {}, "and": {}, "a": {}, "an": {}, "on": {}, "about": {},
	"any": {}, "you": {}, "could": {}, "would": {}, "like": {},
	"here": {}, "there": {},
}

var (
	productMentionRE   = regexp.MustCompile(`(?i)product\s*(?:name)?:\s*([^\n,?.!]+)`)
	projectMentionRE   = regexp.MustCompile(`(?i)project\s*(?:name)?:\s*([^\n,?.!]+)`)
	developerMentionRE = regexp.MustCompile(`(?i)developer\s*(?:name)?:\s*([^\n,?.!]+)`)
	userMentionRE      = regexp.MustCompile(`(?i)user\s*(?:name)?:\s*([^\n,?.!]+)`)

	nonWordRE = regexp.MustCompile(`\W+`)
)

// Resolution holds whatever catalog records the message resolved to.
// Suggestions is kept for payload compatibility; nothing populates it.
type Resolution struct {
	Product     *domain.Product
	Project     *domain.Project
	Developer   *domain.Developer
	User        *domain.User
	Suggestions []domain.Entity
}

// searchPhrase strips stop words and short tokens, leaving the content words
// that stand a chance of matching a catalog name.
func searchPhrase(message string) string {
	raw := nonWordRE.Split(strings.ToLower(message), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" || len(t) < 3 {
			continue
		}
		if _, skip := stopwords[t]; skip {
			continue
		}
		tokens = append(tokens, t)
	}
	return strings.Join(tokens, " ")
}

// mention extracts the value of a labeled mention, or "" when absent.
func mention(re *regexp.Regexp, message string) string {
	if m := re.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ResolveEntities resolves the message against the catalog: labeled mentions
// first, then the stop-word-filtered phrase for kinds implied by the intent.
// A missing record is not an error; only catalog failures propagate.
func (s *Service) ResolveEntities(ctx context.Context, message string, it Intent) (Resolution, error) {
	var res Resolution
	var err error

	if v := mention(productMentionRE, message); v != "" {
		if res.Product, err = s.findProduct(ctx, v); err != nil {
			return res, err
		}
	}
	if v := mention(projectMentionRE, message); v != "" {
		if res.Project, err = s.findProject(ctx, v); err != nil {
			return res, err
		}
	}
	if v := mention(developerMentionRE, message); v != "" {
		if res.Developer, err = s.findDeveloper(ctx, v); err != nil {
			return res, err
		}
	}
	if s.opts.UsersEnabled {
		if v := mention(userMentionRE, message); v != "" {
			if res.User, err = s.findUser(ctx, v); err != nil {
				return res, err
			}
		}
	}

	phrase := searchPhrase(message)
	if phrase != "" {
		if res.Product == nil && (it.WantsProduct || it.Ambiguous) {
			if res.Product, err = s.findProduct(ctx, phrase); err != nil {
				return res, err
			}
		}
		if res.Project == nil && (it.WantsProject || it.Ambiguous) {
			if res.Project, err = s.findProject(ctx, phrase); err != nil {
				return res, err
			}
		}
		if res.Developer == nil && (it.WantsDeveloper || it.Ambiguous) {
			if res.Developer, err = s.findDeveloper(ctx, phrase); err != nil {
				return res, err
			}
		}
	}

	log.Debug().
		Str("phrase", phrase).
		Bool("product", res.Product != nil).
		Bool("project", res.Project != nil).
		Bool("developer", res.Developer != nil).
		Bool("user", res.User != nil).
		Bool("ambiguous", it.Ambiguous).
		Msg("entity resolution")

	return res, nil
}

func (s *Service) findProduct(ctx context.Context, phrase string) (*domain.Product, error) {
	p, err := s.Catalog.FindProductFuzzy(ctx, s.DB, phrase)
	return p, ignoreNotFound(err)
}

func (s *Service) findProject(ctx context.Context, phrase string) (*domain.Project, error) {
	p, err := s.Catalog.FindProjectFuzzy(ctx, s.DB, phrase)
	return p, ignoreNotFound(err)
}

func (s *Service) findDeveloper(ctx context.Context, phrase string) (*domain.Developer, error) {
	d, err := s.Catalog.FindDeveloperFuzzy(ctx, s.DB, phrase)
	return d, ignoreNotFound(err)
}

func (s *Service) findUser(ctx context.Context, phrase string) (*domain.User, error) {
	u, err := s.Catalog.FindUserFuzzy(ctx, s.DB, phrase)
	return u, ignoreNotFound(err)
}

// ignoreNotFound maps a missing record to a nil error and wraps everything
// else as a catalog failure.
func ignoreNotFound(err error) error {
	if err == nil || errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return upstream("catalog", err)
}
