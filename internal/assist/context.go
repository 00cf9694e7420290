// Package assist – context assembly
//
// Turns resolved records into the bits of text and structure that ride along
// with a reply: scored company-info sections, compact entity digests for the
// model, normalized entity payloads, and structured deep links.
package assist

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
	"github.com/aellithy/go-portfolio-assistant/internal/utils"
)

// Placeholder assets substituted when a record has no image of its own.
const (
	DefaultDeveloperAvatar = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultItemImage       = "https://via.placeholder.com/100"
)

// summaryMaxRunes caps the description portion of an entity digest.
const summaryMaxRunes = 120

var wordRE = regexp.MustCompile(`\w+`)

// ScoreCompanySections ranks sections against the message: each tag found in
// the message scores 3, each message token found in the section body scores 1.
// The top maxSections positively scored sections are returned as
// "Title: content" strings; when nothing scores positive but sections exist,
// the single best one is returned so the assistant is never left without
// company context.
func ScoreCompanySections(message string, sections []domain.CompanyInfo, maxSections int) []string {
	if len(sections) == 0 {
		return nil
	}
	lower := strings.ToLower(message)

	tokens := map[string]struct{}{}
	for _, t := range wordRE.FindAllString(lower, -1) {
		tokens[t] = struct{}{}
	}

	type scored struct {
		section domain.CompanyInfo
		score   int
	}
	ranked := make([]scored, 0, len(sections))
	for _, sec := range sections {
		score := 0
		for _, tag := range strings.Split(sec.Tags, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && strings.Contains(lower, tag) {
				score += 3
			}
		}
		body := strings.ToLower(sec.ContentEN)
		for tok := range tokens {
			if strings.Contains(body, tok) {
				score++
			}
		}
		ranked = append(ranked, scored{section: sec, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]string, 0, maxSections)
	for _, r := range ranked {
		if r.score <= 0 || len(out) >= maxSections {
			break
		}
		out = append(out, r.section.Title+": "+r.section.ContentEN)
	}
	if len(out) == 0 {
		out = append(out, ranked[0].section.Title+": "+ranked[0].section.ContentEN)
	}
	return out
}

// relevantCompanyInfo returns scored sections for the message, loading the
// section set through the TTL cache. Disabled capability yields no sections.
func (s *Service) relevantCompanyInfo(ctx context.Context, message string) ([]string, error) {
	if !s.opts.CompanyInfoEnabled {
		return nil, nil
	}
	sections, ok := s.Company.Get()
	if !ok {
		var err error
		sections, err = s.Catalog.ListCompanyInfo(ctx, s.DB)
		if err != nil {
			return nil, upstream("catalog", err)
		}
		s.Company.Set(sections)
	}
	return ScoreCompanySections(message, sections, 3), nil
}

// SummarizeProduct renders a compact pipe-separated digest of a product for
// model context. Descriptions are clipped so a single verbose record cannot
// crowd out the rest of the prompt.
func SummarizeProduct(p *domain.Product) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if p.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(p.Description, summaryMaxRunes))
	}
	if p.LiveDemo != "" {
		parts = append(parts, "Location: "+p.LiveDemo)
	}
	if p.Status != "" {
		parts = append(parts, "Status: "+p.Status)
	}
	if p.ItemType != "" {
		parts = append(parts, "Type: "+p.ItemType)
	}
	if p.Price != 0 {
		parts = append(parts, fmt.Sprintf("Price: %g", p.Price))
	}
	parts = append(parts, fmt.Sprintf("Bedrooms: %d", p.Beds), fmt.Sprintf("Bathrooms: %d", p.Baths))
	return "Product details: " + strings.Join(parts, " | ") + "."
}

// SummarizeProject renders a compact digest of a project.
func SummarizeProject(p *domain.Project) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if p.LiveDemo != "" {
		parts = append(parts, "Location: "+p.LiveDemo)
	}
	if p.Status != "" {
		parts = append(parts, "Status: "+p.Status)
	}
	if p.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(p.Description, summaryMaxRunes))
	}
	return "Project details: " + strings.Join(parts, " | ") + "."
}

// SummarizeDeveloper renders a compact digest of a developer.
func SummarizeDeveloper(d *domain.Developer) string {
	if d == nil {
		return ""
	}
	var parts []string
	if d.DeveloperName != "" {
		parts = append(parts, "Name: "+d.DeveloperName)
	}
	if d.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(d.Description, summaryMaxRunes))
	}
	return "Developer details: " + strings.Join(parts, " | ") + "."
}

// SummarizeUser renders a compact digest of a user.
func SummarizeUser(u *domain.User) string {
	if u == nil {
		return ""
	}
	var parts []string
	if u.Name != "" {
		parts = append(parts, "Name: "+u.Name)
	}
	if u.Email != "" {
		parts = append(parts, "Email: "+u.Email)
	}
	if u.Role != "" {
		parts = append(parts, "Role: "+u.Role)
	}
	return "User details: " + strings.Join(parts, " | ") + "."
}

// normalizeProduct projects a product onto the response entity shape, with
// name/image defaults and a site deep link when the record has an ID.
func (s *Service) normalizeProduct(p *domain.Product) *domain.Entity {
	if p == nil {
		return nil
	}
	e := &domain.Entity{
		ID:          p.ID,
		Name:        utils.FirstNonBlank(p.Name, "Unnamed product"),
		Image:       utils.FirstNonBlank(p.ImageURL, DefaultItemImage),
		Description: p.Description,
	}
	if p.ID != "" {
		e.URL = s.opts.SiteBaseURL + "/product/" + p.ID
	}
	return e
}

// normalizeProject projects a project onto the response entity shape.
func (s *Service) normalizeProject(p *domain.Project) *domain.Entity {
	if p == nil {
		return nil
	}
	e := &domain.Entity{
		ID:          p.ID,
		Name:        utils.FirstNonBlank(p.Name, "Unnamed project"),
		Image:       utils.FirstNonBlank(p.ImageURL, DefaultItemImage),
		Description: p.Description,
	}
	if p.ID != "" {
		e.URL = s.opts.SiteBaseURL + "/project/" + p.ID
	}
	return e
}

// normalizeDeveloper projects a developer onto the response entity shape.
// PhotoURL wins over ImageURL, then the stock avatar.
func (s *Service) normalizeDeveloper(d *domain.Developer) *domain.Entity {
	if d == nil {
		return nil
	}
	e := &domain.Entity{
		ID:          d.ID,
		Name:        utils.FirstNonBlank(d.DeveloperName, "Unnamed"),
		Image:       utils.FirstNonBlank(d.PhotoURL, d.ImageURL, DefaultDeveloperAvatar),
		Description: d.Description,
	}
	if d.ID != "" {
		e.URL = s.opts.SiteBaseURL + "/developer/" + d.ID
	}
	return e
}

// normalizeUser projects a user onto the response entity shape. Users have no
// public page, so no URL is attached.
func (s *Service) normalizeUser(u *domain.User) *domain.Entity {
	if u == nil {
		return nil
	}
	return &domain.Entity{
		ID:          u.ID,
		Name:        utils.FirstNonBlank(u.Name, "Unnamed"),
		Image:       utils.FirstNonBlank(u.PhotoURL, DefaultDeveloperAvatar),
		Description: u.Bio,
	}
}

// buildLinks assembles the structured links attached to a reply. Only
// entities with IDs produce links.
func (s *Service) buildLinks(product, user *domain.Entity) []domain.Link {
	links := []domain.Link{}
	if product != nil && product.ID != "" {
		links = append(links, domain.Link{
			Type:  "product",
			Label: utils.FirstNonBlank(product.Name, "Product"),
			URL:   s.opts.SiteBaseURL + "/product/" + product.ID,
		})
	}
	if user != nil && user.ID != "" {
		links = append(links, domain.Link{
			Type:  "user",
			Label: utils.FirstNonBlank(user.Name, "User Profile"),
			URL:   "#",
		})
	}
	return links
}
