// Package assist – stateless classifiers
//
// A family of pure predicates over the pivot-language (English) text. Each
// predicate is a precompiled regex or keyword set with no side effects;
// running one twice on the same text yields the same answer. The pipeline
// evaluates them through an ordered (predicate, handler) chain where the
// first match wins and skips every later stage, including the model call.
package assist

import (
	"regexp"
	"strings"
)

var (
	companyQueryRE = regexp.MustCompile(`(?i)\b(company|about your company|what do you do|what is your business|tell me about your company|company info|company information|about you|about the company|what services do you offer|what do you offer|services|contact|address|location|where are you located|who is the owner|who is the ceo|founder|history|background)\b`)

	contactQueryRE = regexp.MustCompile(`(?i)\b(contact|phone|telephone|whatsapp|email|e-mail|call you|reach you|get in touch)\b`)

	ownershipQueryRE = regexp.MustCompile(`(?i)\b(who owns|owner|who is the ceo|founder|founded by)\b`)

	timeQueryRE = regexp.MustCompile(`(?i)\b(what(?:'|’)?s|tell me|show|whats|what is)?\s*(the )?(current )?(time|clock)\b`)

	botNameQueryRE = regexp.MustCompile(`(?i)\b(?:what(?:'|’)?s your name|who are you|what are you called)\b`)

	nameQueryRE = regexp.MustCompile(`(?i)\b(?:what(?:'|’)?s my name|do you know my name|what is my name)\b`)

	nameDeclRE = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|name's)\s+(\S+(?:\s+\S+)?)`)

	singleNameRE = regexp.MustCompile(`^[A-Za-z\x{00C0}-\x{017F}]+(?:\s+[A-Za-z\x{00C0}-\x{017F}]+)?$`)

	listProductsRE = regexp.MustCompile(`(?i)\b(?:list|show|display|view|available|all|any)\b.*\bproducts?\b|\bproducts?\b.*\b(?:available|list|you have|do you have)\b`)

	listProjectsRE = regexp.MustCompile(`(?i)\b(?:list|show|display|view|available|all|any)\b.*\bprojects?\b|\bprojects?\b.*\b(?:available|list|you have|do you have)\b`)

	listDevelopersRE = regexp.MustCompile(`(?i)\b(?:list|show|display|view|available|all|any)\b.*\bdevelopers?\b|\bdevelopers?\b.*\b(?:available|list|you have|do you have)\b`)

	featuredProductsRE = regexp.MustCompile(`(?i)\b(?:featured|highlighted|recommended|popular)\b.*\bproducts?\b`)

	featuredProjectsRE = regexp.MustCompile(`(?i)\b(?:featured|highlighted|recommended|popular)\b.*\bprojects?\b`)

	bestQueryRE = regexp.MustCompile(`(?i)\b(best|top|most popular)\s*(projects|products|developers)\s*(in dubai|dubai)?\b`)

	pricingQueryRE = regexp.MustCompile(`(?i)\b(price|prices|pricing|cost|costs|how much|payment|payments|installment|installments|down payment|fees?)\b`)

	locationAvailabilityRE = regexp.MustCompile(`(?i)\b(availab(?:le|ility)|in stock|where (?:is|are|can)|locations?|areas?|visit|viewing|schedule)\b`)
)

// IsCompanyQuery reports whether text asks about the company itself.
func IsCompanyQuery(text string) bool { return companyQueryRE.MatchString(text) }

// IsContactQuery reports whether text asks how to reach the company.
func IsContactQuery(text string) bool { return contactQueryRE.MatchString(text) }

// IsOwnershipQuery reports whether text asks who owns or founded the company.
func IsOwnershipQuery(text string) bool { return ownershipQueryRE.MatchString(text) }

// IsTimeQuery reports whether text asks for the current time.
func IsTimeQuery(text string) bool { return timeQueryRE.MatchString(text) }

// IsBotNameQuery reports whether text asks who the assistant is.
func IsBotNameQuery(text string) bool { return botNameQueryRE.MatchString(text) }

// IsNameQuery reports whether text asks the assistant to recall the
// visitor's own name.
func IsNameQuery(text string) bool { return nameQueryRE.MatchString(text) }

// DeclaredName extracts a name from "my name is X" style declarations.
// The boolean is false when no declaration is present.
func DeclaredName(text string) (string, bool) {
	m := nameDeclRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsSingleBareName reports whether text is just one or two capitalizable
// words, the shape of a bare name typed on its own.
func IsSingleBareName(text string) bool { return singleNameRE.MatchString(text) }

// IsListProductsQuery reports whether text asks for the product list.
func IsListProductsQuery(text string) bool { return listProductsRE.MatchString(text) }

// IsListProjectsQuery reports whether text asks for the project list.
func IsListProjectsQuery(text string) bool { return listProjectsRE.MatchString(text) }

// IsListDevelopersQuery reports whether text asks for the developer list.
func IsListDevelopersQuery(text string) bool { return listDevelopersRE.MatchString(text) }

// IsFeaturedProductsQuery reports whether text asks for featured products.
func IsFeaturedProductsQuery(text string) bool { return featuredProductsRE.MatchString(text) }

// IsFeaturedProjectsQuery reports whether text asks for featured projects.
func IsFeaturedProjectsQuery(text string) bool { return featuredProjectsRE.MatchString(text) }

// BestOfCategory extracts the category of "best/top X" questions
// ("products", "projects" or "developers"); ok is false when none matched.
func BestOfCategory(text string) (string, bool) {
	m := bestQueryRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[2]), true
}

// IsPricingQuery reports whether text asks about prices or payments.
func IsPricingQuery(text string) bool { return pricingQueryRE.MatchString(text) }

// IsLocationAvailabilityQuery reports whether text asks about availability
// or locations.
func IsLocationAvailabilityQuery(text string) bool {
	return locationAvailabilityRE.MatchString(text)
}
