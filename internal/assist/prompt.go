// Package assist – prompt construction
//
// Builds the system prompt for the language model. The prompt embeds a
// digest of the five most recent records per catalog kind (every locale name
// plus a clipped description) followed by fixed behavioral instructions, so
// the model answers from actual catalog data instead of inventing it.
package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
	"github.com/aellithy/go-portfolio-assistant/internal/utils"
)

// promptRecordLimit is how many records per kind ride in the system prompt.
const promptRecordLimit = 5

// promptDescMaxRunes clips descriptions inside the prompt digest.
const promptDescMaxRunes = 100

// Canned reply fragments. Turns starting with one of these are dropped from
// the model-bound history: they are templated output, not conversation.
var cannedPrefixes = []string{
	"I'm sorry, but I don't have specific details about",
	"Company information:",
}

// isCannedReply reports whether text is one of the pipeline's own templated
// replies rather than genuine dialogue.
func isCannedReply(text string) bool {
	for _, p := range cannedPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// filterHistory drops canned turns and substitutes "..." for empty contents
// so the upstream API never sees a blank message.
func filterHistory(history []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, 0, len(history))
	for _, t := range history {
		if isCannedReply(t.Message) {
			continue
		}
		if strings.TrimSpace(t.Message) == "" {
			t.Message = "..."
		}
		out = append(out, t)
	}
	return out
}

func formatProductDigest(items []domain.Product) string {
	if len(items) == 0 {
		return "I'm sorry, I don't have the current database of available products at the moment."
	}
	var b strings.Builder
	for _, p := range items {
		fmt.Fprintf(&b, "\n  - Name: %s (%s, %s, %s, %s)\n    Description: %s\n",
			utils.FirstNonBlank(p.Name, "N/A"), p.NameAr, p.NameDe, p.NameFr, p.NameZh,
			describeForPrompt(p.Description))
	}
	return b.String()
}

func formatProjectDigest(items []domain.Project) string {
	if len(items) == 0 {
		return "No projects currently available in database."
	}
	var b strings.Builder
	for _, p := range items {
		fmt.Fprintf(&b, "\n  - Name: %s (%s, %s, %s, %s)\n    Description: %s\n",
			utils.FirstNonBlank(p.Name, "N/A"), p.NameAr, p.NameDe, p.NameFr, p.NameZh,
			describeForPrompt(p.Description))
	}
	return b.String()
}

func formatDeveloperDigest(items []domain.Developer) string {
	if len(items) == 0 {
		return "I'm sorry, I don't have the specific developer information in my database at the moment."
	}
	var b strings.Builder
	for _, d := range items {
		fmt.Fprintf(&b, "\n  - Name: %s (%s, %s, %s, %s)\n    Description: %s\n",
			utils.FirstNonBlank(d.DeveloperName, "N/A"), d.NameAr, d.NameDe, d.NameFr, d.NameZh,
			utils.FirstNonBlank(d.Description, "N/A"))
	}
	return b.String()
}

func describeForPrompt(desc string) string {
	if desc == "" {
		return "N/A"
	}
	return utils.Truncate(desc, promptDescMaxRunes)
}

// buildSystemPrompt assembles the full system prompt: catalog digest plus
// behavioral instructions. Catalog read failures degrade to empty digests
// rather than failing the request; the model then answers from the
// instructions alone.
func (s *Service) buildSystemPrompt(ctx context.Context) string {
	products, err := s.Catalog.RecentProducts(ctx, s.DB, promptRecordLimit)
	if err != nil {
		products = nil
	}
	projects, err := s.Catalog.RecentProjects(ctx, s.DB, promptRecordLimit)
	if err != nil {
		projects = nil
	}
	developers, err := s.Catalog.RecentDevelopers(ctx, s.DB, promptRecordLimit)
	if err != nil {
		developers = nil
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are a friendly and professional portfolio assistant called %q.

IMPORTANT DATABASE CONTEXT:
Here is the latest data directly fetched from our database:

AVAILABLE PRODUCTS:
%s

AVAILABLE PROJECTS:
%s

AVAILABLE DEVELOPERS:
%s

CRITICAL INSTRUCTIONS:
- For any question about products, projects, or developers, ALWAYS use the database context information provided above.
- This context contains the actual latest data fetched directly from our product, project, and developer records.
- Use these specific names, details, and descriptions directly in your answers.
- If the context contains relevant results, ONLY use those results in your answer. Do NOT invent, guess, or supplement with information not present in the context.
- If the context is empty or does not contain the requested information, politely inform the user that you do not have that information in your database, and suggest they contact us for more details.
- Never fabricate product, project, or developer names, details, or statistics.
- Always reference the actual data from the database context above.

LANGUAGE SUPPORT:
- You MUST respond in the same language as the user's query.
- If the user asks in Arabic, respond in Arabic.
- If the user asks in English, respond in English.
- If the user asks in German, respond in German.
- If the user asks in French, respond in French.
- If the user asks in Chinese, respond in Chinese.
- For partial or incomplete queries, infer the complete meaning and respond accordingly.
- Always match the user's language and tone.

When asked your name, reply exactly: %q.
When asked about greetings, respond with a friendly greeting.
When asked about your mood, respond with a positive statement.

You should be able to answer a wide range of questions including:
- General company and service questions (e.g., what the company does, services offered, contact info, business hours)
- Product related questions (e.g., available products, locations, features, luxury villas, apartments)
- Project related questions (e.g., current projects, project details, status, locations)
- Developer related questions (e.g., partner developers, developer details, projects worked on)
- Pricing and payment questions (e.g., payment plans, down payments, installments, fees)
- Location and availability questions (e.g., product/project locations, availability, scheduling visits)
- User identity and interaction questions (e.g., the user's name, what you can do, language support)

SUMMARY:
Always provide accurate, helpful, and context-aware responses. For any product, project, or developer question, ONLY use the database context provided above. If no data is available, say so and suggest contacting us for more information. Always respond in the user's language.
`,
		s.opts.AssistantName,
		formatProductDigest(products),
		formatProjectDigest(projects),
		formatDeveloperDigest(developers),
		s.opts.AssistantName,
	))
}

// buildTurns flattens the filtered history and the current message into the
// role/content sequence handed to the completion provider.
func (s *Service) buildTurns(history []domain.Turn, current string) []domain.Turn {
	turns := filterHistory(history)
	if strings.TrimSpace(current) == "" {
		current = "..."
	}
	return append(turns, domain.Turn{Role: domain.RoleUser, Message: current})
}
