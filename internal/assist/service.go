// Package assist – pipeline orchestration
//
// Service wires the whole conversational pipeline together:
//
//	preprocess → detect language → translate to the English pivot →
//	short-circuit classifier chain → intent + fuzzy resolution →
//	direct entity reply or model completion → finalize (context, links,
//	back-translation).
//
// The classifier chain is an ordered list of (match, handle) stages with
// first-match-wins semantics; a matched stage produces a canned or templated
// reply and nothing after it runs, including the model call.
package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
	"github.com/aellithy/go-portfolio-assistant/internal/repo"
)

// pivotLanguage is the language all classification logic runs in.
const pivotLanguage = "en"

// listReplyLimit caps how many records a list reply carries.
const listReplyLimit = 10

// sampleLimit caps the featured/sample fallback lists.
const sampleLimit = 3

// incompleteMessageReply is returned for blank input before validation runs.
const incompleteMessageReply = "I'm sorry, but your message seems incomplete. Could you please clarify your question about products, projects, or developers?"

// defaultCompanyBlurb stands in when no company-info sections exist.
const defaultCompanyBlurb = "Company information: Alsaaeid Ellithy portfolio that specializes in designing and developing, and selling software products."

// Catalog defines the repository contract required by the pipeline.
// Implementations are responsible for catalog reads; the pipeline never
// writes to the store.
type Catalog interface {
	FindProductFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Product, error)
	FindProjectFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Project, error)
	FindDeveloperFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Developer, error)
	FindUserFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.User, error)
	RecentProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error)
	RecentProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error)
	RecentDevelopers(ctx context.Context, db *gorm.DB, limit int) ([]domain.Developer, error)
	SampleProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error)
	SampleProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error)
	FeaturedProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error)
	FeaturedProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error)
	ListCompanyInfo(ctx context.Context, db *gorm.DB) ([]domain.CompanyInfo, error)
}

// GormCatalog adapts the repo package's free functions to the Catalog
// contract.
type GormCatalog struct{}

func (GormCatalog) FindProductFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Product, error) {
	return repo.FindProductFuzzy(ctx, db, phrase)
}

func (GormCatalog) FindProjectFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Project, error) {
	return repo.FindProjectFuzzy(ctx, db, phrase)
}

func (GormCatalog) FindDeveloperFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Developer, error) {
	return repo.FindDeveloperFuzzy(ctx, db, phrase)
}

func (GormCatalog) FindUserFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.User, error) {
	return repo.FindUserFuzzy(ctx, db, phrase)
}

func (GormCatalog) RecentProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	return repo.RecentProducts(ctx, db, limit)
}

func (GormCatalog) RecentProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	return repo.RecentProjects(ctx, db, limit)
}

func (GormCatalog) RecentDevelopers(ctx context.Context, db *gorm.DB, limit int) ([]domain.Developer, error) {
	return repo.RecentDevelopers(ctx, db, limit)
}

func (GormCatalog) SampleProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	return repo.SampleProducts(ctx, db, limit)
}

func (GormCatalog) SampleProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	return repo.SampleProjects(ctx, db, limit)
}

func (GormCatalog) FeaturedProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	return repo.FeaturedProducts(ctx, db, limit)
}

func (GormCatalog) FeaturedProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	return repo.FeaturedProjects(ctx, db, limit)
}

func (GormCatalog) ListCompanyInfo(ctx context.Context, db *gorm.DB) ([]domain.CompanyInfo, error) {
	return repo.ListCompanyInfo(ctx, db)
}

// Translator detects languages and translates text between them.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, target string) (string, error)
}

// Completer produces a chat completion from a system prompt and a turn
// sequence.
type Completer interface {
	Complete(ctx context.Context, system string, turns []domain.Turn) (string, error)
}

// SpeechSynthesizer renders text to audio bytes for a language.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Options carries the pipeline's behavioral settings.
type Options struct {
	AssistantName      string
	ContactPhone       string
	ContactEmail       string
	SiteBaseURL        string
	Timezone           string
	TTSMaxBytes        int
	UsersEnabled       bool
	CompanyInfoEnabled bool
}

// Reply is the outcome of one pipeline run. Message is empty when a direct
// entity reply carries the whole answer; handlers render that as JSON null.
type Reply struct {
	Message      string
	Product      *domain.Entity
	Project      *domain.Entity
	Developer    *domain.Entity
	User         *domain.Entity
	Products     []domain.Entity
	Projects     []domain.Entity
	Developers   []domain.Entity
	Links        []domain.Link
	UserLanguage string
}

// AudioReply augments a Reply with the transcribed input and synthesized
// speech for the audio flow.
type AudioReply struct {
	Reply
	UserMessage string
	AudioBase64 string
}

// pipelineState carries one message through the stages.
type pipelineState struct {
	raw            string // trimmed original text
	processed      string // preprocessed (lowercased, corrected)
	translated     string // pivot-language text
	lang           string // detected language code
	conversationID string
	history        []domain.Turn
}

// stage is one entry of the short-circuit chain.
type stage struct {
	name   string
	match  func(st *pipelineState) bool
	handle func(ctx context.Context, st *pipelineState) (*Reply, error)
}

// Service orchestrates the conversational pipeline.
type Service struct {
	// DB is the GORM handle used for catalog reads.
	DB *gorm.DB
	// Catalog is the catalog repository used by this service.
	Catalog Catalog

	Translator  Translator
	Completer   Completer
	Speech      SpeechSynthesizer
	Transcriber Transcriber

	Pre     *Preprocessor
	Names   *NameStore
	Company *CompanyCache

	opts   Options
	chain  []stage
	tracer trace.Tracer
}

// NewService constructs the pipeline service and its classifier chain.
func NewService(db *gorm.DB, catalog Catalog, translator Translator, completer Completer,
	speech SpeechSynthesizer, transcriber Transcriber,
	pre *Preprocessor, names *NameStore, company *CompanyCache, opts Options) *Service {

	if opts.AssistantName == "" {
		opts.AssistantName = "Portfolio Agent"
	}
	if opts.TTSMaxBytes <= 0 {
		opts.TTSMaxBytes = 5000
	}

	s := &Service{
		DB:          db,
		Catalog:     catalog,
		Translator:  translator,
		Completer:   completer,
		Speech:      speech,
		Transcriber: transcriber,
		Pre:         pre,
		Names:       names,
		Company:     company,
		opts:        opts,
		tracer:      otel.Tracer("assist/Service"),
	}

	// Order is the contract: the first matching stage answers and the rest
	// never run.
	s.chain = []stage{
		{
			name:   "company",
			match:  func(st *pipelineState) bool { return IsCompanyQuery(st.translated) },
			handle: s.handleCompany,
		},
		{
			name:   "time",
			match:  func(st *pipelineState) bool { return IsTimeQuery(st.translated) },
			handle: s.handleTime,
		},
		{
			name:   "identity",
			match:  func(st *pipelineState) bool { return IsBotNameQuery(st.translated) },
			handle: s.handleIdentity,
		},
		{
			name: "name-declaration",
			match: func(st *pipelineState) bool {
				_, ok := DeclaredName(st.raw)
				return ok
			},
			handle: s.handleNameDeclaration,
		},
		{
			name: "bare-name",
			match: func(st *pipelineState) bool {
				return IsSingleBareName(st.raw) &&
					mention(userMentionRE, st.raw) != "" &&
					!IsListProductsQuery(st.raw) &&
					!IsListProjectsQuery(st.raw) &&
					!IsListDevelopersQuery(st.raw)
			},
			handle: s.handleNameDeclaration,
		},
		{
			name:   "name-query",
			match:  func(st *pipelineState) bool { return IsNameQuery(st.raw) },
			handle: s.handleNameQuery,
		},
		{
			name:   "list-products",
			match:  func(st *pipelineState) bool { return IsListProductsQuery(st.translated) },
			handle: s.handleListProducts,
		},
		{
			name:   "list-projects",
			match:  func(st *pipelineState) bool { return IsListProjectsQuery(st.translated) },
			handle: s.handleListProjects,
		},
		{
			name:   "list-developers",
			match:  func(st *pipelineState) bool { return IsListDevelopersQuery(st.translated) },
			handle: s.handleListDevelopers,
		},
		{
			name: "best-of",
			match: func(st *pipelineState) bool {
				_, ok := BestOfCategory(st.translated)
				return ok
			},
			handle: s.handleBestOf,
		},
	}
	return s
}

// HandleMessage runs the full pipeline for one text message.
func (s *Service) HandleMessage(ctx context.Context, message, conversationID string, history []domain.Turn) (*Reply, error) {
	ctx, span := s.tracer.Start(ctx, "Service.HandleMessage")
	defer span.End()

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		repliesTotal.WithLabelValues("incomplete").Inc()
		r := newReply(pivotLanguage)
		r.Message = incompleteMessageReply
		return r, nil
	}

	processed, err := s.Pre.Preprocess(message)
	if err != nil {
		return nil, err
	}

	lang, err := s.Translator.Detect(ctx, trimmed)
	if err != nil {
		err = upstream("translate", err)
		observeUpstream(err)
		return nil, err
	}
	if lang == "" {
		lang = pivotLanguage
	}
	span.SetAttributes(attribute.String("user.language", lang))

	translated := trimmed
	if lang != pivotLanguage {
		translated, err = s.Translator.Translate(ctx, trimmed, pivotLanguage)
		if err != nil {
			err = upstream("translate", err)
			observeUpstream(err)
			return nil, err
		}
	}

	st := &pipelineState{
		raw:            trimmed,
		processed:      processed,
		translated:     translated,
		lang:           lang,
		conversationID: conversationID,
		history:        history,
	}

	for _, stg := range s.chain {
		if !stg.match(st) {
			continue
		}
		log.Debug().Str("stage", stg.name).Msg("classifier short-circuit")
		reply, err := stg.handle(ctx, st)
		if err != nil {
			observeUpstream(err)
			return nil, err
		}
		repliesTotal.WithLabelValues(stg.name).Inc()
		return reply, nil
	}

	reply, err := s.handleResolved(ctx, st)
	if err != nil {
		observeUpstream(err)
		return nil, err
	}
	return reply, nil
}

// newReply constructs a reply shell with the detected language and empty
// collections, so handlers always emit arrays instead of nulls.
func newReply(lang string) *Reply {
	return &Reply{
		UserLanguage: lang,
		Links:        []domain.Link{},
		Products:     []domain.Entity{},
		Projects:     []domain.Entity{},
		Developers:   []domain.Entity{},
	}
}

// handleCompany answers company questions: contact details, ownership, or
// the scored company-info context.
func (s *Service) handleCompany(ctx context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)

	if IsContactQuery(st.translated) {
		switch st.lang {
		case "ar":
			r.Message = "يمكنك الاتصال بنا عبر الهاتف أو الواتساب على الرقم: " + s.opts.ContactPhone + "\nأو عبر البريد الإلكتروني: " + s.opts.ContactEmail
		default:
			r.Message = "You can contact us by phone or WhatsApp at " + s.opts.ContactPhone + ".\nOr by email: " + s.opts.ContactEmail
		}
		return r, nil
	}

	if IsOwnershipQuery(st.translated) {
		msg := "Alsaaeid Ellithy portfolio that specializes in designing and developing, and selling software products. Founded and owned by Al-Saaeid Ellithy."
		if st.lang != pivotLanguage {
			translated, err := s.Translator.Translate(ctx, msg, st.lang)
			if err != nil {
				return nil, upstream("translate", err)
			}
			msg = translated
		}
		r.Message = msg
		return r, nil
	}

	sections, err := s.relevantCompanyInfo(ctx, st.raw)
	if err != nil {
		return nil, err
	}
	if len(sections) > 0 {
		r.Message = "Company information:\n" + strings.Join(sections, "\n")
	} else {
		r.Message = defaultCompanyBlurb
	}
	return r, nil
}

// handleTime answers current-time questions in the configured timezone.
func (s *Service) handleTime(_ context.Context, st *pipelineState) (*Reply, error) {
	loc, err := time.LoadLocation(s.opts.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	place := s.opts.Timezone
	if i := strings.LastIndex(place, "/"); i >= 0 {
		place = place[i+1:]
	}
	place = strings.ReplaceAll(place, "_", " ")

	r := newReply(st.lang)
	r.Message = "The current time is " + now.Format("03:04 PM") + " in " + place + "."
	return r, nil
}

// handleIdentity answers "who are you" with the assistant's fixed identity.
func (s *Service) handleIdentity(_ context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)
	r.Message = "I am " + s.opts.AssistantName + ". How can I assist you with the digital services?"
	return r, nil
}

// handleNameDeclaration remembers the declared name and greets the visitor.
func (s *Service) handleNameDeclaration(_ context.Context, st *pipelineState) (*Reply, error) {
	name, ok := DeclaredName(st.raw)
	if !ok {
		name = mention(userMentionRE, st.raw)
	}
	name = strings.TrimSpace(name)
	s.Names.Set(st.conversationID, name)

	r := newReply(st.lang)
	r.Message = "Nice to meet you, " + name + ". How can I assist you with your inquiries?"
	return r, nil
}

// handleNameQuery recalls the stored name for this conversation.
func (s *Service) handleNameQuery(_ context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)
	if stored := s.Names.Get(st.conversationID); stored != "" {
		r.Message = "Your name is " + stored + "."
	} else {
		r.Message = "I don't know your name yet. What should I call you?"
	}
	return r, nil
}

// listEntities translates and deduplicates a normalized list for a list
// reply. Translation applies per item when the visitor's language is not the
// pivot language.
func (s *Service) listEntities(ctx context.Context, items []domain.Entity, lang string) ([]domain.Entity, error) {
	if lang != pivotLanguage {
		for i := range items {
			name, err := s.Translator.Translate(ctx, items[i].Name, lang)
			if err != nil {
				return nil, upstream("translate", err)
			}
			items[i].Name = name
			if items[i].Description != "" {
				desc, err := s.Translator.Translate(ctx, items[i].Description, lang)
				if err != nil {
					return nil, upstream("translate", err)
				}
				items[i].Description = desc
			}
		}
	}

	seen := map[string]struct{}{}
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.Name]; dup {
			continue
		}
		seen[it.Name] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}

// numberedList renders "1. Name: Description" lines.
func numberedList(items []domain.Entity) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, it.Name, it.Description))
	}
	return strings.Join(lines, "\n")
}

// handleListProducts answers "list products" with up to ten items.
func (s *Service) handleListProducts(ctx context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)

	records, err := s.Catalog.RecentProducts(ctx, s.DB, listReplyLimit)
	if err != nil {
		return nil, upstream("catalog", err)
	}
	if len(records) == 0 {
		if st.lang == "ar" {
			r.Message = "عذرًا، لا توجد تفاصيل عن المنتجات في الوقت الحالي. يرجى الاتصال بنا للحصول على معلومات محدثة."
		} else {
			r.Message = "I'm sorry, but I don't have specific details about products at the moment. Please contact us directly for updated and accurate information."
		}
		return r, nil
	}

	items := make([]domain.Entity, 0, len(records))
	for i := range records {
		items = append(items, *s.normalizeProduct(&records[i]))
	}
	if items, err = s.listEntities(ctx, items, st.lang); err != nil {
		return nil, err
	}
	r.Products = items

	if st.lang == "ar" {
		r.Message = numberedList(items)
	} else {
		r.Message = "Available products include:\n" + numberedList(items)
	}
	return r, nil
}

// handleListProjects answers "list projects" with up to ten items.
func (s *Service) handleListProjects(ctx context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)

	records, err := s.Catalog.RecentProjects(ctx, s.DB, listReplyLimit)
	if err != nil {
		return nil, upstream("catalog", err)
	}
	if len(records) == 0 {
		if st.lang == "ar" {
			r.Message = "عذرًا، لا توجد تفاصيل عن المشاريع في الوقت الحالي. يرجى الاتصال بنا للحصول على معلومات محدثة."
		} else {
			r.Message = "I'm sorry, but I don't have specific details about projects at the moment. Please contact us directly for updated and accurate information."
		}
		return r, nil
	}

	items := make([]domain.Entity, 0, len(records))
	for i := range records {
		items = append(items, *s.normalizeProject(&records[i]))
	}
	if items, err = s.listEntities(ctx, items, st.lang); err != nil {
		return nil, err
	}
	r.Projects = items

	if st.lang == "ar" {
		r.Message = numberedList(items)
	} else {
		r.Message = "Available projects include:\n" + numberedList(items)
	}
	return r, nil
}

// handleListDevelopers answers "list developers" with up to ten items.
func (s *Service) handleListDevelopers(ctx context.Context, st *pipelineState) (*Reply, error) {
	r := newReply(st.lang)

	records, err := s.Catalog.RecentDevelopers(ctx, s.DB, listReplyLimit)
	if err != nil {
		return nil, upstream("catalog", err)
	}
	if len(records) == 0 {
		if st.lang == "ar" {
			r.Message = "عذرًا، لا توجد تفاصيل عن المطورين في الوقت الحالي. يرجى الاتصال بنا للحصول على معلومات محدثة."
		} else {
			r.Message = "I'm sorry, but I don't have specific details about developers at the moment. Please contact us directly for updated and accurate information."
		}
		return r, nil
	}

	items := make([]domain.Entity, 0, len(records))
	for i := range records {
		items = append(items, *s.normalizeDeveloper(&records[i]))
	}
	if items, err = s.listEntities(ctx, items, st.lang); err != nil {
		return nil, err
	}
	r.Developers = items

	if st.lang == "ar" {
		r.Message = numberedList(items)
	} else {
		r.Message = "Available developers include:\n" + numberedList(items)
	}
	return r, nil
}

// handleBestOf answers "best X" questions with fixed editorial picks.
func (s *Service) handleBestOf(_ context.Context, st *pipelineState) (*Reply, error) {
	category, _ := BestOfCategory(st.translated)

	r := newReply(st.lang)
	switch category {
	case "projects":
		r.Message = "The best projects in Dubai include Dubai Marina, Downtown Dubai, and Palm Jumeirah. These areas are known for their luxury and high-quality developments."
	case "products":
		r.Message = "The best products in Dubai include luxury villas in Emirates Hills, apartments in Burj Khalifa, and waterfront products in Jumeirah Beach Residence."
	case "developers":
		r.Message = "The best developers in Dubai include Emaar Products, Nakheel, and DAMAC Products, known for their iconic and high-quality developments."
	}
	return r, nil
}

// handleResolved runs the fallthrough path: intent detection, fuzzy
// resolution, direct entity replies, sample lists, and finally the model.
func (s *Service) handleResolved(ctx context.Context, st *pipelineState) (*Reply, error) {
	ctx, span := s.tracer.Start(ctx, "Service.resolve")
	defer span.End()

	it := DetectIntent(st.processed)
	res, err := s.ResolveEntities(ctx, st.processed, it)
	if err != nil {
		return nil, err
	}

	// A non-ambiguous intent excludes the other kinds even when the phrase
	// accidentally matched one of them.
	if it.WantsProduct && !it.Ambiguous {
		res.Project = nil
	}
	if it.WantsProject && !it.Ambiguous {
		res.Product = nil
	}
	if it.WantsDeveloper && !it.Ambiguous {
		res.Product = nil
		res.Project = nil
	}

	// A single strong match answers by itself; no model call.
	if res.Product != nil && res.Product.ID != "" {
		e := s.normalizeProduct(res.Product)
		r := newReply(st.lang)
		r.Product = e
		r.Products = []domain.Entity{*e}
		r.Links = s.buildLinks(e, nil)
		repliesTotal.WithLabelValues("entity").Inc()
		return r, nil
	}
	if res.Project != nil && res.Project.ID != "" {
		e := s.normalizeProject(res.Project)
		r := newReply(st.lang)
		r.Project = e
		r.Projects = []domain.Entity{*e}
		repliesTotal.WithLabelValues("entity").Inc()
		return r, nil
	}
	if res.Developer != nil && res.Developer.ID != "" {
		e := s.normalizeDeveloper(res.Developer)
		r := newReply(st.lang)
		r.Developer = e
		r.Developers = []domain.Entity{*e}
		repliesTotal.WithLabelValues("entity").Inc()
		return r, nil
	}

	// Sample fallback when the visitor wants a kind but named nothing. An
	// explicitly "featured" question tries featured-only rows before the
	// mixed sample.
	var productList, projectList []domain.Entity
	if (IsFeaturedProductsQuery(st.translated) || it.WantsProduct) && res.Product == nil {
		var samples []domain.Product
		if IsFeaturedProductsQuery(st.translated) {
			if samples, err = s.Catalog.FeaturedProducts(ctx, s.DB, sampleLimit); err != nil {
				return nil, upstream("catalog", err)
			}
		}
		if len(samples) == 0 {
			if samples, err = s.Catalog.SampleProducts(ctx, s.DB, sampleLimit); err != nil {
				return nil, upstream("catalog", err)
			}
		}
		for i := range samples {
			productList = append(productList, *s.normalizeProduct(&samples[i]))
		}
	}
	if (IsFeaturedProjectsQuery(st.translated) || it.WantsProject) && res.Project == nil {
		var samples []domain.Project
		if IsFeaturedProjectsQuery(st.translated) {
			if samples, err = s.Catalog.FeaturedProjects(ctx, s.DB, sampleLimit); err != nil {
				return nil, upstream("catalog", err)
			}
		}
		if len(samples) == 0 {
			if samples, err = s.Catalog.SampleProjects(ctx, s.DB, sampleLimit); err != nil {
				return nil, upstream("catalog", err)
			}
		}
		for i := range samples {
			projectList = append(projectList, *s.normalizeProject(&samples[i]))
		}
	}

	reply, err := s.completeWithModel(ctx, st, res, productList, projectList)
	if err != nil {
		return nil, err
	}
	repliesTotal.WithLabelValues("llm").Inc()
	return reply, nil
}

// completeWithModel asks the language model and finalizes its answer:
// entity context, links, contact and availability notes, back-translation.
func (s *Service) completeWithModel(ctx context.Context, st *pipelineState, res Resolution, productList, projectList []domain.Entity) (*Reply, error) {
	ctx, span := s.tracer.Start(ctx, "Service.complete")
	defer span.End()

	var contextParts []string
	if stored := s.Names.Get(st.conversationID); stored != "" && IsNameQuery(st.raw) {
		contextParts = append(contextParts, "User name: "+stored+".")
	}
	if res.Product != nil {
		contextParts = append(contextParts, SummarizeProduct(res.Product))
	}
	if res.Project != nil {
		contextParts = append(contextParts, SummarizeProject(res.Project))
	}
	if res.Developer != nil {
		contextParts = append(contextParts, SummarizeDeveloper(res.Developer))
	}
	if res.User != nil {
		contextParts = append(contextParts, SummarizeUser(res.User))
	}
	if len(productList) > 0 {
		contextParts = append(contextParts, "Example available products: "+joinNames(productList)+".")
	}
	if len(projectList) > 0 {
		contextParts = append(contextParts, "Example available projects: "+joinNames(projectList)+".")
	}

	var userEntity *domain.Entity
	if res.User != nil {
		userEntity = s.normalizeUser(res.User)
	}
	var productEntity *domain.Entity
	if res.Product != nil {
		productEntity = s.normalizeProduct(res.Product)
	}
	links := s.buildLinks(productEntity, userEntity)

	system := s.buildSystemPrompt(ctx)
	turns := s.buildTurns(st.history, st.translated)

	content, err := s.Completer.Complete(ctx, system, turns)
	if err != nil {
		return nil, upstream("openai", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	if len(contextParts) > 0 {
		content += "\n" + strings.Join(contextParts, " ")
	}
	if len(links) > 0 {
		var linkText []string
		for _, l := range links {
			linkText = append(linkText, l.Label+": "+l.URL)
		}
		content += "\nLinks: " + strings.Join(linkText, " | ")
	}
	if IsPricingQuery(st.raw) {
		content += "\nFor pricing or payment details, you can share this contact: Mobile: " +
			s.opts.ContactPhone + " (WhatsApp) | Email: " + s.opts.ContactEmail
	}
	if IsLocationAvailabilityQuery(st.translated) {
		if st.lang == "ar" {
			content += "\nيمكنك الاستفسار عن توافر المنتجات والمشاريع من خلال الاتصال بنا على " + s.opts.ContactPhone + " أو زيارة موقعنا " + s.opts.SiteBaseURL + "."
		} else {
			content += "\nYou can inquire about product and project availability by contacting us at " +
				s.opts.ContactPhone + " or visiting our website " + s.opts.SiteBaseURL + "."
		}
	}

	if st.lang != pivotLanguage {
		content, err = s.Translator.Translate(ctx, content, st.lang)
		if err != nil {
			return nil, upstream("translate", err)
		}
	}

	r := newReply(st.lang)
	r.Message = content
	r.Links = links
	if len(productList) > 0 {
		r.Products = productList
	}
	if len(projectList) > 0 {
		r.Projects = projectList
	}
	if userEntity != nil {
		r.User = userEntity
	}
	return r, nil
}

func joinNames(items []domain.Entity) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return strings.Join(names, ", ")
}
