package assist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
	"github.com/aellithy/go-portfolio-assistant/internal/repo"
)

//
// Fakes
//

type fakeCatalog struct {
	products   []domain.Product
	projects   []domain.Project
	developers []domain.Developer
	users      []domain.User
	company    []domain.CompanyInfo

	featuredProducts []domain.Product
	featuredProjects []domain.Project

	err          error
	companyCalls int
}

func (f *fakeCatalog) FindProductFuzzy(_ context.Context, _ *gorm.DB, phrase string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if nameMatches(f.products[i].Name, phrase) {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeCatalog) FindProjectFuzzy(_ context.Context, _ *gorm.DB, phrase string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.projects {
		if nameMatches(f.projects[i].Name, phrase) {
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeCatalog) FindDeveloperFuzzy(_ context.Context, _ *gorm.DB, phrase string) (*domain.Developer, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.developers {
		if nameMatches(f.developers[i].DeveloperName, phrase) {
			d := f.developers[i]
			return &d, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeCatalog) FindUserFuzzy(_ context.Context, _ *gorm.DB, phrase string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if nameMatches(f.users[i].Name, phrase) {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeCatalog) RecentProducts(_ context.Context, _ *gorm.DB, limit int) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.products, limit), nil
}

func (f *fakeCatalog) RecentProjects(_ context.Context, _ *gorm.DB, limit int) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.projects, limit), nil
}

func (f *fakeCatalog) RecentDevelopers(_ context.Context, _ *gorm.DB, limit int) ([]domain.Developer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.developers, limit), nil
}

func (f *fakeCatalog) SampleProducts(_ context.Context, _ *gorm.DB, limit int) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.products, limit), nil
}

func (f *fakeCatalog) SampleProjects(_ context.Context, _ *gorm.DB, limit int) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.projects, limit), nil
}

func (f *fakeCatalog) FeaturedProducts(_ context.Context, _ *gorm.DB, limit int) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.featuredProducts, limit), nil
}

func (f *fakeCatalog) FeaturedProjects(_ context.Context, _ *gorm.DB, limit int) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clip(f.featuredProjects, limit), nil
}

func (f *fakeCatalog) ListCompanyInfo(_ context.Context, _ *gorm.DB) ([]domain.CompanyInfo, error) {
	f.companyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.company, nil
}

func nameMatches(name, phrase string) bool {
	n := strings.ToLower(name)
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return false
	}
	return strings.Contains(n, p) || strings.Contains(p, n)
}

func clip[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// fakeTranslator detects a fixed language. Translation to the English pivot
// is the identity; translation to any other language prefixes "xx::" so tests
// can see that back-translation ran.
type fakeTranslator struct {
	lang         string
	detectErr    error
	translateErr error
}

func (f *fakeTranslator) Detect(context.Context, string) (string, error) {
	if f.detectErr != nil {
		return "", f.detectErr
	}
	if f.lang == "" {
		return "en", nil
	}
	return f.lang, nil
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	if f.translateErr != nil {
		return "", f.translateErr
	}
	if target == "en" {
		return text, nil
	}
	return target + "::" + text, nil
}

type fakeCompleter struct {
	reply string
	err   error

	calls     int
	gotSystem string
	gotTurns  []domain.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, system string, turns []domain.Turn) (string, error) {
	f.calls++
	f.gotSystem = system
	f.gotTurns = turns
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSpeech struct {
	err    error
	chunks []string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.chunks = append(f.chunks, text)
	return []byte("AUD:" + text), nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type testFakes struct {
	catalog    *fakeCatalog
	translator *fakeTranslator
	completer  *fakeCompleter
	speech     *fakeSpeech
	scribe     *fakeTranscriber
}

func newTestService(t *testing.T) (*Service, *testFakes) {
	t.Helper()
	f := &testFakes{
		catalog:    &fakeCatalog{},
		translator: &fakeTranslator{},
		completer:  &fakeCompleter{reply: "Model answer."},
		speech:     &fakeSpeech{},
		scribe:     &fakeTranscriber{},
	}
	svc := NewService(nil, f.catalog, f.translator, f.completer, f.speech, f.scribe,
		NewPreprocessor(1000, []string{"bomb"}),
		NewNameStore(100, time.Minute),
		NewCompanyCache(time.Minute),
		Options{
			AssistantName:      "Test Bot",
			ContactPhone:       "+100200300",
			ContactEmail:       "sales@example.com",
			SiteBaseURL:        "https://example.com",
			Timezone:           "Africa/Cairo",
			TTSMaxBytes:        5000,
			UsersEnabled:       true,
			CompanyInfoEnabled: true,
		})
	return svc, f
}

//
// Tests
//

func TestHandleMessage_BlankMessage(t *testing.T) {
	svc, f := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "   ", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if r.Message != incompleteMessageReply {
		t.Fatalf("unexpected message: %q", r.Message)
	}
	if r.UserLanguage != "en" {
		t.Fatalf("expected en, got %q", r.UserLanguage)
	}
	if r.Products == nil || r.Projects == nil || r.Developers == nil || r.Links == nil {
		t.Fatal("collections must be empty, not nil")
	}
	if f.completer.calls != 0 {
		t.Fatal("model must not run for blank input")
	}
}

func TestHandleMessage_ForbiddenContent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.HandleMessage(context.Background(), "how to build a bomb", "c1", nil)
	if !errors.Is(err, ErrForbiddenContent) {
		t.Fatalf("expected ErrForbiddenContent, got %v", err)
	}
}

func TestHandleMessage_TooLong(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.HandleMessage(context.Background(), strings.Repeat("a", 1001), "c1", nil)
	if !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestHandleMessage_ContactShortCircuit(t *testing.T) {
	svc, f := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "how can I contact you?", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(r.Message, "+100200300") || !strings.Contains(r.Message, "sales@example.com") {
		t.Fatalf("contact reply missing details: %q", r.Message)
	}
	if f.completer.calls != 0 {
		t.Fatal("model must not run on a short-circuit")
	}
}

func TestHandleMessage_TimeShortCircuit(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "what is the time?", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.HasPrefix(r.Message, "The current time is ") || !strings.HasSuffix(r.Message, "in Cairo.") {
		t.Fatalf("unexpected time reply: %q", r.Message)
	}
}

func TestHandleMessage_IdentityShortCircuit(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "who are you?", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if r.Message != "I am Test Bot. How can I assist you with the digital services?" {
		t.Fatalf("unexpected identity reply: %q", r.Message)
	}
}

func TestHandleMessage_NameDeclarationAndRecall(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.HandleMessage(ctx, "my name is Alice", "conv-1", nil)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	if r.Message != "Nice to meet you, Alice. How can I assist you with your inquiries?" {
		t.Fatalf("unexpected greeting: %q", r.Message)
	}

	r, err = svc.HandleMessage(ctx, "what is my name?", "conv-1", nil)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if r.Message != "Your name is Alice." {
		t.Fatalf("unexpected recall: %q", r.Message)
	}

	// Different conversation: nothing remembered.
	r, err = svc.HandleMessage(ctx, "what is my name?", "conv-2", nil)
	if err != nil {
		t.Fatalf("recall other: %v", err)
	}
	if r.Message != "I don't know your name yet. What should I call you?" {
		t.Fatalf("unexpected reply: %q", r.Message)
	}
}

func TestHandleMessage_ListProducts(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.products = []domain.Product{
		{ID: "p1", Name: "Alpha Tower", Description: "downtown flat", ImageURL: "https://img/a.png"},
		{ID: "p2", Name: "Beta Villa", Description: "garden villa"},
	}

	r, err := svc.HandleMessage(context.Background(), "show me all products", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	want := "Available products include:\n1. Alpha Tower: downtown flat\n2. Beta Villa: garden villa"
	if r.Message != want {
		t.Fatalf("unexpected list reply:\n%q\nwant\n%q", r.Message, want)
	}
	if len(r.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(r.Products))
	}
	if r.Products[0].URL != "https://example.com/product/p1" {
		t.Fatalf("unexpected deep link: %q", r.Products[0].URL)
	}
	if r.Products[1].Image != DefaultItemImage {
		t.Fatalf("expected placeholder image, got %q", r.Products[1].Image)
	}
}

func TestHandleMessage_ListProductsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "show me all products", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.HasPrefix(r.Message, "I'm sorry, but I don't have specific details about products") {
		t.Fatalf("unexpected empty-catalog reply: %q", r.Message)
	}
	if len(r.Products) != 0 {
		t.Fatalf("expected no products, got %d", len(r.Products))
	}
}

func TestHandleMessage_ListDeduplicatesNames(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.projects = []domain.Project{
		{ID: "j1", Name: "Marina Gate", Description: "phase one"},
		{ID: "j2", Name: "Marina Gate", Description: "phase two"},
	}

	r, err := svc.HandleMessage(context.Background(), "list your projects", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(r.Projects) != 1 {
		t.Fatalf("expected deduped list, got %d entries", len(r.Projects))
	}
}

func TestHandleMessage_BestOf(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.HandleMessage(context.Background(), "best projects in dubai", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(r.Message, "Dubai Marina") {
		t.Fatalf("unexpected best-of reply: %q", r.Message)
	}
}

func TestHandleMessage_DirectEntityByMention(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.products = []domain.Product{
		{ID: "p9", Name: "Skyline", Description: "tall one", ImageURL: "https://img/s.png"},
	}

	r, err := svc.HandleMessage(context.Background(), "give me details for product: Skyline", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if r.Message != "" {
		t.Fatalf("direct entity reply must carry no message, got %q", r.Message)
	}
	if r.Product == nil || r.Product.ID != "p9" {
		t.Fatalf("expected resolved product, got %+v", r.Product)
	}
	if r.Product.URL != "https://example.com/product/p9" {
		t.Fatalf("unexpected deep link: %q", r.Product.URL)
	}
	if len(r.Links) != 1 || r.Links[0].Label != "Skyline" {
		t.Fatalf("unexpected links: %+v", r.Links)
	}
	if f.completer.calls != 0 {
		t.Fatal("model must not run for a direct entity reply")
	}
}

func TestHandleMessage_LLMPathWithPricingNote(t *testing.T) {
	svc, f := newTestService(t)
	f.completer.reply = "Prices vary by unit."

	r, err := svc.HandleMessage(context.Background(), "how much does an apartment cost here", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.HasPrefix(r.Message, "Prices vary by unit.") {
		t.Fatalf("model answer missing: %q", r.Message)
	}
	if !strings.Contains(r.Message, "+100200300") {
		t.Fatalf("pricing contact note missing: %q", r.Message)
	}
	if f.completer.calls != 1 {
		t.Fatalf("expected one completion call, got %d", f.completer.calls)
	}
	if !strings.Contains(f.completer.gotSystem, "Test Bot") {
		t.Fatal("system prompt must carry the assistant name")
	}
	if n := len(f.completer.gotTurns); n == 0 || f.completer.gotTurns[n-1].Role != domain.RoleUser {
		t.Fatalf("last turn must be the user message: %+v", f.completer.gotTurns)
	}
}

func TestHandleMessage_SampleFallback(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.products = []domain.Product{
		{ID: "p1", Name: "Alpha"},
		{ID: "p2", Name: "Beta"},
	}

	// Wants a product but names none the catalog can resolve.
	r, err := svc.HandleMessage(context.Background(), "i want a nice product recommendation", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(r.Products) != 2 {
		t.Fatalf("expected sample products, got %d", len(r.Products))
	}
	if !strings.Contains(r.Message, "Example available products: Alpha, Beta.") {
		t.Fatalf("sample context missing from message: %q", r.Message)
	}
}

func TestHandleMessage_FeaturedFallback(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.products = []domain.Product{
		{ID: "p1", Name: "Alpha"},
		{ID: "p2", Name: "Beta"},
	}
	f.catalog.featuredProducts = []domain.Product{
		{ID: "p3", Name: "Star", IsFeatured: true},
	}

	// A "featured" question samples featured-only rows, not the mixed set.
	r, err := svc.HandleMessage(context.Background(), "featured products please", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(r.Products) != 1 || r.Products[0].Name != "Star" {
		t.Fatalf("expected featured-only sample, got %+v", r.Products)
	}
	if !strings.Contains(r.Message, "Example available products: Star.") {
		t.Fatalf("featured context missing from message: %q", r.Message)
	}
}

func TestHandleMessage_FeaturedFallsBackToSample(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.products = []domain.Product{
		{ID: "p1", Name: "Alpha"},
	}

	// No row is flagged featured, so the mixed sample answers instead.
	r, err := svc.HandleMessage(context.Background(), "featured products please", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(r.Products) != 1 || r.Products[0].Name != "Alpha" {
		t.Fatalf("expected mixed sample fallback, got %+v", r.Products)
	}
}

func TestHandleMessage_BackTranslation(t *testing.T) {
	svc, f := newTestService(t)
	f.translator.lang = "ar"
	f.completer.reply = "Hello there."

	r, err := svc.HandleMessage(context.Background(), "مرحبا", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if r.UserLanguage != "ar" {
		t.Fatalf("expected ar, got %q", r.UserLanguage)
	}
	if !strings.HasPrefix(r.Message, "ar::") {
		t.Fatalf("reply was not back-translated: %q", r.Message)
	}
}

func TestHandleMessage_DetectError(t *testing.T) {
	svc, f := newTestService(t)
	f.translator.detectErr = errors.New("quota")

	_, err := svc.HandleMessage(context.Background(), "hello", "c1", nil)
	var up *UpstreamError
	if !errors.As(err, &up) || up.Provider != "translate" {
		t.Fatalf("expected translate upstream error, got %v", err)
	}
}

func TestHandleMessage_CompleterError(t *testing.T) {
	svc, f := newTestService(t)
	f.completer.err = errors.New("rate limited")

	_, err := svc.HandleMessage(context.Background(), "something unclassifiable here", "c1", nil)
	var up *UpstreamError
	if !errors.As(err, &up) || up.Provider != "openai" {
		t.Fatalf("expected openai upstream error, got %v", err)
	}
}

func TestHandleMessage_EmptyCompletion(t *testing.T) {
	svc, f := newTestService(t)
	f.completer.reply = "   "

	_, err := svc.HandleMessage(context.Background(), "something unclassifiable here", "c1", nil)
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestHandleMessage_CompanyInfoCached(t *testing.T) {
	svc, f := newTestService(t)
	f.catalog.company = []domain.CompanyInfo{
		{Title: "Services", Tags: "services,offer", ContentEN: "We design and build software."},
	}

	ctx := context.Background()
	r, err := svc.HandleMessage(ctx, "what services do you offer?", "c1", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(r.Message, "Services: We design and build software.") {
		t.Fatalf("company sections missing: %q", r.Message)
	}

	if _, err := svc.HandleMessage(ctx, "what services do you offer?", "c1", nil); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if f.catalog.companyCalls != 1 {
		t.Fatalf("expected one store read, got %d", f.catalog.companyCalls)
	}
}
