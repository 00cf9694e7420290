package assist

import (
	"testing"
	"time"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

func TestCompanyCache_MissThenHit(t *testing.T) {
	c := NewCompanyCache(time.Minute)

	if _, ok := c.Get(); ok {
		t.Fatal("fresh cache must miss")
	}

	sections := []domain.CompanyInfo{{Title: "Services", ContentEN: "software"}}
	c.Set(sections)

	got, ok := c.Get()
	if !ok || len(got) != 1 || got[0].Title != "Services" {
		t.Fatalf("expected cached sections, got %v (ok=%v)", got, ok)
	}
}

func TestCompanyCache_TTLExpiry(t *testing.T) {
	c := NewCompanyCache(30 * time.Millisecond)

	c.Set([]domain.CompanyInfo{{Title: "Services"}})
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get(); ok {
		t.Fatal("entry should have expired")
	}
}
