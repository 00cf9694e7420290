// Package assist – company-info cache
package assist

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

const companyInfoKey = "company-info"

// CompanyCache holds the company-info sections with an explicit TTL, so
// content edits become visible without a restart. Concurrent first reads may
// both miss and both load from the store; the load is idempotent so that is
// harmless.
type CompanyCache struct {
	cache *ristretto.Cache[string, []domain.CompanyInfo]
	ttl   time.Duration
}

// NewCompanyCache constructs a CompanyCache with the given TTL.
func NewCompanyCache(ttl time.Duration) *CompanyCache {
	c, err := ristretto.NewCache(&ristretto.Config[string, []domain.CompanyInfo]{
		NumCounters: 64,
		MaxCost:     16,
		BufferItems: 64,
	})
	if err != nil {
		// The config above is constant and valid; NewCache cannot fail on it.
		panic(err)
	}
	return &CompanyCache{cache: c, ttl: ttl}
}

// Get returns the cached sections, or ok=false on a miss or after expiry.
func (c *CompanyCache) Get() ([]domain.CompanyInfo, bool) {
	return c.cache.Get(companyInfoKey)
}

// Set stores the sections for the configured TTL. It waits for the write to
// become visible so a Get immediately after Set observes the value.
func (c *CompanyCache) Set(sections []domain.CompanyInfo) {
	c.cache.SetWithTTL(companyInfoKey, sections, 1, c.ttl)
	c.cache.Wait()
}
