// Package repo implements the data persistence layer for the catalog,
// backed by GORM. This file provides read-side repository functions over the
// catalog tables (products, projects, developers, users, company info).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only query
// composition.
//
// Error semantics:
//   - When a record is not found, fuzzy-find functions return
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors the raw gorm error is propagated.
//
// Fuzzy lookup contract (FindProductFuzzy and friends):
//
//	Tier 1: exact case-insensitive match of the whole phrase against any
//	        localized name column.
//	Tier 2: case-insensitive substring match of the whole phrase.
//	Tier 3: substring match of the phrase's first token, only when that
//	        token is at least two characters.
//
// The first tier that produces a row wins; within a tier, insertion order
// breaks ties (First on the unordered table scan). This mirrors how visitors
// actually type names: full name, partial name, then just the leading word.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/aellithy/go-portfolio-assistant/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Localized name columns per table. Developer uses developer_name as its
// canonical column; the rest share the same layout.
var (
	productNameCols   = []string{"name", "name_ar", "name_de", "name_fr", "name_zh"}
	projectNameCols   = []string{"name", "name_ar", "name_de", "name_fr", "name_zh"}
	developerNameCols = []string{"developer_name", "name_ar", "name_de", "name_fr", "name_zh"}
	userNameCols      = []string{"name", "email"}
)

// escapeLike escapes LIKE metacharacters so user-typed phrases are matched
// literally. Queries using the result must carry ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// firstWhere fetches the first row of T where cond (a format string with one
// %s column placeholder) holds for any of cols.
func firstWhere[T any](ctx context.Context, db *gorm.DB, cols []string, cond string, arg any) (*T, error) {
	clauses := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		clauses[i] = fmt.Sprintf(cond, col)
		args[i] = arg
	}
	var out T
	err := db.WithContext(ctx).
		Where(strings.Join(clauses, " OR "), args...).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// findFuzzy runs the three-tier lookup for T over the given name columns.
func findFuzzy[T any](ctx context.Context, db *gorm.DB, cols []string, phrase string) (*T, error) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return nil, ErrNotFound
	}

	// Tier 1: exact case-insensitive match.
	out, err := firstWhere[T](ctx, db, cols, "LOWER(%s) = ?", phrase)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Tier 2: substring match.
	out, err = firstWhere[T](ctx, db, cols, `LOWER(%s) LIKE ? ESCAPE '\'`, "%"+escapeLike(phrase)+"%")
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Tier 3: first token of the phrase, when it carries enough signal.
	fields := strings.Fields(phrase)
	if len(fields) > 0 {
		if tok := fields[0]; len(tok) >= 2 && tok != phrase {
			return firstWhere[T](ctx, db, cols, `LOWER(%s) LIKE ? ESCAPE '\'`, "%"+escapeLike(tok)+"%")
		}
	}
	return nil, ErrNotFound
}

// FindProductFuzzy resolves a product by phrase using the three-tier lookup.
func FindProductFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Product, error) {
	return findFuzzy[domain.Product](ctx, db, productNameCols, phrase)
}

// FindProjectFuzzy resolves a project by phrase using the three-tier lookup.
func FindProjectFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Project, error) {
	return findFuzzy[domain.Project](ctx, db, projectNameCols, phrase)
}

// FindDeveloperFuzzy resolves a developer by phrase using the three-tier lookup.
func FindDeveloperFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.Developer, error) {
	return findFuzzy[domain.Developer](ctx, db, developerNameCols, phrase)
}

// FindUserFuzzy resolves a user by phrase using the three-tier lookup.
func FindUserFuzzy(ctx context.Context, db *gorm.DB, phrase string) (*domain.User, error) {
	return findFuzzy[domain.User](ctx, db, userNameCols, phrase)
}

// RecentProducts returns up to limit products, most recently created first.
// Used both for the system-prompt digest (small limit) and list replies.
func RecentProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentProjects returns up to limit projects, most recently created first.
func RecentProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentDevelopers returns up to limit developers, most recently created first.
func RecentDevelopers(ctx context.Context, db *gorm.DB, limit int) ([]domain.Developer, error) {
	var out []domain.Developer
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SampleProducts returns up to limit products with featured rows first,
// falling back to the rest by recency. Used when the visitor asks for
// suggestions without naming anything.
func SampleProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Order("is_featured desc, created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SampleProjects returns up to limit projects, featured first.
func SampleProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := db.WithContext(ctx).
		Order("is_featured desc, created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FeaturedProducts returns up to limit featured products, most recent first.
// Backs the featured-only branch of the sample fallback; SampleProducts is
// the mixed fallback when no row is flagged.
func FeaturedProducts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FeaturedProjects returns up to limit featured projects, most recent first.
func FeaturedProjects(ctx context.Context, db *gorm.DB, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListCompanyInfo returns every company-info section. The set is small and
// cached by the caller, so no pagination is offered.
func ListCompanyInfo(ctx context.Context, db *gorm.DB) ([]domain.CompanyInfo, error) {
	var out []domain.CompanyInfo
	err := db.WithContext(ctx).Find(&out).Error
	return out, err
}
