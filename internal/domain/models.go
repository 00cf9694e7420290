// Package domain defines the persistence models for the portfolio catalog
// (products, projects, developers, users, company info) plus the value types
// exchanged by the assistant pipeline. Catalog types are mapped with GORM and
// form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Product represents a catalog listing (a property or portfolio item).
// Name carries per-locale variants so lookups can match whichever language
// the visitor typed.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / NameAr / NameDe / NameFr / NameZh: localized display names.
//   - Description: free-text description (English).
//   - Price, Beds, Baths, Area: listing attributes; zero when not applicable.
//   - ItemType: classification (e.g. "apartment", "villa").
//   - Status: lifecycle state (e.g. "available", "sold").
//   - IsFeatured: highlighted on the landing page; featured rows are sampled
//     first when the assistant suggests items.
//   - LiveDemo: external demo or location URL.
//   - ImageURL: cover image; the assistant substitutes a placeholder when empty.
type Product struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null;index"`
	NameAr      string         `json:"name_ar"     gorm:"type:varchar(255)"`
	NameDe      string         `json:"name_de"     gorm:"type:varchar(255)"`
	NameFr      string         `json:"name_fr"     gorm:"type:varchar(255)"`
	NameZh      string         `json:"name_zh"     gorm:"type:varchar(255)"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price"`
	Beds        int            `json:"beds"`
	Baths       int            `json:"baths"`
	Area        float64        `json:"area"`
	ItemType    string         `json:"item_type"   gorm:"type:varchar(64)"`
	Status      string         `json:"status"      gorm:"type:varchar(32)"`
	IsFeatured  bool           `json:"is_featured" gorm:"index"`
	LiveDemo    string         `json:"live_demo"   gorm:"type:varchar(512)"`
	ImageURL    string         `json:"image_url"   gorm:"type:varchar(512)"`
	CreatedAt   time.Time      `json:"created_at"  gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Project represents a development project grouping multiple listings.
// Shares the localized-name layout of Product.
type Project struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null;index"`
	NameAr      string         `json:"name_ar"     gorm:"type:varchar(255)"`
	NameDe      string         `json:"name_de"     gorm:"type:varchar(255)"`
	NameFr      string         `json:"name_fr"     gorm:"type:varchar(255)"`
	NameZh      string         `json:"name_zh"     gorm:"type:varchar(255)"`
	Description string         `json:"description" gorm:"type:text"`
	Status      string         `json:"status"      gorm:"type:varchar(32)"`
	IsFeatured  bool           `json:"is_featured" gorm:"index"`
	LiveDemo    string         `json:"live_demo"   gorm:"type:varchar(512)"`
	ImageURL    string         `json:"image_url"   gorm:"type:varchar(512)"`
	CreatedAt   time.Time      `json:"created_at"  gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string { return "projects" }

// Developer represents a real-estate developer or builder profile.
//
// DeveloperName (not Name) is the canonical column, mirroring the upstream
// content source; PhotoURL is preferred over ImageURL when both are set.
type Developer struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	DeveloperName string         `json:"developer_name" gorm:"type:varchar(255);not null;index"`
	NameAr        string         `json:"name_ar"        gorm:"type:varchar(255)"`
	NameDe        string         `json:"name_de"        gorm:"type:varchar(255)"`
	NameFr        string         `json:"name_fr"        gorm:"type:varchar(255)"`
	NameZh        string         `json:"name_zh"        gorm:"type:varchar(255)"`
	Description   string         `json:"description"    gorm:"type:text"`
	PhotoURL      string         `json:"photo_url"      gorm:"type:varchar(512)"`
	ImageURL      string         `json:"image_url"      gorm:"type:varchar(512)"`
	IsFeatured    bool           `json:"is_featured"    gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"     gorm:"index"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Developer.
func (Developer) TableName() string { return "developers" }

// User represents a site member (owner, agent, staff). User lookup is an
// optional capability; when disabled the assistant simply never resolves one.
type User struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null;index"`
	Email     string         `json:"email"      gorm:"type:varchar(255);index"`
	Phone     string         `json:"phone"      gorm:"type:varchar(64)"`
	Role      string         `json:"role"       gorm:"type:varchar(64)"`
	Bio       string         `json:"bio"        gorm:"type:text"`
	PhotoURL  string         `json:"photo_url"  gorm:"type:varchar(512)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// CompanyInfo is a titled, tagged knowledge section about the company.
// Sections are scored against the visitor's message (tag hits weigh triple)
// and the best few are folded into the LLM context.
type CompanyInfo struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Title     string         `json:"title"      gorm:"type:varchar(255);not null"`
	Tags      string         `json:"tags"       gorm:"type:varchar(512)"` // comma-separated
	ContentEN string         `json:"content_en" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for CompanyInfo.
func (CompanyInfo) TableName() string { return "company_info" }

// Entity is the normalized projection of any catalog record, shaped for the
// chat response payload. Name and Image are always non-empty (defaults are
// substituted); URL is empty only when the record has no ID.
type Entity struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Link is a structured deep link attached to a reply. Type names the kind of
// record the link points at ("product", "user").
type Link struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Turn is one utterance of conversation history supplied by the client.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}
