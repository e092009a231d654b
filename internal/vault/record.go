package vault

import (
	"strings"
	"time"
)

// Category classifies a credential for filtering. It is a closed set:
// unknown values parse to CategoryOther.
type Category string

const (
	CategoryLogins   Category = "logins"
	CategoryBanking  Category = "banking"
	CategoryEmail    Category = "email"
	CategoryShopping Category = "shopping"
	CategorySocial   Category = "social"
	CategoryWork     Category = "work"
	CategoryOther    Category = "other"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryLogins,
		CategoryBanking,
		CategoryEmail,
		CategoryShopping,
		CategorySocial,
		CategoryWork,
		CategoryOther,
	}
}

// ParseCategory maps a raw string to a Category, ignoring case and
// surrounding whitespace and falling back to CategoryOther for unknown or
// empty input.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Credential is one saved secret. ID and CreatedAt are assigned by the Store
// at creation and never change; LastModified is bumped on every update.
// Credentials are only ever mutated through the Store.
type Credential struct {
	ID           string    `json:"id"`
	SiteName     string    `json:"siteName"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	URL          string    `json:"url,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Category     Category  `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// CredentialInput carries the caller-supplied fields for Add and Update.
// Identity and timestamps are owned by the Store.
type CredentialInput struct {
	SiteName string
	Username string
	Password string
	URL      string
	Notes    string
	Category Category
}
