package vault_test

import (
	"testing"

	"securevault/internal/vault"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want vault.Category
	}{
		{"logins", vault.CategoryLogins},
		{"banking", vault.CategoryBanking},
		{"email", vault.CategoryEmail},
		{"shopping", vault.CategoryShopping},
		{"social", vault.CategorySocial},
		{"work", vault.CategoryWork},
		{"other", vault.CategoryOther},
		{"Banking", vault.CategoryBanking},
		{"  work  ", vault.CategoryWork},
		{"", vault.CategoryOther},
		{"no-such-category", vault.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := vault.ParseCategory(tt.in); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	categories := vault.Categories()
	if len(categories) != 7 {
		t.Fatalf("got %d categories, want 7", len(categories))
	}
	if categories[0] != vault.CategoryLogins {
		t.Errorf("first category = %q, want %q", categories[0], vault.CategoryLogins)
	}
	if categories[len(categories)-1] != vault.CategoryOther {
		t.Errorf("last category = %q, want %q", categories[len(categories)-1], vault.CategoryOther)
	}
}
