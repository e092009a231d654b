package generator_test

import (
	"strings"
	"testing"

	"securevault/internal/generator"
)

const (
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	numbers = "0123456789"
	symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

func TestGenerate(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		password, err := generator.Generate(generator.DefaultOptions())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(password) != generator.DefaultLength {
			t.Errorf("length = %d, want %d", len(password), generator.DefaultLength)
		}
		for _, chars := range []string{upper, lower, numbers, symbols} {
			if !strings.ContainsAny(password, chars) {
				t.Errorf("password %q missing a character from %q", password, chars)
			}
		}
	})

	t.Run("12 chars without symbols", func(t *testing.T) {
		password, err := generator.Generate(generator.Options{
			Length:    12,
			Uppercase: true,
			Lowercase: true,
			Numbers:   true,
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(password) != 12 {
			t.Errorf("length = %d, want 12", len(password))
		}
		if strings.ContainsAny(password, symbols) {
			t.Errorf("password %q contains a symbol", password)
		}
		for _, chars := range []string{upper, lower, numbers} {
			if !strings.ContainsAny(password, chars) {
				t.Errorf("password %q missing a character from %q", password, chars)
			}
		}
	})

	t.Run("every class fits in four characters", func(t *testing.T) {
		opts := generator.Options{
			Length:    4,
			Uppercase: true,
			Lowercase: true,
			Numbers:   true,
			Symbols:   true,
		}
		// One position per class; a repeated position would drop a class.
		for i := 0; i < 200; i++ {
			password, err := generator.Generate(opts)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			for _, chars := range []string{upper, lower, numbers, symbols} {
				if !strings.ContainsAny(password, chars) {
					t.Fatalf("password %q missing a character from %q", password, chars)
				}
			}
		}
	})

	t.Run("no classes selected falls back to lowercase", func(t *testing.T) {
		password, err := generator.Generate(generator.Options{Length: 10})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for _, r := range password {
			if r < 'a' || r > 'z' {
				t.Errorf("password %q contains non-lowercase %q", password, r)
			}
		}
	})

	t.Run("zero length uses default", func(t *testing.T) {
		password, err := generator.Generate(generator.Options{Lowercase: true})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(password) != generator.DefaultLength {
			t.Errorf("length = %d, want %d", len(password), generator.DefaultLength)
		}
	})

	t.Run("successive calls differ", func(t *testing.T) {
		first, err := generator.Generate(generator.DefaultOptions())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		second, err := generator.Generate(generator.DefaultOptions())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if first == second {
			t.Error("two generated passwords are identical")
		}
	})
}

func TestMemorable(t *testing.T) {
	t.Run("with number and symbol", func(t *testing.T) {
		password, err := generator.Memorable(4, true, true)
		if err != nil {
			t.Fatalf("Memorable failed: %v", err)
		}
		if !strings.ContainsAny(password, numbers) {
			t.Errorf("password %q missing a number", password)
		}
		if !strings.ContainsAny(password, "!@#$%^&*") {
			t.Errorf("password %q missing a symbol", password)
		}
		// Four words of at least 3 letters each.
		if len(password) < 12 {
			t.Errorf("password %q too short for 4 words", password)
		}
	})

	t.Run("words only", func(t *testing.T) {
		password, err := generator.Memorable(3, false, false)
		if err != nil {
			t.Fatalf("Memorable failed: %v", err)
		}
		if strings.ContainsAny(password, numbers+symbols) {
			t.Errorf("password %q contains a number or symbol", password)
		}
	})
}

func TestStrength(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"short", "weak"},
		{"aaaaaaaaaa", "weak"},
		{"aaaaAAAAaa", "fair"},
		{"aaaAAA111", "fair"},        // three classes but under 10 chars
		{"aaaAAA1111", "good"},       // three classes, 10 chars
		{"aaAA11!!", "good"},         // four classes but under 12 chars
		{"aaAA11!!bbBB", "strong"},   // four classes, 12 chars
		{"Tr0ub4dor&3", "good"},      // four classes, 11 chars
		{"correcthorsebattery", "weak"},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := generator.Strength(tt.password); got != tt.want {
				t.Errorf("Strength(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}
}
