// Package generator produces random passwords and rates passphrase strength.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// DefaultLength is the password length used when Options.Length is zero.
const DefaultLength = 16

// Options controls password generation.
type Options struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Symbols   bool
}

// DefaultOptions returns the standard generation settings: 16 characters
// drawn from all four character classes.
func DefaultOptions() Options {
	return Options{
		Length:    DefaultLength,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Generate produces a random password according to opts. Every selected
// character class is guaranteed to appear at least once. When no class is
// selected the generator falls back to lowercase letters.
func Generate(opts Options) (string, error) {
	length := opts.Length
	if length <= 0 {
		length = DefaultLength
	}

	var pool string
	if opts.Uppercase {
		pool += uppercaseChars
	}
	if opts.Lowercase {
		pool += lowercaseChars
	}
	if opts.Numbers {
		pool += numberChars
	}
	if opts.Symbols {
		pool += symbolChars
	}
	if pool == "" {
		pool = lowercaseChars
		opts = Options{Length: length, Lowercase: true}
	}

	password := make([]byte, length)
	for i := range password {
		c, err := randomChar(pool)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	if err := ensureCharacterTypes(password, opts); err != nil {
		return "", err
	}
	return string(password), nil
}

// ensureCharacterTypes overwrites random positions so that each selected
// class appears at least once. A position claimed for one class is not
// reused for another while free positions remain, so one guarantee cannot
// undo a previous one.
func ensureCharacterTypes(password []byte, opts Options) error {
	classes := []struct {
		enabled bool
		chars   string
	}{
		{opts.Uppercase, uppercaseChars},
		{opts.Lowercase, lowercaseChars},
		{opts.Numbers, numberChars},
		{opts.Symbols, symbolChars},
	}

	claimed := make(map[int]bool)
	for _, class := range classes {
		if !class.enabled || strings.ContainsAny(string(password), class.chars) {
			continue
		}
		pos, err := randomInt(len(password))
		if err != nil {
			return err
		}
		if len(claimed) < len(password) {
			for claimed[pos] {
				pos = (pos + 1) % len(password)
			}
		}
		c, err := randomChar(class.chars)
		if err != nil {
			return err
		}
		password[pos] = c
		claimed[pos] = true
	}
	return nil
}

// memorableWords is the pool used by Memorable.
var memorableWords = []string{
	"apple", "banana", "orange", "grape", "kiwi", "lemon", "peach", "plum",
	"river", "ocean", "mountain", "forest", "desert", "valley", "hill", "lake",
	"tiger", "lion", "eagle", "wolf", "bear", "fox", "deer", "owl",
	"happy", "sunny", "cloudy", "rainy", "windy", "snowy", "warm", "cold",
}

// Memorable generates a password from random dictionary words, optionally
// followed by a number and a symbol. Roughly half the words are capitalized.
func Memorable(wordCount int, includeNumber, includeSymbol bool) (string, error) {
	if wordCount <= 0 {
		wordCount = 4
	}

	var b strings.Builder
	for i := 0; i < wordCount; i++ {
		idx, err := randomInt(len(memorableWords))
		if err != nil {
			return "", err
		}
		word := memorableWords[idx]

		capitalize, err := randomInt(2)
		if err != nil {
			return "", err
		}
		if capitalize == 1 {
			word = strings.ToUpper(word[:1]) + word[1:]
		}
		b.WriteString(word)
	}

	if includeNumber {
		n, err := randomInt(100)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n)
	}

	if includeSymbol {
		c, err := randomChar("!@#$%^&*")
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

// Strength rates a password as "weak", "fair", "good" or "strong" based on
// its length and the variety of character classes it uses.
func Strength(password string) string {
	if len(password) < 8 {
		return "weak"
	}

	variety := 0
	for _, chars := range []string{uppercaseChars, lowercaseChars, numberChars, symbolChars} {
		if strings.ContainsAny(password, chars) {
			variety++
		}
	}

	switch variety {
	case 0, 1:
		return "weak"
	case 2:
		return "fair"
	case 3:
		if len(password) >= 10 {
			return "good"
		}
		return "fair"
	default:
		if len(password) >= 12 {
			return "strong"
		}
		return "good"
	}
}

func randomChar(pool string) (byte, error) {
	idx, err := randomInt(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[idx], nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return int(n.Int64()), nil
}
