package utils

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// GetMaskedWord renders word as underscores, keeping whitespace and the
// letters at the revealed indices. Indices are rune positions.
func GetMaskedWord(word string, revealed []int) string {
	if word == "" {
		return ""
	}

	runes := []rune(word)
	masked := make([]string, 0, len(runes))
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			masked = append(masked, " ")
		case slices.Contains(revealed, i):
			masked = append(masked, string(r))
		default:
			masked = append(masked, "_")
		}
	}

	return strings.Join(masked, " ")
}

// GenerateID returns a fresh opaque identifier for rooms and connections.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateJoinCode returns a short human typable code for private rooms.
func GenerateJoinCode() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	for range JoinCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return b.String()
}

// IsValidJoinCode checks the shape of a code before any lookup happens.
func IsValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(joinCodeAlphabet, c) {
			return false
		}
	}
	return true
}

// NormalizeJoinCode uppercases and trims user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
