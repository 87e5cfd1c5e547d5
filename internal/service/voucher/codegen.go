package voucher

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"pointsadmin/internal/apperrors"
)

// Character rules selectable per batch
const (
	RuleDigits  = "digits"
	RuleLetters = "letters"
	RuleMixed   = "mixed"
)

const (
	digitAlphabet  = "0123456789"
	letterAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Alphabet resolves a character rule to its alphabet
func Alphabet(rule string) (string, error) {
	switch rule {
	case RuleDigits:
		return digitAlphabet, nil
	case RuleLetters:
		return letterAlphabet, nil
	case RuleMixed:
		return digitAlphabet + letterAlphabet, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCharRule, rule)
	}
}

// randomString draws length characters uniformly from the alphabet using
// crypto/rand, so codes stay unpredictable even as the code space fills up
func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random source error: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out), nil
}
