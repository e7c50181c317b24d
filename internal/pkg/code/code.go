// Package code generates verification challenge codes.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a challenge code.
const Length = 4

// Generate returns a random numeric code. Leading zeros are preserved,
// so "0042" is a valid result.
func Generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < Length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", Length, n), nil
}
