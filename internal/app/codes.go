package app

import (
	"crypto/rand"
	"math/big"

	"github.com/cesargomez89/requestline/internal/constants"
)

// CodeGenerator produces a candidate session code.
type CodeGenerator func() (string, error)

var alphabetSize = big.NewInt(int64(len(constants.SessionCodeAlphabet)))

// RandomCode draws each character uniformly from the code alphabet.
func RandomCode() (string, error) {
	code := make([]byte, constants.SessionCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = constants.SessionCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
