// Package base62 encodes integers with the 0-9a-zA-Z alphabet.
//
// The alphabet order and the most-significant-digit-first layout are part of
// every alias ever issued, so neither may change.
package base62

import (
	"errors"
	"fmt"
	"math"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the ordered symbol set. Index i encodes digit value i.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const base = uint64(len(Alphabet))

var (
	ErrInvalidCharacter = errors.New("invalid base62 character")
	ErrOverflow         = errors.New("base62 value overflows uint64")
)

// Encode renders n most-significant symbol first. Encode(0) is "0".
func Encode(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}

	var buf [11]byte // 62^11 > 2^64

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode is the inverse of Encode.
func Decode(s string) (uint64, error) {
	var n uint64

	for i := 0; i < len(s); i++ {
		v := digit(s[i])
		if v < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, s[i], i)
		}

		if n > (math.MaxUint64-uint64(v))/base {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}

		n = n*base + uint64(v)
	}

	return n, nil
}

// RandomString returns length symbols drawn uniformly from Alphabet.
func RandomString(length int) string {
	if length <= 0 {
		return ""
	}

	generate, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		// Only reachable with an invalid alphabet or length, both fixed above.
		panic(fmt.Sprintf("base62: random generator: %v", err))
	}

	return generate()
}

func digit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 36
	default:
		return -1
	}
}
