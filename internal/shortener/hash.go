package shortener

import (
	"strconv"
	"unicode/utf16"
)

// NamespacedHash folds the UTF-16 code units of url+":"+ownerID into a
// 32-bit polynomial rolling hash (multiplier 31, signed wraparound) and
// returns its absolute value in decimal.
//
// Every deterministic alias ever issued derives from this value, so the
// arithmetic must never change.
func NamespacedHash(url, ownerID string) string {
	var h int32

	for _, unit := range utf16.Encode([]rune(url + ":" + ownerID)) {
		h = h*31 + int32(unit)
	}

	n := int64(h)
	if n < 0 {
		n = -n
	}

	return strconv.FormatInt(n, 10)
}
