package shortener_test

import (
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
)

func TestNamespacedHash(t *testing.T) {
	tests := []struct {
		url, owner string
		want       string
	}{
		{"", "", "58"},
		{"", "a", "1895"},
		{"a", "", "3065"},
		{"https://example.com/", "u1", "649874603"},
		{"https://example.com/", "u2", "649874602"},
		{"https://example.org/", "u1", "1490581304"},
		{"https://example.com/", shortener.AnonymousOwner, "22640377"},
		{"https://example.com/übung", "u1", "1024126225"},
		{"😀", "", "54959927"}, // surrogate pair counts as two code units
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shortener.NamespacedHash(tt.url, tt.owner), "hash(%q, %q)", tt.url, tt.owner)
	}
}

func TestNamespacedHash_Properties(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		for range 10 {
			assert.Equal(t, "649874603", shortener.NamespacedHash("https://example.com/", "u1"))
		}
	})

	t.Run("sensitive to owner and url", func(t *testing.T) {
		base := shortener.NamespacedHash("https://example.com/", "u1")

		assert.NotEqual(t, base, shortener.NamespacedHash("https://example.com/", "u2"))
		assert.NotEqual(t, base, shortener.NamespacedHash("https://example.com/x", "u1"))
	})

	t.Run("never negative", func(t *testing.T) {
		for _, s := range []string{"https://a.very.long.example/with/a/path?and=query", "zzzzzzzzzzzzzzzzzz"} {
			assert.NotContains(t, shortener.NamespacedHash(s, "owner"), "-")
		}
	})
}
