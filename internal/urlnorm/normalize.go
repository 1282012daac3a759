// Package urlnorm canonicalizes URLs so equivalent inputs compare byte-equal.
package urlnorm

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

type queryPair struct {
	key, value string
}

// Normalize returns the canonical form of rawURL.
//   - Empty input yields an empty string
//   - Input without a scheme that does not look like a host is returned as is
//   - Input without a scheme that looks like a host gets https://
//   - Scheme and host are lowercased, hosts converted to punycode, default ports removed
//   - Path case is kept; duplicate slashes, dot segments and trailing slashes are removed
//   - Query pairs with empty keys are dropped, the rest sorted by key (stable)
//   - User and password are kept, percent-encoded
//   - Fragment is kept verbatim
//
// Input that fails to parse is returned unchanged.
func Normalize(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	candidate := rawURL
	if !schemePrefix.MatchString(candidate) {
		if !looksLikeHost(candidate) {
			return rawURL
		}

		candidate = "https://" + candidate
	}

	candidate = escapeUserinfo(candidate)

	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return rawURL
	}

	host, ok := normalizeHost(u)
	if !ok {
		return rawURL
	}

	query, ok := normalizeQuery(u.RawQuery)
	if !ok {
		return rawURL
	}

	var b strings.Builder

	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")

	if u.User != nil && u.User.Username() != "" {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}

	b.WriteString(host)
	b.WriteString(normalizePath(u.EscapedPath()))

	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}

	if _, fragment, found := strings.Cut(candidate, "#"); found && fragment != "" {
		b.WriteByte('#')
		b.WriteString(fragment)
	}

	return b.String()
}

// AreEquivalent reports whether a and b normalize to the same string.
func AreEquivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func looksLikeHost(s string) bool {
	return strings.Contains(s, ".") || strings.HasPrefix(strings.ToLower(s), "localhost")
}

// escapeUserinfo percent-encodes the user and password of rawURL, which
// url.Parse rejects when they hold characters such as spaces. Existing
// escapes are decoded first so they are not encoded twice.
func escapeUserinfo(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}

	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}

	at := strings.LastIndex(rest[:end], "@")
	if at < 0 {
		return rawURL
	}

	username, password, hasPassword := strings.Cut(rest[:at], ":")

	info := url.User(unescapeLoose(username))
	if hasPassword {
		info = url.UserPassword(unescapeLoose(username), unescapeLoose(password))
	}

	return scheme + "://" + info.String() + rest[at:]
}

func unescapeLoose(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}

	return s
}

func normalizeHost(u *url.URL) (string, bool) {
	scheme := strings.ToLower(u.Scheme)

	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return "", false
	}

	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	} else if ascii, err := idna.Punycode.ToASCII(hostname); err == nil {
		hostname = ascii
	}

	port := u.Port()
	if port == "" || defaultPorts[scheme] == port {
		return hostname, true
	}

	return hostname + ":" + port, true
}

func normalizePath(escaped string) string {
	if escaped == "" {
		return "/"
	}

	return path.Clean("/" + escaped)
}

// normalizeQuery parses the raw query by hand because url.Values loses the
// relative order of pairs.
func normalizeQuery(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}

	pairs := make([]queryPair, 0, strings.Count(raw, "&")+1)

	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(part, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return "", false
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return "", false
		}

		if key == "" {
			continue
		}

		pairs = append(pairs, queryPair{key: key, value: value})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].key < pairs[j].key
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
	}

	return strings.Join(encoded, "&"), true
}
