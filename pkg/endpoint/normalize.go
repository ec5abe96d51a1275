package endpoint

import (
	"regexp"
	"strings"
)

// Kind selects the path namespace a definition lives in.
type Kind int

const (
	// KindHTTP canonicalizes into the /test/ namespace.
	KindHTTP Kind = iota
	// KindWebSocket canonicalizes into the /testws/ namespace.
	KindWebSocket
)

// Prefix returns the canonical root for the namespace.
func (k Kind) Prefix() string {
	if k == KindWebSocket {
		return "/testws/"
	}
	return "/test/"
}

var multiSlash = regexp.MustCompile(`/{2,}`)

// Normalize canonicalizes a user-supplied path fragment into the
// namespace selected by kind. It trims whitespace, strips leading
// slashes and an existing namespace prefix, then re-prefixes with the
// canonical root and collapses runs of slashes. An empty remainder
// yields the bare root (e.g. "/test/").
//
// Normalize is idempotent: Normalize(Normalize(p, k), k) == Normalize(p, k).
func Normalize(raw string, kind Kind) string {
	cleaned := strings.TrimLeft(strings.TrimSpace(raw), "/")
	bare := strings.TrimPrefix(kind.Prefix(), "/") // "test/" or "testws/"
	cleaned = strings.TrimPrefix(cleaned, bare)
	cleaned = strings.TrimLeft(cleaned, "/")
	return multiSlash.ReplaceAllString(kind.Prefix()+cleaned, "/")
}
