// Package iri implements IRI reference resolution, rebasing between bases,
// and conversion between file URIs and filesystem paths.
//
// All functions operate on the raw reference text. Percent-encoded octets are
// carried through byte-for-byte; nothing is re-encoded or decoded except by
// the path conversions, which decode exactly once.
package iri

import (
	"regexp"
	"strings"
)

// RFC 3986 Appendix B.
var referencePattern = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?$`)

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)

// reference is a parsed IRI reference. The has* flags distinguish an empty
// component from an absent one.
type reference struct {
	scheme       string
	hasScheme    bool
	authority    string
	hasAuthority bool
	path         string
	query        string
	hasQuery     bool
	fragment     string
	hasFragment  bool
}

func parse(s string) (reference, error) {
	if i := strings.IndexFunc(s, isForbidden); i >= 0 {
		return reference{}, newError(KindMalformed, s, "illegal character %q at offset %d", s[i], i)
	}
	if err := checkEscapes(s); err != nil {
		return reference{}, err
	}
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return reference{}, newError(KindMalformed, s, "not an IRI reference")
	}
	r := reference{
		scheme:       m[2],
		hasScheme:    m[1] != "",
		authority:    m[4],
		hasAuthority: m[3] != "",
		path:         m[5],
		query:        m[7],
		hasQuery:     m[6] != "",
		fragment:     m[9],
		hasFragment:  m[8] != "",
	}
	if r.hasScheme && !schemePattern.MatchString(r.scheme) {
		return reference{}, newError(KindMalformed, s, "invalid scheme %q", r.scheme)
	}
	return r, nil
}

func (r reference) String() string {
	var b strings.Builder
	if r.hasScheme {
		b.WriteString(r.scheme)
		b.WriteByte(':')
	}
	if r.hasAuthority {
		b.WriteString("//")
		b.WriteString(r.authority)
	}
	b.WriteString(r.path)
	if r.hasQuery {
		b.WriteByte('?')
		b.WriteString(r.query)
	}
	if r.hasFragment {
		b.WriteByte('#')
		b.WriteString(r.fragment)
	}
	return b.String()
}

// isForbidden reports characters that may not appear unescaped in an IRI.
func isForbidden(r rune) bool {
	if r <= 0x20 || r == 0x7f {
		return true
	}
	return strings.ContainsRune("<>\"{}|\\^`", r)
}

func checkEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
			return newError(KindPercentDecode, s, "malformed percent-escape at offset %d", i)
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// IsAbsolute reports whether ref carries a valid scheme.
func IsAbsolute(ref string) bool {
	r, err := parse(ref)
	return err == nil && r.hasScheme
}

func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
