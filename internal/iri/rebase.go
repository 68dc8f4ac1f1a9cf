package iri

import "strings"

// Rebase moves url from oldBase to newBase: the part of url that follows
// oldBase is resolved against newBase. Percent-escapes, query and fragment
// in that remainder are preserved as written.
//
// Scheme and authority are compared case-insensitively and dot-segments are
// removed from both paths before comparing, so "http://x/a/../b" is not under
// "http://x/a/". The remainder must start on a segment boundary, so
// "http://x/dir" does not reach "http://x/directory". A url outside oldBase
// fails with RebaseUnreachable.
func Rebase(url, oldBase, newBase string) (string, error) {
	u, err := parse(url)
	if err != nil {
		return "", err
	}
	ob, err := parse(oldBase)
	if err != nil {
		return "", err
	}
	nb, err := parse(newBase)
	if err != nil {
		return "", err
	}
	if !u.hasScheme {
		return "", newError(KindMalformed, url, "url is not absolute")
	}
	if !ob.hasScheme || !nb.hasScheme {
		return "", newError(KindMalformed, oldBase+" -> "+newBase, "bases must be absolute")
	}

	nu, nob := normalizedPrefix(u), normalizedPrefix(ob)
	if !strings.HasPrefix(nu, nob) {
		return "", newError(KindRebaseUnreachable, url, "not under %q", oldBase)
	}
	rest := nu[len(nob):]

	if rest != "" && !strings.HasSuffix(nob, "/") && !strings.ContainsRune("/?#", rune(rest[0])) {
		return "", newError(KindRebaseUnreachable, url, "not under %q: remainder %q splits a segment", oldBase, rest)
	}
	if strings.HasPrefix(rest, "/") && !strings.HasSuffix(nob, "/") {
		// oldBase named a directory without its trailing slash.
		rest = rest[1:]
		if !strings.HasSuffix(nb.path, "/") {
			nb.path += "/"
			nb.query, nb.hasQuery = "", false
			nb.fragment, nb.hasFragment = "", false
		}
	}
	if first, _, _ := strings.Cut(rest, "/"); strings.Contains(first, ":") {
		rest = "./" + rest
	}

	r, err := parse(rest)
	if err != nil {
		return "", err
	}
	return resolveParsed(r, nb).String(), nil
}

// normalizedPrefix renders r with scheme and authority lower-cased and
// dot-segments removed from an absolute path. Query and fragment are kept
// as written.
func normalizedPrefix(r reference) string {
	r.scheme = asciiLower(r.scheme)
	r.authority = asciiLower(r.authority)
	if strings.HasPrefix(r.path, "/") {
		r.path = removeDotSegments(r.path)
	}
	return r.String()
}
