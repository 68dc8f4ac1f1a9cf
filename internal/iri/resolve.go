package iri

import "strings"

// Resolve resolves ref against base following RFC 3986 section 5.2.
//
// A reference with its own scheme is returned unchanged. Otherwise base must
// be absolute. Query and fragment come from ref, except that an empty
// reference path inherits base's query when ref has none.
func Resolve(ref, base string) (string, error) {
	r, err := parse(ref)
	if err != nil {
		return "", err
	}
	if r.hasScheme {
		return ref, nil
	}
	b, err := parse(base)
	if err != nil {
		return "", err
	}
	if !b.hasScheme {
		return "", newError(KindMalformed, base, "base is not absolute (resolving %q)", ref)
	}
	return resolveParsed(r, b).String(), nil
}

func resolveParsed(r, b reference) reference {
	t := reference{
		scheme:      b.scheme,
		hasScheme:   true,
		fragment:    r.fragment,
		hasFragment: r.hasFragment,
	}
	switch {
	case r.hasAuthority:
		t.authority, t.hasAuthority = r.authority, true
		t.path = removeDotSegments(r.path)
		t.query, t.hasQuery = r.query, r.hasQuery
	case r.path == "":
		t.authority, t.hasAuthority = b.authority, b.hasAuthority
		t.path = b.path
		if r.hasQuery {
			t.query, t.hasQuery = r.query, true
		} else {
			t.query, t.hasQuery = b.query, b.hasQuery
		}
	default:
		t.authority, t.hasAuthority = b.authority, b.hasAuthority
		if strings.HasPrefix(r.path, "/") {
			t.path = removeDotSegments(r.path)
		} else {
			t.path = removeDotSegments(merge(b, r.path))
		}
		t.query, t.hasQuery = r.query, r.hasQuery
	}
	return t
}

// merge implements RFC 3986 section 5.2.3.
func merge(b reference, refPath string) string {
	if b.hasAuthority && b.path == "" {
		return "/" + refPath
	}
	i := strings.LastIndexByte(b.path, '/')
	if i < 0 {
		return refPath
	}
	return b.path[:i+1] + refPath
}

// removeDotSegments implements RFC 3986 section 5.2.4.
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	in := path
	var out []string
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}
