package iri

import (
	"fmt"
	"net/url"
	"strings"
)

// PathFlavor selects the filesystem path convention for file URI
// conversion. It is always explicit; nothing here inspects the host OS.
type PathFlavor uint8

const (
	Posix PathFlavor = iota + 1
	Windows
)

func (f PathFlavor) String() string {
	switch f {
	case Posix:
		return "posix"
	case Windows:
		return "windows"
	default:
		return fmt.Sprintf("flavor(%d)", uint8(f))
	}
}

// ParsePathFlavor parses "posix" or "windows" (case-insensitive).
func ParsePathFlavor(s string) (PathFlavor, error) {
	switch asciiLower(s) {
	case "posix":
		return Posix, nil
	case "windows":
		return Windows, nil
	default:
		return 0, fmt.Errorf("unknown path flavor %q: must be posix or windows", s)
	}
}

// FileURIToPath converts a file URI to a filesystem path of the given flavor.
// Each path segment is percent-decoded exactly once.
//
// Posix: the URI must be rooted (file:///...) and carry no authority.
//
// Windows: a drive letter, written "C:" or "C%3A", may appear as the first
// segment after the root (file:///C:/x) or directly after the scheme
// (file:c:/x). In both forms the slash before the drive is dropped and
// separators become backslashes. A host other than localhost yields a UNC
// path (\\host\share\...).
func FileURIToPath(uri string, flavor PathFlavor) (string, error) {
	r, err := parse(uri)
	if err != nil {
		return "", err
	}
	if !r.hasScheme || asciiLower(r.scheme) != "file" {
		return "", newError(KindMalformed, uri, "not a file URI")
	}

	switch flavor {
	case Posix:
		return posixPath(uri, r)
	case Windows:
		return windowsPath(uri, r)
	default:
		return "", newError(KindMalformed, uri, "unknown path flavor %v", flavor)
	}
}

func posixPath(uri string, r reference) (string, error) {
	if r.hasAuthority && r.authority != "" {
		return "", newError(KindUnsupportedAuthority, uri, "authority %q cannot be addressed as a POSIX path", r.authority)
	}
	if !strings.HasPrefix(r.path, "/") {
		return "", newError(KindMalformed, uri, "file URI path is not rooted")
	}
	segments, err := decodeSegments(uri, r.path[1:])
	if err != nil {
		return "", err
	}
	return "/" + strings.Join(segments, "/"), nil
}

func windowsPath(uri string, r reference) (string, error) {
	host := ""
	if r.hasAuthority && r.authority != "" && asciiLower(r.authority) != "localhost" {
		host = r.authority
	}

	rooted := strings.HasPrefix(r.path, "/")
	rest := r.path
	if rooted {
		rest = rest[1:]
	}
	segments, err := decodeSegments(uri, rest)
	if err != nil {
		return "", err
	}

	if host != "" {
		if strings.ContainsAny(host, "@:") {
			return "", newError(KindUnsupportedAuthority, uri, "authority %q is not a UNC host", host)
		}
		return `\\` + host + `\` + strings.Join(segments, `\`), nil
	}
	if len(segments) > 0 && isDrive(segments[0]) {
		return strings.Join(segments, `\`), nil
	}
	if !rooted {
		return "", newError(KindMalformed, uri, "rootless file URI without a drive letter")
	}
	return `\` + strings.Join(segments, `\`), nil
}

func decodeSegments(uri, path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw := strings.Split(path, "/")
	out := make([]string, len(raw))
	for i, seg := range raw {
		dec, err := url.PathUnescape(seg)
		if err != nil {
			return nil, newError(KindPercentDecode, uri, "segment %q: %v", seg, err)
		}
		out[i] = dec
	}
	return out, nil
}

func isDrive(seg string) bool {
	if len(seg) != 2 || seg[1] != ':' {
		return false
	}
	c := seg[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// PathToFileURI converts an absolute filesystem path to a file URI. Each
// segment is percent-encoded.
func PathToFileURI(path string, flavor PathFlavor) (string, error) {
	switch flavor {
	case Posix:
		if !strings.HasPrefix(path, "/") {
			return "", newError(KindMalformed, path, "path is not absolute")
		}
		return "file://" + encodeSegments(strings.Split(path, "/")), nil
	case Windows:
		p := strings.ReplaceAll(path, "/", `\`)
		if strings.HasPrefix(p, `\\`) {
			parts := strings.Split(p[2:], `\`)
			if parts[0] == "" {
				return "", newError(KindMalformed, path, "UNC path without host")
			}
			return "file://" + parts[0] + encodeSegments(append([]string{""}, parts[1:]...)), nil
		}
		parts := strings.Split(p, `\`)
		if !isDrive(parts[0]) {
			return "", newError(KindMalformed, path, "path has no drive letter")
		}
		return "file://" + encodeSegments(append([]string{""}, parts...)), nil
	default:
		return "", newError(KindMalformed, path, "unknown path flavor %v", flavor)
	}
}

func encodeSegments(segments []string) string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		if i > 0 || seg != "" {
			out[i] = url.PathEscape(seg)
		}
	}
	return strings.Join(out, "/")
}
