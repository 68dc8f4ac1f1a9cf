package term

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainBinding = "rdfup/binding/v1"
	DomainDelta   = "rdfup/delta/v1"
)

// hashWithDomain computes SHA-256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BindingHash identifies a solution row independent of map iteration order.
func BindingHash(b Binding) (string, error) {
	canonical, err := MarshalCanonical(b)
	if err != nil {
		return "", fmt.Errorf("BindingHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBinding, canonical), nil
}

// DeltaHash identifies the effect of one committed operation. Both sides are
// sorted first, so the hash depends only on the delete and insert sets.
func DeltaHash(deletes, inserts []Quad) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"delete": quadLines(deletes),
		"insert": quadLines(inserts),
	})
	if err != nil {
		return "", fmt.Errorf("DeltaHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDelta, canonical), nil
}

// MustBindingHash is BindingHash for callers that cannot fail: bindings
// only ever hold terms, which always marshal.
func MustBindingHash(b Binding) string {
	h, err := BindingHash(b)
	if err != nil {
		panic(err)
	}
	return h
}

// MustDeltaHash is the panicking form of DeltaHash.
func MustDeltaHash(deletes, inserts []Quad) string {
	h, err := DeltaHash(deletes, inserts)
	if err != nil {
		panic(err)
	}
	return h
}

func quadLines(quads []Quad) []string {
	lines := make([]string, 0, len(quads))
	for _, q := range quads {
		lines = append(lines, q.Canonical().String())
	}
	slices.Sort(lines)
	return slices.Compact(lines)
}
