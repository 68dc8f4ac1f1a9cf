package compiler

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/term"
)

// DefaultPrefixes are available in every document unless overridden.
var DefaultPrefixes = map[string]string{
	"rdf":  term.RDFNamespace,
	"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":  term.XSDNamespace,
}

// bareSchemes are schemes accepted without angle brackets when no prefix
// of the same name is declared.
var bareSchemes = map[string]bool{
	"http": true, "https": true, "urn": true, "file": true, "mailto": true,
}

// termParser turns term strings into terms. Relative IRIs resolve against
// base.
type termParser struct {
	base     string
	prefixes map[string]string
}

// ParseTerm parses s in request term syntax, outside of any document.
func ParseTerm(s, base string, prefixes map[string]string) (term.Term, error) {
	return (&termParser{base: base, prefixes: prefixes}).parse(s)
}

// parseValue converts a CUE value into a term. Strings use the term syntax;
// ints, floats and bools become typed literals; null is no term.
func (tp *termParser) parseValue(field string, v cue.Value) (term.Term, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t, err := tp.parse(s)
		if err != nil {
			return nil, compileErr(field, v.Pos(), "%v", err)
		}
		return t, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return term.NewInteger(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
		if !ok {
			return term.NewDouble(f), nil
		}
		return term.NewDecimal(r), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return term.NewBoolean(b), nil
	case cue.NullKind:
		return nil, nil
	}
	return nil, compileErr(field, v.Pos(), "expected a term, got %v", v.IncompleteKind())
}

// parseIRIValue is parseValue restricted to IRIs.
func (tp *termParser) parseIRIValue(field string, v cue.Value) (term.IRI, error) {
	t, err := tp.parseValue(field, v)
	if err != nil {
		return "", err
	}
	i, ok := t.(term.IRI)
	if !ok {
		return "", compileErr(field, v.Pos(), "expected an IRI, got %v", t)
	}
	return i, nil
}

func syntaxErr(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// parse reads one term in the compact syntax:
//
//	?v $v                 variable
//	<iri>                 IRI, resolved against the base
//	prefix:local          prefixed name
//	a                     rdf:type
//	_:label               blank node
//	"lex" "lex"@en "lex"^^<dt> "lex"^^xsd:int
func (tp *termParser) parse(s string) (term.Term, error) {
	switch {
	case s == "":
		return nil, syntaxErr("empty term")
	case s == "a":
		return term.RDFType, nil
	case s[0] == '?' || s[0] == '$':
		name := s[1:]
		if !validVarName(name) {
			return nil, syntaxErr("invalid variable %q", s)
		}
		return term.Variable(name), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return nil, syntaxErr("blank node without a label")
		}
		return term.BlankNode(s[2:]), nil
	case s[0] == '<':
		if !strings.HasSuffix(s, ">") {
			return nil, syntaxErr("unterminated IRI %q", s)
		}
		return tp.resolve(s[1 : len(s)-1])
	case s[0] == '"':
		return tp.parseLiteral(s)
	}
	return tp.expandName(s)
}

func (tp *termParser) resolve(ref string) (term.IRI, error) {
	if tp.base == "" {
		if !iri.IsAbsolute(ref) {
			return "", syntaxErr("relative IRI <%s> without a base", ref)
		}
		// Still parse it, so malformed IRIs are rejected here.
		if _, err := iri.Resolve(ref, ref); err != nil {
			return "", err
		}
		return term.IRI(ref), nil
	}
	out, err := iri.Resolve(ref, tp.base)
	if err != nil {
		return "", err
	}
	return term.IRI(out), nil
}

func (tp *termParser) expandName(s string) (term.IRI, error) {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return "", syntaxErr("cannot parse term %q", s)
	}
	if ns, known := tp.prefixes[prefix]; known {
		return term.IRI(ns + local), nil
	}
	if bareSchemes[strings.ToLower(prefix)] {
		return tp.resolve(s)
	}
	return "", syntaxErr("unknown prefix %q", prefix)
}

func (tp *termParser) parseLiteral(s string) (term.Term, error) {
	lex, rest, err := unquote(s)
	if err != nil {
		return nil, err
	}
	switch {
	case rest == "":
		return term.NewLiteral(lex), nil
	case strings.HasPrefix(rest, "@"):
		if len(rest) == 1 {
			return nil, syntaxErr("empty language tag in %s", s)
		}
		return term.NewLangLiteral(lex, rest[1:]), nil
	case strings.HasPrefix(rest, "^^"):
		dt, err := tp.parse(rest[2:])
		if err != nil {
			return nil, err
		}
		dtIRI, ok := dt.(term.IRI)
		if !ok {
			return nil, syntaxErr("datatype of %s is not an IRI", s)
		}
		return term.NewTypedLiteral(lex, dtIRI), nil
	}
	return nil, syntaxErr("unexpected %q after literal", rest)
}

// unquote reads a double-quoted string with N-Triples escapes from the start
// of s and returns the decoded text and whatever follows the closing quote.
func unquote(s string) (string, string, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", syntaxErr("dangling escape in %s", s)
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteByte(s[i])
			default:
				return "", "", syntaxErr("unknown escape \\%c in %s", s[i], s)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", syntaxErr("unterminated literal %s", s)
}

func validVarName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') && r < 0x80 {
			return false
		}
	}
	return true
}

// parseVar reads a term string that must be a variable.
func (tp *termParser) parseVar(field string, v cue.Value) (term.Variable, error) {
	t, err := tp.parseValue(field, v)
	if err != nil {
		return "", err
	}
	tv, ok := t.(term.Variable)
	if !ok {
		return "", compileErr(field, v.Pos(), "expected a variable, got %v", t)
	}
	return tv, nil
}
