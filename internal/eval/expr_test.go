package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

func lit(s string) *pattern.ConstExpr { return pattern.C(term.NewLiteral(s)) }

func num(n int64) *pattern.ConstExpr { return pattern.C(term.NewInteger(n)) }

func dec(a, b int64) *pattern.ConstExpr { return pattern.C(term.NewDecimal(big.NewRat(a, b))) }

func TestEvalExpr(t *testing.T) {
	bound := row("x", term.NewInteger(4), "name", term.NewLangLiteral("héllo", "EN"), "i", iri("thing"))

	tests := []struct {
		name string
		expr pattern.Expr
		want term.Term
	}{
		{"integer add", pattern.Call(pattern.FuncAdd, num(1), num(2)), term.NewInteger(3)},
		{"integer division yields decimal", pattern.Call(pattern.FuncDiv, num(7), num(2)), term.NewDecimal(big.NewRat(7, 2))},
		{"exact division stays decimal", pattern.Call(pattern.FuncDiv, pattern.V("x"), num(2)), term.NewDecimal(big.NewRat(2, 1))},
		{"integer promotes to decimal", pattern.Call(pattern.FuncAdd, num(1), dec(3, 2)), term.NewDecimal(big.NewRat(5, 2))},
		{"decimal promotes to double", pattern.Call(pattern.FuncMul, dec(1, 2), pattern.C(term.NewDouble(4))), term.NewDouble(2)},
		{"negation", pattern.Call(pattern.FuncNeg, pattern.V("x")), term.NewInteger(-4)},
		{"numeric equality across types", pattern.Call(pattern.FuncEq, num(2), dec(2, 1)), trueLit},
		{"string ordering", pattern.Call(pattern.FuncLt, lit("a"), lit("b")), trueLit},
		{"iri equality", pattern.Call(pattern.FuncEq, pattern.V("i"), pattern.C(iri("thing"))), trueLit},
		{"iri inequality", pattern.Call(pattern.FuncNe, pattern.V("i"), pattern.C(iri("other"))), trueLit},
		{"not", pattern.Call(pattern.FuncNot, pattern.C(falseLit)), trueLit},
		{"and masks error when false", pattern.Call(pattern.FuncAnd, pattern.V("missing"), pattern.C(falseLit)), falseLit},
		{"or masks error when true", pattern.Call(pattern.FuncOr, pattern.V("missing"), pattern.C(trueLit)), trueLit},
		{"bound", pattern.Call(pattern.FuncBound, pattern.V("x")), trueLit},
		{"not bound", pattern.Call(pattern.FuncBound, pattern.V("missing")), falseLit},
		{"coalesce skips errors", pattern.Call(pattern.FuncCoalesce, pattern.V("missing"), pattern.Call(pattern.FuncDiv, num(1), num(0)), num(9)), term.NewInteger(9)},
		{"if", pattern.Call(pattern.FuncIf, pattern.Call(pattern.FuncGt, pattern.V("x"), num(3)), lit("big"), lit("small")), term.NewLiteral("big")},
		{"str of iri", pattern.Call(pattern.FuncStr, pattern.V("i")), term.NewLiteral(ex + "thing")},
		{"str of literal", pattern.Call(pattern.FuncStr, pattern.V("x")), term.NewLiteral("4")},
		{"lang", pattern.Call(pattern.FuncLang, pattern.V("name")), term.NewLiteral("en")},
		{"datatype", pattern.Call(pattern.FuncDatatype, pattern.V("x")), term.XSDInteger},
		{"datatype of lang literal", pattern.Call(pattern.FuncDatatype, pattern.V("name")), term.RDFLangString},
		{"strlen counts runes", pattern.Call(pattern.FuncStrlen, pattern.V("name")), term.NewInteger(5)},
		{"ucase keeps language", pattern.Call(pattern.FuncUcase, pattern.V("name")), term.NewLangLiteral("HÉLLO", "en")},
		{"lcase", pattern.Call(pattern.FuncLcase, lit("ABC")), term.NewLiteral("abc")},
		{"concat same language", pattern.Call(pattern.FuncConcat, pattern.V("name"), pattern.C(term.NewLangLiteral("!", "en"))), term.NewLangLiteral("héllo!", "en")},
		{"concat mixed", pattern.Call(pattern.FuncConcat, pattern.V("name"), lit("!")), term.NewLiteral("héllo!")},
		{"isIRI", pattern.Call(pattern.FuncIsIRI, pattern.V("i")), trueLit},
		{"isBlank", pattern.Call(pattern.FuncIsBlank, pattern.C(term.BlankNode("b"))), trueLit},
		{"isLiteral", pattern.Call(pattern.FuncIsLiteral, pattern.V("i")), falseLit},
		{"isNumeric", pattern.Call(pattern.FuncIsNumeric, dec(1, 4)), trueLit},
		{"sameTerm distinguishes lexical forms", pattern.Call(pattern.FuncSameTerm, num(2), dec(2, 1)), falseLit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, pattern.ValidateExpr(tt.expr))
			got, err := EvalExpr(tt.expr, bound)
			require.NoError(t, err)
			assert.Equal(t, term.Key(tt.want), term.Key(got))
		})
	}
}

func TestEvalExpr_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr pattern.Expr
	}{
		{"unbound variable", pattern.V("missing")},
		{"division by zero", pattern.Call(pattern.FuncDiv, num(1), num(0))},
		{"non-numeric arithmetic", pattern.Call(pattern.FuncAdd, lit("a"), num(1))},
		{"ordering iris", pattern.Call(pattern.FuncLt, pattern.C(iri("a")), pattern.C(iri("b")))},
		{"lang of iri", pattern.Call(pattern.FuncLang, pattern.C(iri("a")))},
		{"str of blank", pattern.Call(pattern.FuncStr, pattern.C(term.BlankNode("b")))},
		{"strlen of number", pattern.Call(pattern.FuncStrlen, num(3))},
		{"and with error and true", pattern.Call(pattern.FuncAnd, pattern.V("missing"), pattern.C(trueLit))},
		{"coalesce all errors", pattern.Call(pattern.FuncCoalesce, pattern.V("missing"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvalExpr(tt.expr, term.EmptyBinding)
			assert.Error(t, err)
		})
	}
}

func TestDecimalLexicalForms(t *testing.T) {
	got, err := EvalExpr(pattern.Call(pattern.FuncDiv, num(4), num(2)), term.EmptyBinding)
	require.NoError(t, err)
	assert.Equal(t, "2.0", got.(term.Literal).Lexical)

	got, err = EvalExpr(pattern.Call(pattern.FuncAdd, num(1), dec(1, 2)), term.EmptyBinding)
	require.NoError(t, err)
	assert.Equal(t, "1.5", got.(term.Literal).Lexical)
}

func TestEffectiveBooleanValue(t *testing.T) {
	tests := []struct {
		val  term.Term
		want bool
		err  bool
	}{
		{term.NewBoolean(true), true, false},
		{term.NewInteger(0), false, false},
		{term.NewDouble(0.5), true, false},
		{term.NewLiteral(""), false, false},
		{term.NewLiteral("x"), true, false},
		{iri("x"), false, true},
	}
	for _, tt := range tests {
		got, err := ebv(tt.val)
		if tt.err {
			assert.Error(t, err, tt.val.String())
			continue
		}
		require.NoError(t, err, tt.val.String())
		assert.Equal(t, tt.want, got, tt.val.String())
	}
}
