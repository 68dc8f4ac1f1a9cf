package term

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Literal is an RDF literal. Datatype is always set on canonical literals:
// plain literals carry xsd:string and language-tagged ones rdf:langString.
//
// Construct literals with NewLiteral, NewLangLiteral or NewTypedLiteral;
// a zero Datatype is treated as xsd:string wherever terms are compared.
type Literal struct {
	Lexical  string
	Lang     string
	Datatype IRI
}

func (Literal) termNode() {}

// Kind implements Term.
func (Literal) Kind() Kind { return KindLiteral }

// String renders the literal in N-Triples form. xsd:string is implicit.
func (l Literal) String() string {
	l = l.normalize()
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(literalEscaper.Replace(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.Datatype != XSDString:
		b.WriteString("^^")
		b.WriteString(l.Datatype.String())
	}
	return b.String()
}

// NewLiteral returns a plain xsd:string literal.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical, Datatype: XSDString}
}

// NewLangLiteral returns a language-tagged literal. The tag is canonicalized
// to BCP 47 letter case.
func NewLangLiteral(lexical, lang string) Literal {
	if lang == "" {
		return NewLiteral(lexical)
	}
	return Literal{Lexical: lexical, Lang: canonicalLang(lang), Datatype: RDFLangString}
}

// NewTypedLiteral returns a literal with the given datatype. An empty
// datatype yields xsd:string.
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}.normalize()
}

// NewInteger returns an xsd:integer literal.
func NewInteger(v int64) Literal {
	return Literal{Lexical: strconv.FormatInt(v, 10), Datatype: XSDInteger}
}

// NewDecimal returns an xsd:decimal literal in canonical form.
func NewDecimal(r *big.Rat) Literal {
	return Literal{Lexical: formatDecimal(r), Datatype: XSDDecimal}
}

// NewDouble returns an xsd:double literal in canonical form.
func NewDouble(f float64) Literal {
	return Literal{Lexical: formatDouble(f), Datatype: XSDDouble}
}

// NewBoolean returns an xsd:boolean literal.
func NewBoolean(v bool) Literal {
	return Literal{Lexical: strconv.FormatBool(v), Datatype: XSDBoolean}
}

func (l Literal) normalize() Literal {
	if l.Lang != "" {
		l.Lang = canonicalLang(l.Lang)
		l.Datatype = RDFLangString
		return l
	}
	if l.Datatype == "" {
		l.Datatype = XSDString
	}
	return l
}

func canonicalLang(tag string) string {
	t, err := language.Raw.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	return t.String()
}

// NumericKind orders the xsd numeric type promotion chain.
type NumericKind uint8

const (
	NumericInteger NumericKind = iota + 1
	NumericDecimal
	NumericDouble
)

// Numeric is the value of a numeric literal. Integer and Decimal values are
// exact (Rat); Double values use Float.
type Numeric struct {
	Kind  NumericKind
	Rat   *big.Rat
	Float float64
}

// Numeric returns the numeric value of l, or false if l is not a well-formed
// literal of a numeric xsd type.
func (l Literal) Numeric() (Numeric, bool) {
	lex := strings.TrimSpace(l.Lexical)
	switch {
	case integerTypes[l.Datatype]:
		i, ok := new(big.Int).SetString(lex, 10)
		if !ok {
			return Numeric{}, false
		}
		return Numeric{Kind: NumericInteger, Rat: new(big.Rat).SetInt(i)}, true
	case l.Datatype == XSDDecimal:
		if !isDecimalLexical(lex) {
			return Numeric{}, false
		}
		r, ok := new(big.Rat).SetString(lex)
		if !ok {
			return Numeric{}, false
		}
		return Numeric{Kind: NumericDecimal, Rat: r}, true
	case l.Datatype == XSDDouble || l.Datatype == XSDFloat:
		f, ok := parseDouble(lex)
		if !ok {
			return Numeric{}, false
		}
		return Numeric{Kind: NumericDouble, Float: f}, true
	}
	return Numeric{}, false
}

// Float64 returns the value as a float64 regardless of kind.
func (n Numeric) Float64() float64 {
	if n.Kind == NumericDouble {
		return n.Float
	}
	f, _ := n.Rat.Float64()
	return f
}

// Literal converts n back to a canonical literal of its kind.
func (n Numeric) Literal() Literal {
	switch n.Kind {
	case NumericInteger:
		if n.Rat.IsInt() {
			return Literal{Lexical: n.Rat.Num().String(), Datatype: XSDInteger}
		}
		return NewDecimal(n.Rat)
	case NumericDecimal:
		return NewDecimal(n.Rat)
	default:
		return NewDouble(n.Float)
	}
}

func isDecimalLexical(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func parseDouble(s string) (float64, bool) {
	switch s {
	case "INF", "+INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	if strings.ContainsAny(s, "xXpP_") || strings.EqualFold(s, "inf") || strings.EqualFold(s, "infinity") || strings.EqualFold(s, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// formatDecimal renders r in canonical xsd:decimal form: at least one digit
// on each side of the point, no trailing zeros beyond the first fraction digit.
func formatDecimal(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String() + ".0"
	}
	prec := 18
	if exact, ok := terminatingDigits(r.Denom()); ok {
		prec = exact
	}
	s := r.FloatString(prec)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	}
	return s
}

// terminatingDigits returns the number of fraction digits needed to write
// 1/d exactly, if d has no prime factors other than 2 and 5.
func terminatingDigits(d *big.Int) (int, bool) {
	n := new(big.Int).Set(d)
	two, five := big.NewInt(2), big.NewInt(5)
	twos, fives := 0, 0
	mod := new(big.Int)
	for {
		if mod.Mod(n, two).Sign() != 0 {
			break
		}
		n.Quo(n, two)
		twos++
	}
	for {
		if mod.Mod(n, five).Sign() != 0 {
			break
		}
		n.Quo(n, five)
		fives++
	}
	if n.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	return max(twos, fives), true
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	exp = strings.TrimPrefix(exp, "+")
	if strings.HasPrefix(exp, "-") {
		exp = "-" + strings.TrimLeft(exp[1:], "0")
	} else {
		exp = strings.TrimLeft(exp, "0")
	}
	if exp == "" || exp == "-" {
		exp = "0"
	}
	return mant + "E" + exp
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)
