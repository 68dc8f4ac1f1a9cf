package pattern

import (
	"fmt"
	"strings"

	"github.com/roach88/rdfup/internal/term"
)

// Format renders p as an s-expression, one operator per node:
//
//	(leftjoin (bgp (?s <p> ?o)) (bgp (?s <q> ?x)))
//
// The output is stable and used in logs and golden files.
func Format(p Pattern) string {
	var sb strings.Builder
	formatPattern(&sb, p)
	return sb.String()
}

// FormatExpr renders e as an s-expression.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e)
	return sb.String()
}

func formatPattern(sb *strings.Builder, p Pattern) {
	switch p := p.(type) {
	case *BGP:
		sb.WriteString("(bgp")
		for _, tr := range p.Triples {
			fmt.Fprintf(sb, " (%s %s %s)", slot(tr.S), slot(tr.P), slot(tr.O))
		}
		sb.WriteByte(')')
	case *Join:
		formatBinary(sb, "join", p.Left, p.Right)
	case *Union:
		formatBinary(sb, "union", p.Left, p.Right)
	case *Minus:
		formatBinary(sb, "minus", p.Left, p.Right)
	case *LeftJoin:
		sb.WriteString("(leftjoin ")
		formatPattern(sb, p.Left)
		sb.WriteByte(' ')
		formatPattern(sb, p.Right)
		if p.Expr != nil {
			sb.WriteByte(' ')
			formatExpr(sb, p.Expr)
		}
		sb.WriteByte(')')
	case *Filter:
		sb.WriteString("(filter ")
		formatExpr(sb, p.Expr)
		sb.WriteByte(' ')
		formatPattern(sb, p.Inner)
		sb.WriteByte(')')
	case *Extend:
		sb.WriteString("(extend ")
		formatPattern(sb, p.Inner)
		fmt.Fprintf(sb, " %s ", p.Var)
		formatExpr(sb, p.Expr)
		sb.WriteByte(')')
	case *Graph:
		fmt.Fprintf(sb, "(graph %s ", slot(p.Name))
		formatPattern(sb, p.Inner)
		sb.WriteByte(')')
	case *Values:
		sb.WriteString("(values (")
		for i, v := range p.Vars {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(v.String())
		}
		sb.WriteByte(')')
		for _, row := range p.Rows {
			sb.WriteString(" (")
			for i, cell := range row {
				if i > 0 {
					sb.WriteByte(' ')
				}
				if cell == nil {
					sb.WriteString("UNDEF")
				} else {
					sb.WriteString(cell.String())
				}
			}
			sb.WriteByte(')')
		}
		sb.WriteByte(')')
	case *Empty:
		sb.WriteString("(empty)")
	case nil:
		sb.WriteString("(nil)")
	default:
		fmt.Fprintf(sb, "(%T)", p)
	}
}

func formatBinary(sb *strings.Builder, op string, l, r Pattern) {
	sb.WriteString("(" + op + " ")
	formatPattern(sb, l)
	sb.WriteByte(' ')
	formatPattern(sb, r)
	sb.WriteByte(')')
}

func formatExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *VarExpr:
		sb.WriteString(e.Var.String())
	case *ConstExpr:
		sb.WriteString(slot(e.Value))
	case *CallExpr:
		sb.WriteString("(" + string(e.Func))
		for _, a := range e.Args {
			sb.WriteByte(' ')
			formatExpr(sb, a)
		}
		sb.WriteByte(')')
	case nil:
		sb.WriteString("nil")
	default:
		fmt.Fprintf(sb, "%T", e)
	}
}

func slot(t term.Term) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
