package dice

import (
	"fmt"
	"strconv"
)

// closedFunctions is the resolvable function identifier set (spec.md
// §4.2). The parser does not consult it: the filter<cmp> special form
// is matched by name, and every other name is resolved at lowering.
var closedFunctions = map[string]bool{
	"floor": true, "ceil": true, "round": true, "abs": true,
	"max": true, "min": true, "sum": true, "avg": true, "len": true,
	"rpdice": true, "sortd": true, "sort": true, "tolist": true, "filter": true,
}

// Parser is a recursive-descent parser over the grammar in spec.md
// §4.1, following the teacher's ParseNotation in spirit (left-to-right,
// greedy modifier consumption) but building a real tree instead of
// string-replacing a regex match in place.
type Parser struct {
	lex  *Lexer
	tok  Token
	prev Token
}

// Parse parses source into an AST, or returns a *ParseError.
func Parse(source string) (node Node, err error) {
	p := &Parser{lex: NewLexer(source)}
	p.advance()
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	node = p.parseAdditive()
	if p.tok.Kind != TokEOF {
		p.fail(fmt.Sprintf("unexpected trailing input %q", p.tok.Lit))
	}
	return node, nil
}

func (p *Parser) advance() {
	p.prev = p.tok
	p.tok = p.lex.Next()
}

func (p *Parser) fail(msg string) {
	panic(&ParseError{Span: p.tok.Span, Message: msg})
}

func (p *Parser) expect(k TokenKind, what string) Token {
	if p.tok.Kind != k {
		p.fail(fmt.Sprintf("expected %s, got %q", what, p.tok.Lit))
	}
	t := p.tok
	p.advance()
	return t
}

// parseAdditive handles + and - (lowest precedence, spec.md §4.1.6).
func (p *Parser) parseAdditive() Node {
	left := p.parseMultiplicative()
	for p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := p.tok.Kind
		start := left.Span()
		p.advance()
		right := p.parseMultiplicative()
		left = &BinaryExpr{baseNode{Span{start.Start, right.Span().End}}, op, left, right}
	}
	return left
}

// parseMultiplicative handles *, /, //, %, ** (spec.md §4.1.5).
func (p *Parser) parseMultiplicative() Node {
	left := p.parseUnary()
	for p.tok.Kind == TokStar || p.tok.Kind == TokSlash || p.tok.Kind == TokSlashSlash ||
		p.tok.Kind == TokPercent || p.tok.Kind == TokStarStar {
		op := p.tok.Kind
		start := left.Span()
		p.advance()
		right := p.parseUnary()
		left = &BinaryExpr{baseNode{Span{start.Start, right.Span().End}}, op, left, right}
	}
	return left
}

// parseUnary handles prefix +/- (spec.md §4.1.4).
func (p *Parser) parseUnary() Node {
	if p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := p.tok.Kind
		start := p.tok.Span
		p.advance()
		inner := p.parseUnary()
		return &UnaryExpr{baseNode{Span{start.Start, inner.Span().End}}, op, inner}
	}
	return p.parseDiceOrModifiers()
}

// parseDiceOrModifiers parses a count (any atom, including a
// parenthesized subexpression, enabling `(1d6)d8`), then — if a 'd'
// immediately follows — a dice expression and its modifier chain
// (spec.md §4.1.2-3). If no 'd' follows, the count atom is the result.
func (p *Parser) parseDiceOrModifiers() Node {
	start := p.tok.Span
	if p.tok.Kind == TokD {
		return p.parseDiceExprWithCount(start, nil)
	}
	atom := p.parseAtom()
	if p.tok.Kind == TokD {
		return p.parseDiceExprWithCount(start, atom)
	}
	return atom
}

func (p *Parser) parseDiceExprWithCount(start Span, count Node) Node {
	p.advance() // consume 'd'
	die := &DiceExpr{baseNode: baseNode{start}, Count: count}
	switch {
	case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "F"):
		die.Fate = true
		p.advance()
	case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "C"):
		die.Coin = true
		p.advance()
	default:
		die.Face = p.parseAtom()
	}
	die.Modifiers = p.parseModifierChain()
	die.span.End = p.prev.Span.End
	return die
}

// parseModifierChain parses zero or more postfix modifiers, greedily,
// left to right (spec.md §4.3).
func (p *Parser) parseModifierChain() []ModifierNode {
	var mods []ModifierNode
	for {
		if p.tok.Kind != TokIdent && p.tok.Kind != TokBang && p.tok.Kind != TokBangBang {
			return mods
		}
		switch {
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "kh"):
			mods = append(mods, p.parseKeepDrop(ModKeepHigh))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "kl"):
			mods = append(mods, p.parseKeepDrop(ModKeepLow))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "dh"):
			mods = append(mods, p.parseKeepDrop(ModDropHigh))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "dl"):
			mods = append(mods, p.parseKeepDrop(ModDropLow))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "min"):
			mods = append(mods, p.parseClamp(ModMin))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "max"):
			mods = append(mods, p.parseClamp(ModMax))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "r"):
			mods = append(mods, p.parseCompareWithLimit(ModReroll))
		case p.tok.Kind == TokBangBang:
			mods = append(mods, p.parseCompareWithLimit(ModCompound))
		case p.tok.Kind == TokBang:
			mods = append(mods, p.parseCompareWithLimit(ModExplode))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "sf"):
			mods = append(mods, p.parseCompareOnly(ModSuccessFilter))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "df"):
			mods = append(mods, p.parseCompareOnly(ModMarkFailure))
		case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "cs"):
			mods = append(mods, p.parseCompareOnly(ModMarkSuccess))
		default:
			return mods
		}
	}
}

func (p *Parser) parseKeepDrop(kind ModifierKind) ModifierNode {
	start := p.tok.Span
	p.advance()
	var num Node
	if p.tok.Kind == TokInt {
		num = p.parseAtom()
	}
	return ModifierNode{baseNode{Span{start.Start, p.prev.Span.End}}, kind, num, CompareNone, nil, nil, nil}
}

func (p *Parser) parseClamp(kind ModifierKind) ModifierNode {
	start := p.tok.Span
	p.advance()
	target := p.parseAtom()
	return ModifierNode{baseNode{Span{start.Start, target.Span().End}}, kind, nil, CompareEQ, target, nil, nil}
}

// parseCompareWithLimit parses r/!/!! : a comparison + atom, then an
// optional limit clause. For `!`/`!!` the comparison and atom are both
// optional: a totally bare `!` defaults to `= max(face)` (spec.md
// §4.3), resolved once the die's face is known at runtime. `r` always
// requires an explicit atom.
func (p *Parser) parseCompareWithLimit(kind ModifierKind) ModifierNode {
	start := p.tok.Span
	p.advance()

	cmp := CompareEQ
	var target Node
	switch p.tok.Kind {
	case TokEq, TokNeq, TokLe, TokLt, TokGe, TokGt:
		cmp, target = p.parseOptionalCompareAtom()
	case TokInt, TokFloat, TokLBracket, TokLParen, TokLBrace, TokD:
		target = p.parseAtom()
	case TokIdent:
		if !eqFold(p.tok.Lit, "lt") && !eqFold(p.tok.Lit, "lc") {
			target = p.parseAtom()
		}
	}
	if target == nil && kind == ModReroll {
		p.fail("r requires a comparison")
	}

	mn := ModifierNode{baseNode{Span{start.Start, p.prev.Span.End}}, kind, nil, cmp, target, nil, nil}
	for p.tok.Kind == TokIdent && (eqFold(p.tok.Lit, "lt") || eqFold(p.tok.Lit, "lc")) {
		if !modifierAllowsLimit(kind) {
			p.fail("limit only valid on r, !, or !!")
		}
		isLT := eqFold(p.tok.Lit, "lt")
		p.advance()
		atom := p.parseAtom()
		if isLT {
			mn.LT = atom
		} else {
			mn.LC = atom
		}
	}
	mn.span.End = p.prev.Span.End
	return mn
}

func (p *Parser) parseCompareOnly(kind ModifierKind) ModifierNode {
	start := p.tok.Span
	p.advance()
	cmp, target := p.parseOptionalCompareAtom()
	return ModifierNode{baseNode{Span{start.Start, p.prev.Span.End}}, kind, nil, cmp, target, nil, nil}
}

// parseOptionalCompareAtom parses `[cmp]atom`. A bare atom implies
// `=atom` (spec.md §4.1).
func (p *Parser) parseOptionalCompareAtom() (CompareOp, Node) {
	cmp := CompareEQ
	switch p.tok.Kind {
	case TokEq:
		cmp = CompareEQ
		p.advance()
	case TokNeq:
		cmp = CompareNE
		p.advance()
	case TokLe:
		cmp = CompareLE
		p.advance()
	case TokLt:
		cmp = CompareLT
		p.advance()
	case TokGe:
		cmp = CompareGE
		p.advance()
	case TokGt:
		cmp = CompareGT
		p.advance()
	}
	target := p.parseAtom()
	return cmp, target
}

func modifierAllowsLimit(kind ModifierKind) bool {
	return kind == ModReroll || kind == ModExplode || kind == ModCompound
}

// parseAtom handles spec.md §4.1.1: literals, lists, groupings, and
// function calls (including the filter<cmp> special form).
func (p *Parser) parseAtom() Node {
	start := p.tok.Span
	switch p.tok.Kind {
	case TokInt:
		v, err := strconv.ParseInt(p.tok.Lit, 10, 64)
		if err != nil {
			p.fail("invalid integer literal " + quote(p.tok.Lit))
		}
		p.advance()
		return &IntLit{baseNode{start}, saturateInt32(v)}
	case TokFloat:
		v, err := strconv.ParseFloat(p.tok.Lit, 64)
		if err != nil {
			p.fail("invalid float literal " + quote(p.tok.Lit))
		}
		p.advance()
		return &FloatLit{baseNode{start}, v}
	case TokLBracket:
		return p.parseListLit()
	case TokLParen, TokLBrace:
		closing := TokRParen
		if p.tok.Kind == TokLBrace {
			closing = TokRBrace
		}
		p.advance()
		inner := p.parseAdditive()
		end := p.expect(closing, "closing bracket")
		return &Grouping{baseNode{Span{start.Start, end.Span.End}}, inner}
	case TokIdent:
		return p.parseIdentOrCall(start)
	case TokD:
		// A bare 'd' with implicit count of 1.
		return p.parseDiceExprFromD(start)
	}
	p.fail("unexpected token " + quote(p.tok.Lit))
	return nil
}

func (p *Parser) parseDiceExprFromD(start Span) Node {
	p.advance()
	die := &DiceExpr{baseNode: baseNode{start}}
	switch {
	case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "F"):
		die.Fate = true
		p.advance()
	case p.tok.Kind == TokIdent && eqFold(p.tok.Lit, "C"):
		die.Coin = true
		p.advance()
	default:
		die.Face = p.parseAtom()
	}
	die.Modifiers = p.parseModifierChain()
	die.span.End = p.prev.Span.End
	return die
}

func (p *Parser) parseListLit() Node {
	start := p.tok.Span
	p.advance() // consume '['
	var items []Node
	if p.tok.Kind != TokRBracket {
		items = append(items, p.parseAdditive())
		for p.tok.Kind == TokComma {
			p.advance()
			items = append(items, p.parseAdditive())
		}
	}
	end := p.expect(TokRBracket, "]")
	return &ListLit{baseNode{Span{start.Start, end.Span.End}}, items}
}

func (p *Parser) parseIdentOrCall(start Span) Node {
	name := p.tok.Lit
	p.advance()

	// filter<cmp><atom>(args) special form.
	if eqFold(name, "filter") {
		cmp, target := CompareEQ, Node(nil)
		switch p.tok.Kind {
		case TokEq, TokNeq, TokLe, TokLt, TokGe, TokGt:
			cmp, target = p.parseOptionalCompareAtom()
		}
		args := p.parseArgList()
		end := p.prev.Span.End
		return &FilterCall{baseNode{Span{start.Start, end}}, cmp, target, args}
	}

	if p.tok.Kind != TokLParen {
		p.fail("unknown identifier " + quote(name))
	}
	args := p.parseArgList()
	return &Call{baseNode{Span{start.Start, p.prev.Span.End}}, name, args}
}

func (p *Parser) parseArgList() []Node {
	p.expect(TokLParen, "(")
	var args []Node
	if p.tok.Kind != TokRParen {
		args = append(args, p.parseAdditive())
		for p.tok.Kind == TokComma {
			p.advance()
			args = append(args, p.parseAdditive())
		}
	}
	p.expect(TokRParen, ")")
	return args
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

