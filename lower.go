package dice

import (
	"fmt"
	"strings"
)

// Lower type-checks an AST and produces the typed HIR the optimizer
// and compiler operate on (spec.md §4.2). It resolves function calls
// against the closed set, validates modifier applicability against
// the running pool type, and desugars `rpdice` and `**`.
func Lower(ast Node) (HIRExpr, error) {
	return lowerExpr(ast)
}

func lowerExpr(n Node) (HIRExpr, error) {
	switch v := n.(type) {
	case *IntLit:
		return &HIRNumber{hirBase{v.Span(), KindNumber}, v.Value}, nil
	case *FloatLit:
		return &HIRNumber{hirBase{v.Span(), KindNumber}, truncToInt32(v.Value)}, nil
	case *ListLit:
		items := make([]HIRExpr, 0, len(v.Items))
		for _, it := range v.Items {
			h, err := lowerExpr(it)
			if err != nil {
				return nil, err
			}
			h, err = coerceNumber(h)
			if err != nil {
				return nil, err
			}
			items = append(items, h)
		}
		return &HIRList{hirBase{v.Span(), KindList}, items}, nil
	case *Grouping:
		return lowerExpr(v.Inner)
	case *DiceExpr:
		return lowerDice(v)
	case *UnaryExpr:
		return lowerUnary(v)
	case *BinaryExpr:
		return lowerBinary(v)
	case *Call:
		return lowerCall(v)
	case *FilterCall:
		return lowerFilterCall(v)
	}
	return nil, &InternalError{Message: fmt.Sprintf("lower: unhandled node %T", n)}
}

// coerceNumber collapses a pool operand to Number; Lists have no
// implicit conversion (spec.md §3).
func coerceNumber(h HIRExpr) (HIRExpr, error) {
	switch h.Type() {
	case KindNumber:
		return h, nil
	case KindDicePool, KindSuccessPool:
		return &HIRCollapse{hirBase{h.Span(), KindNumber}, h}, nil
	default:
		return nil, &TypeError{Span: h.Span(), Message: "a List has no implicit conversion to Number"}
	}
}

func lowerUnary(u *UnaryExpr) (HIRExpr, error) {
	inner, err := lowerExpr(u.Inner)
	if err != nil {
		return nil, err
	}
	if inner.Type() == KindList {
		return &HIRUnary{hirBase{u.Span(), KindList}, u.Op, inner}, nil
	}
	inner, err = coerceNumber(inner)
	if err != nil {
		return nil, err
	}
	return &HIRUnary{hirBase{u.Span(), KindNumber}, u.Op, inner}, nil
}

// lowerBinary handles `**`'s list-repeat desugar and arithmetic's
// List-broadcast rules (spec.md §3: "arithmetic between Number and
// List broadcasts element-wise", List+List concatenates).
func lowerBinary(b *BinaryExpr) (HIRExpr, error) {
	if b.Op == TokStarStar {
		left, err := lowerExpr(b.Left)
		if err != nil {
			return nil, err
		}
		if left.Type() != KindList {
			return nil, &TypeError{Span: b.Left.Span(), Message: "** requires a List on its left-hand side"}
		}
		n, ok := foldConstInt(b.Right)
		if !ok {
			return nil, &DesugarError{Span: b.Right.Span(), Message: "** count must be a constant integer"}
		}
		if n <= 0 {
			return nil, &DesugarError{Span: b.Right.Span(), Message: "** count must be a positive integer"}
		}
		return &HIRListRepeat{hirBase{b.Span(), KindList}, left, n}, nil
	}

	left, err := lowerExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := lowerExpr(b.Right)
	if err != nil {
		return nil, err
	}

	leftList, rightList := left.Type() == KindList, right.Type() == KindList
	switch {
	case leftList && rightList:
		if b.Op != TokPlus {
			return nil, &TypeError{Span: b.Span(), Message: fmt.Sprintf("operator %s is not defined between two Lists", b.Op)}
		}
		return &HIRBinary{hirBase{b.Span(), KindList}, b.Op, left, right}, nil
	case leftList:
		right, err = coerceNumber(right)
		if err != nil {
			return nil, err
		}
		return &HIRBinary{hirBase{b.Span(), KindList}, b.Op, left, right}, nil
	case rightList:
		left, err = coerceNumber(left)
		if err != nil {
			return nil, err
		}
		return &HIRBinary{hirBase{b.Span(), KindList}, b.Op, left, right}, nil
	}

	left, err = coerceNumber(left)
	if err != nil {
		return nil, err
	}
	right, err = coerceNumber(right)
	if err != nil {
		return nil, err
	}
	return &HIRBinary{hirBase{b.Span(), KindNumber}, b.Op, left, right}, nil
}

func lowerDice(d *DiceExpr) (HIRExpr, error) {
	var count HIRExpr
	if d.Count != nil {
		c, err := lowerExpr(d.Count)
		if err != nil {
			return nil, err
		}
		c, err = coerceNumber(c)
		if err != nil {
			return nil, err
		}
		count = c
	}

	face := FaceSpec{}
	switch {
	case d.Fate:
		face.Fate = true
	case d.Coin:
		face.Coin = true
	default:
		if n, ok := foldConstInt(d.Face); ok {
			face.Concrete = n
		} else {
			fh, err := lowerExpr(d.Face)
			if err != nil {
				return nil, err
			}
			fh, err = coerceNumber(fh)
			if err != nil {
				return nil, err
			}
			face.Dynamic = fh
		}
	}

	kind := KindDicePool
	mods := make([]Modifier, 0, len(d.Modifiers))
	for _, mn := range d.Modifiers {
		m, newKind, err := lowerModifier(mn, kind)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
		kind = newKind
	}

	return &HIRDice{hirBase{d.Span(), kind}, count, face, mods}, nil
}

func lowerModifier(mn ModifierNode, current Kind) (Modifier, Kind, error) {
	if current == KindDicePool && !mn.Kind.appliesToDicePool() {
		return Modifier{}, current, &TypeError{Span: mn.Span(), Message: fmt.Sprintf("modifier %s does not apply to a dice pool", mn.Kind)}
	}
	if current == KindSuccessPool && !mn.Kind.appliesToSuccessPool() {
		return Modifier{}, current, &TypeError{Span: mn.Span(), Message: fmt.Sprintf("modifier %s does not apply to a success pool", mn.Kind)}
	}

	m := Modifier{Kind: mn.Kind, Compare: mn.Compare}
	switch {
	case mn.Num != nil:
		n, ok := foldConstInt(mn.Num)
		if !ok {
			return Modifier{}, current, &TypeError{Span: mn.Num.Span(), Message: "modifier count must be a constant integer"}
		}
		m.Num = n
	case mn.Kind == ModKeepHigh || mn.Kind == ModKeepLow || mn.Kind == ModDropHigh || mn.Kind == ModDropLow:
		m.Num = 1
	}
	if mn.Target != nil {
		n, ok := foldConstInt(mn.Target)
		if !ok {
			return Modifier{}, current, &TypeError{Span: mn.Target.Span(), Message: "modifier target must be a constant integer"}
		}
		m.Target = n
	} else if mn.Kind == ModExplode || mn.Kind == ModCompound {
		m.UseMaxFace = true
	}
	if mn.LT != nil {
		n, ok := foldConstInt(mn.LT)
		if !ok || n < 0 {
			return Modifier{}, current, &TypeError{Span: mn.LT.Span(), Message: "lt limit must be a non-negative constant integer"}
		}
		m.Limit.LT = n
	}
	if mn.LC != nil {
		n, ok := foldConstInt(mn.LC)
		if !ok || n < 0 {
			return Modifier{}, current, &TypeError{Span: mn.LC.Span(), Message: "lc limit must be a non-negative constant integer"}
		}
		m.Limit.LC = n
	}
	return m, mn.Kind.resultKind(current), nil
}

// buildListArg implements the "takes a list or folds its varargs into
// one" rule shared by sum/avg/len/sort/sortd/max/min/filter: a single
// List argument passes through, anything else is combined into one,
// flattening any List arguments encountered along the way.
func buildListArg(span Span, args []Node) (HIRExpr, error) {
	if len(args) == 1 {
		h, err := lowerExpr(args[0])
		if err != nil {
			return nil, err
		}
		if h.Type() == KindList {
			return h, nil
		}
		h, err = coerceNumber(h)
		if err != nil {
			return nil, err
		}
		return &HIRList{hirBase{span, KindList}, []HIRExpr{h}}, nil
	}

	items := make([]HIRExpr, 0, len(args))
	for _, a := range args {
		h, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		if l, ok := h.(*HIRList); ok {
			items = append(items, l.Items...)
			continue
		}
		h, err = coerceNumber(h)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return &HIRList{hirBase{span, KindList}, items}, nil
}

func lowerCall(c *Call) (HIRExpr, error) {
	name := strings.ToLower(c.Name)
	span := c.Span()

	switch name {
	case "floor", "ceil", "round":
		if len(c.Args) != 1 {
			return nil, &TypeError{Span: span, Message: fmt.Sprintf("%s takes exactly one argument", name)}
		}
		mode := RoundNearest
		switch name {
		case "floor":
			mode = RoundFloor
		case "ceil":
			mode = RoundCeil
		}
		if bin, ok := c.Args[0].(*BinaryExpr); ok && bin.Op == TokSlash {
			left, err := lowerExpr(bin.Left)
			if err != nil {
				return nil, err
			}
			left, err = coerceNumber(left)
			if err != nil {
				return nil, err
			}
			right, err := lowerExpr(bin.Right)
			if err != nil {
				return nil, err
			}
			right, err = coerceNumber(right)
			if err != nil {
				return nil, err
			}
			return &HIRRoundedDiv{hirBase{span, KindNumber}, mode, left, right}, nil
		}
		inner, err := lowerExpr(c.Args[0])
		if err != nil {
			return nil, err
		}
		inner, err = coerceNumber(inner)
		if err != nil {
			return nil, err
		}
		return &HIRCall{hirBase{span, KindNumber}, name, []HIRExpr{inner}}, nil

	case "abs":
		if len(c.Args) != 1 {
			return nil, &TypeError{Span: span, Message: "abs takes exactly one argument"}
		}
		inner, err := lowerExpr(c.Args[0])
		if err != nil {
			return nil, err
		}
		inner, err = coerceNumber(inner)
		if err != nil {
			return nil, err
		}
		return &HIRCall{hirBase{span, KindNumber}, "abs", []HIRExpr{inner}}, nil

	case "sum", "avg", "len":
		if len(c.Args) == 0 {
			return nil, &TypeError{Span: span, Message: fmt.Sprintf("%s takes at least one argument", name)}
		}
		list, err := buildListArg(span, c.Args)
		if err != nil {
			return nil, err
		}
		return &HIRCall{hirBase{span, KindNumber}, name, []HIRExpr{list}}, nil

	case "sort", "sortd":
		if len(c.Args) == 0 {
			return nil, &TypeError{Span: span, Message: fmt.Sprintf("%s takes at least one argument", name)}
		}
		list, err := buildListArg(span, c.Args)
		if err != nil {
			return nil, err
		}
		return &HIRCall{hirBase{span, KindList}, name, []HIRExpr{list}}, nil

	case "max", "min":
		if len(c.Args) == 0 {
			return nil, &TypeError{Span: span, Message: fmt.Sprintf("%s takes at least one argument", name)}
		}
		if len(c.Args) == 2 {
			first, err := lowerExpr(c.Args[0])
			if err != nil {
				return nil, err
			}
			if first.Type() == KindList {
				n, err := lowerExpr(c.Args[1])
				if err != nil {
					return nil, err
				}
				n, err = coerceNumber(n)
				if err != nil {
					return nil, err
				}
				return &HIRCall{hirBase{span, KindList}, name, []HIRExpr{first, n}}, nil
			}
		}
		list, err := buildListArg(span, c.Args)
		if err != nil {
			return nil, err
		}
		return &HIRCall{hirBase{span, KindNumber}, name, []HIRExpr{list}}, nil

	case "tolist":
		if len(c.Args) != 1 {
			return nil, &TypeError{Span: span, Message: "tolist takes exactly one argument"}
		}
		inner, err := lowerExpr(c.Args[0])
		if err != nil {
			return nil, err
		}
		if inner.Type() != KindDicePool && inner.Type() != KindSuccessPool {
			return nil, &TypeError{Span: span, Message: "tolist requires a dice pool or success pool argument"}
		}
		return &HIRToList{hirBase{span, KindList}, inner}, nil

	case "rpdice":
		if len(c.Args) != 1 {
			return nil, &DesugarError{Span: span, Message: "rpdice takes exactly one argument"}
		}
		return lowerExpr(doubleDiceCounts(c.Args[0]))
	}

	return nil, &TypeError{Span: span, Message: fmt.Sprintf("unknown function %q", c.Name)}
}

func lowerFilterCall(f *FilterCall) (HIRExpr, error) {
	if len(f.Args) == 0 {
		return nil, &TypeError{Span: f.Span(), Message: "filter takes at least one argument"}
	}
	var target HIRExpr
	if f.Target != nil {
		t, err := lowerExpr(f.Target)
		if err != nil {
			return nil, err
		}
		t, err = coerceNumber(t)
		if err != nil {
			return nil, err
		}
		target = t
	} else {
		target = &HIRNumber{hirBase{f.Span(), KindNumber}, 0}
	}
	list, err := buildListArg(f.Span(), f.Args)
	if err != nil {
		return nil, err
	}
	return &HIRFilterCall{hirBase{f.Span(), KindList}, f.Compare, target, list}, nil
}

// foldConstInt evaluates the constant-arithmetic subset of the atom
// grammar: integer/float literals, groupings, and +,-,*,/,//,% over
// other constants. Modifier parameters (kh/min/r's target/lt/lc) must
// fold to a constant; dynamic modifier parameters are out of scope
// (only dice count and face may be runtime-dynamic, per spec.md §4.5).
func foldConstInt(n Node) (int32, bool) {
	switch v := n.(type) {
	case *IntLit:
		return v.Value, true
	case *FloatLit:
		return truncToInt32(v.Value), true
	case *Grouping:
		return foldConstInt(v.Inner)
	case *UnaryExpr:
		inner, ok := foldConstInt(v.Inner)
		if !ok {
			return 0, false
		}
		if v.Op == TokMinus {
			return saturateInt32(-int64(inner)), true
		}
		return inner, true
	case *BinaryExpr:
		l, ok := foldConstInt(v.Left)
		if !ok {
			return 0, false
		}
		r, ok := foldConstInt(v.Right)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case TokPlus:
			return saturateInt32(int64(l) + int64(r)), true
		case TokMinus:
			return saturateInt32(int64(l) - int64(r)), true
		case TokStar:
			return saturateInt32(int64(l) * int64(r)), true
		case TokSlash, TokSlashSlash:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case TokPercent:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		}
	}
	return 0, false
}

// doubleDiceCounts is rpdice's structural AST rewrite (spec.md §3):
// every dice node's count is replaced with count*2 (or 1*2 if the
// count was implicit), leaving everything else unchanged.
func doubleDiceCounts(n Node) Node {
	switch v := n.(type) {
	case *ListLit:
		items := make([]Node, len(v.Items))
		for i, it := range v.Items {
			items[i] = doubleDiceCounts(it)
		}
		return &ListLit{v.baseNode, items}
	case *Grouping:
		return &Grouping{v.baseNode, doubleDiceCounts(v.Inner)}
	case *Call:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = doubleDiceCounts(a)
		}
		return &Call{v.baseNode, v.Name, args}
	case *FilterCall:
		var target Node
		if v.Target != nil {
			target = doubleDiceCounts(v.Target)
		}
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = doubleDiceCounts(a)
		}
		return &FilterCall{v.baseNode, v.Compare, target, args}
	case *DiceExpr:
		var count Node
		if v.Count != nil {
			count = doubleDiceCounts(v.Count)
		} else {
			count = &IntLit{baseNode{v.Span()}, 1}
		}
		var doubled Node = &BinaryExpr{baseNode{v.Span()}, TokStar, count, &IntLit{baseNode{v.Span()}, 2}}
		if n, ok := foldConstInt(count); ok {
			doubled = &IntLit{baseNode{v.Span()}, saturateInt32(int64(n) * 2)}
		}
		var face Node
		if v.Face != nil {
			face = doubleDiceCounts(v.Face)
		}
		mods := make([]ModifierNode, len(v.Modifiers))
		for i, m := range v.Modifiers {
			mods[i] = doubleModifierNode(m)
		}
		return &DiceExpr{v.baseNode, doubled, face, v.Fate, v.Coin, mods}
	case *UnaryExpr:
		return &UnaryExpr{v.baseNode, v.Op, doubleDiceCounts(v.Inner)}
	case *BinaryExpr:
		return &BinaryExpr{v.baseNode, v.Op, doubleDiceCounts(v.Left), doubleDiceCounts(v.Right)}
	default:
		return n
	}
}

func doubleModifierNode(m ModifierNode) ModifierNode {
	if m.Num != nil {
		m.Num = doubleDiceCounts(m.Num)
	}
	if m.Target != nil {
		m.Target = doubleDiceCounts(m.Target)
	}
	if m.LT != nil {
		m.LT = doubleDiceCounts(m.LT)
	}
	if m.LC != nil {
		m.LC = doubleDiceCounts(m.LC)
	}
	return m
}
