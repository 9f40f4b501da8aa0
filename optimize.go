package dice

import (
	dmath "github.com/travis-g/dicelang/math"
)

// Optimize constant-folds and merges homogeneous dice in h to a
// fixpoint (spec.md §4.4): repeated passes until one produces no
// change. Folding preserves the Type of every node it rewrites, and
// merging two bare, unmodified same-face dice pools preserves their
// observable sum distribution.
func Optimize(h HIRExpr) HIRExpr {
	for {
		next, changed := optimizeOnce(h)
		h = next
		if !changed {
			return h
		}
	}
}

func allLiteral(items []HIRExpr) bool {
	for _, it := range items {
		if _, ok := it.(*HIRNumber); !ok {
			return false
		}
	}
	return true
}

func optimizeOnce(h HIRExpr) (HIRExpr, bool) {
	switch v := h.(type) {
	case *HIRNumber:
		return v, false

	case *HIRList:
		changed := false
		items := make([]HIRExpr, len(v.Items))
		for i, it := range v.Items {
			ni, c := optimizeOnce(it)
			items[i] = ni
			changed = changed || c
		}
		if changed {
			return &HIRList{v.hirBase, items}, true
		}
		return v, false

	case *HIRListRepeat:
		list, c := optimizeOnce(v.List)
		if l, ok := list.(*HIRList); ok && allLiteral(l.Items) {
			out := make([]HIRExpr, 0, len(l.Items)*int(v.Count))
			for i := int32(0); i < v.Count; i++ {
				out = append(out, l.Items...)
			}
			return &HIRList{v.hirBase, out}, true
		}
		if c {
			return &HIRListRepeat{v.hirBase, list, v.Count}, true
		}
		return v, false

	case *HIRCollapse:
		inner, c := optimizeOnce(v.Inner)
		if c {
			return &HIRCollapse{v.hirBase, inner}, true
		}
		return v, false

	case *HIRToList:
		inner, c := optimizeOnce(v.Inner)
		if c {
			return &HIRToList{v.hirBase, inner}, true
		}
		return v, false

	case *HIRDice:
		changed := false
		var count HIRExpr
		if v.Count != nil {
			nc, c := optimizeOnce(v.Count)
			count = nc
			changed = changed || c
		}
		face := v.Face
		if face.Dynamic != nil {
			nd, c := optimizeOnce(face.Dynamic)
			face.Dynamic = nd
			changed = changed || c
		}
		if changed {
			return &HIRDice{v.hirBase, count, face, v.Modifiers}, true
		}
		return v, false

	case *HIRUnary:
		inner, c := optimizeOnce(v.Inner)
		if n, ok := inner.(*HIRNumber); ok {
			val := n.Value
			if v.Op == TokMinus {
				val = saturateInt32(-int64(val))
			}
			return &HIRNumber{hirBase{v.span, KindNumber}, val}, true
		}
		if c {
			return &HIRUnary{v.hirBase, v.Op, inner}, true
		}
		return v, false

	case *HIRBinary:
		return optimizeBinary(v)

	case *HIRRoundedDiv:
		return optimizeRoundedDiv(v)

	case *HIRCall:
		return optimizeCall(v)

	case *HIRFilterCall:
		target, c1 := optimizeOnce(v.Target)
		source, c2 := optimizeOnce(v.Source)
		if c1 || c2 {
			return &HIRFilterCall{v.hirBase, v.Compare, target, source}, true
		}
		return v, false
	}
	return h, false
}

func foldBinaryOp(op TokenKind, l, r int32) (int32, bool) {
	switch op {
	case TokPlus:
		return saturateInt32(int64(l) + int64(r)), true
	case TokMinus:
		return saturateInt32(int64(l) - int64(r)), true
	case TokStar:
		return saturateInt32(int64(l) * int64(r)), true
	case TokSlash:
		v, err := dmath.DivTrunc(l, r)
		return v, err == nil
	case TokSlashSlash:
		v, err := dmath.DivFloor(l, r)
		return v, err == nil
	case TokPercent:
		v, err := dmath.Mod(l, r)
		return v, err == nil
	}
	return 0, false
}

func foldListNumber(list *HIRList, num *HIRNumber, op TokenKind, span Span) (*HIRList, bool) {
	items := make([]HIRExpr, len(list.Items))
	for i, it := range list.Items {
		n, ok := it.(*HIRNumber)
		if !ok {
			return nil, false
		}
		val, ok := foldBinaryOp(op, n.Value, num.Value)
		if !ok {
			return nil, false
		}
		items[i] = &HIRNumber{hirBase{n.span, KindNumber}, val}
	}
	return &HIRList{hirBase{span, KindList}, items}, true
}

func optimizeBinary(v *HIRBinary) (HIRExpr, bool) {
	left, c1 := optimizeOnce(v.Left)
	right, c2 := optimizeOnce(v.Right)

	if v.Op == TokPlus {
		if merged, ok := mergeDice(left, right); ok {
			return merged, true
		}
	}

	if v.typ == KindNumber {
		ln, lok := left.(*HIRNumber)
		rn, rok := right.(*HIRNumber)
		if lok && rok {
			if val, ok := foldBinaryOp(v.Op, ln.Value, rn.Value); ok {
				return &HIRNumber{hirBase{v.span, KindNumber}, val}, true
			}
		}
	}

	if v.typ == KindList {
		if ll, ok := left.(*HIRList); ok {
			if rl, ok2 := right.(*HIRList); ok2 && v.Op == TokPlus {
				items := append(append([]HIRExpr{}, ll.Items...), rl.Items...)
				return &HIRList{hirBase{v.span, KindList}, items}, true
			}
			if rn, ok2 := right.(*HIRNumber); ok2 {
				if folded, ok3 := foldListNumber(ll, rn, v.Op, v.span); ok3 {
					return folded, true
				}
			}
		}
		if rl, ok := right.(*HIRList); ok {
			if ln, ok2 := left.(*HIRNumber); ok2 {
				if folded, ok3 := foldListNumber(rl, ln, v.Op, v.span); ok3 {
					return folded, true
				}
			}
		}
	}

	if c1 || c2 {
		return &HIRBinary{v.hirBase, v.Op, left, right}, true
	}
	return v, false
}

func optimizeRoundedDiv(v *HIRRoundedDiv) (HIRExpr, bool) {
	left, c1 := optimizeOnce(v.Left)
	right, c2 := optimizeOnce(v.Right)
	ln, lok := left.(*HIRNumber)
	rn, rok := right.(*HIRNumber)
	if lok && rok {
		var val int32
		var err error
		switch v.Mode {
		case RoundFloor:
			val, err = dmath.DivFloor(ln.Value, rn.Value)
		case RoundCeil:
			val, err = dmath.DivCeil(ln.Value, rn.Value)
		default:
			val, err = dmath.DivNearest(ln.Value, rn.Value)
		}
		if err == nil {
			return &HIRNumber{hirBase{v.span, KindNumber}, val}, true
		}
	}
	if c1 || c2 {
		return &HIRRoundedDiv{v.hirBase, v.Mode, left, right}, true
	}
	return v, false
}

// mergeDice implements spec.md §4.4's homogeneous-dice merge: two
// bare, unmodified, same-face pools summed directly collapse into one
// larger pool with the combined count.
func mergeDice(left, right HIRExpr) (HIRExpr, bool) {
	lc, ok := left.(*HIRCollapse)
	if !ok {
		return nil, false
	}
	rc, ok := right.(*HIRCollapse)
	if !ok {
		return nil, false
	}
	ld, ok := lc.Inner.(*HIRDice)
	if !ok || ld.typ != KindDicePool || len(ld.Modifiers) != 0 {
		return nil, false
	}
	rd, ok := rc.Inner.(*HIRDice)
	if !ok || rd.typ != KindDicePool || len(rd.Modifiers) != 0 {
		return nil, false
	}
	if !sameFace(ld.Face, rd.Face) {
		return nil, false
	}

	lcount := ld.Count
	if lcount == nil {
		lcount = &HIRNumber{hirBase{ld.span, KindNumber}, 1}
	}
	rcount := rd.Count
	if rcount == nil {
		rcount = &HIRNumber{hirBase{rd.span, KindNumber}, 1}
	}

	var count HIRExpr
	if ln, ok := lcount.(*HIRNumber); ok {
		if rn, ok2 := rcount.(*HIRNumber); ok2 {
			count = &HIRNumber{hirBase{ld.span, KindNumber}, saturateInt32(int64(ln.Value) + int64(rn.Value))}
		}
	}
	if count == nil {
		count = &HIRBinary{hirBase{ld.span, KindNumber}, TokPlus, lcount, rcount}
	}

	merged := &HIRDice{hirBase{ld.span, KindDicePool}, count, ld.Face, nil}
	return &HIRCollapse{hirBase{ld.span, KindNumber}, merged}, true
}

func sameFace(a, b FaceSpec) bool {
	if a.Fate != b.Fate || a.Coin != b.Coin {
		return false
	}
	if a.Fate || a.Coin {
		return true
	}
	if a.Dynamic != nil || b.Dynamic != nil {
		return false
	}
	return a.Concrete == b.Concrete
}

func optimizeCall(v *HIRCall) (HIRExpr, bool) {
	changed := false
	args := make([]HIRExpr, len(v.Args))
	for i, a := range v.Args {
		na, c := optimizeOnce(a)
		args[i] = na
		changed = changed || c
	}
	if val, ok := evalConstCall(v.Func, args, v.span); ok {
		return val, true
	}
	if changed {
		return &HIRCall{v.hirBase, v.Func, args}, true
	}
	return v, false
}

// evalConstCall evaluates a closed-set call at compile time when all
// of its arguments have folded to literals.
func evalConstCall(fn string, args []HIRExpr, span Span) (HIRExpr, bool) {
	nums := func(l *HIRList) ([]int32, bool) {
		if !allLiteral(l.Items) {
			return nil, false
		}
		out := make([]int32, len(l.Items))
		for i, it := range l.Items {
			out[i] = it.(*HIRNumber).Value
		}
		return out, true
	}

	switch fn {
	case "abs":
		n, ok := args[0].(*HIRNumber)
		if !ok {
			return nil, false
		}
		return &HIRNumber{hirBase{span, KindNumber}, dmath.Abs(n.Value)}, true

	case "floor", "ceil", "round":
		n, ok := args[0].(*HIRNumber)
		if !ok {
			return nil, false
		}
		return &HIRNumber{hirBase{span, KindNumber}, n.Value}, true

	case "sum", "avg", "len":
		l, ok := args[0].(*HIRList)
		if !ok {
			return nil, false
		}
		xs, ok := nums(l)
		if !ok {
			return nil, false
		}
		var val int32
		switch fn {
		case "sum":
			val = dmath.Sum(xs)
		case "avg":
			val = dmath.Avg(xs)
		case "len":
			val = dmath.Len(xs)
		}
		return &HIRNumber{hirBase{span, KindNumber}, val}, true

	case "sort", "sortd":
		l, ok := args[0].(*HIRList)
		if !ok {
			return nil, false
		}
		xs, ok := nums(l)
		if !ok {
			return nil, false
		}
		var sorted []int32
		if fn == "sort" {
			sorted = dmath.Sort(xs)
		} else {
			sorted = dmath.SortDesc(xs)
		}
		items := make([]HIRExpr, len(sorted))
		for i, x := range sorted {
			items[i] = &HIRNumber{hirBase{span, KindNumber}, x}
		}
		return &HIRList{hirBase{span, KindList}, items}, true

	case "max", "min":
		l, ok := args[0].(*HIRList)
		if !ok {
			return nil, false
		}
		xs, ok := nums(l)
		if !ok {
			return nil, false
		}
		if len(args) == 2 {
			n, ok := args[1].(*HIRNumber)
			if !ok {
				return nil, false
			}
			var picked []int32
			if fn == "max" {
				picked = dmath.TopN(xs, int(n.Value))
			} else {
				picked = dmath.BottomN(xs, int(n.Value))
			}
			items := make([]HIRExpr, len(picked))
			for i, x := range picked {
				items[i] = &HIRNumber{hirBase{span, KindNumber}, x}
			}
			return &HIRList{hirBase{span, KindList}, items}, true
		}
		var val int32
		var err error
		if fn == "max" {
			val, err = dmath.Max(xs)
		} else {
			val, err = dmath.Min(xs)
		}
		if err != nil {
			return nil, false
		}
		return &HIRNumber{hirBase{span, KindNumber}, val}, true
	}
	return nil, false
}
