package dice

import "testing"

func TestOptimizeConstantFold(t *testing.T) {
	hir := mustLower(t, "1+2*3")
	opt := Optimize(hir)
	n, ok := opt.(*HIRNumber)
	if !ok || n.Value != 7 {
		t.Fatalf("expected folded HIRNumber{7}, got %#v", opt)
	}
}

func TestOptimizePreservesType(t *testing.T) {
	for _, src := range []string{"1d6+1", "[1,2,3]", "4d6kh3", "max([1,2,3],2)"} {
		hir := mustLower(t, src)
		before := hir.Type()
		after := Optimize(hir).Type()
		if before != after {
			t.Fatalf("%s: type changed under optimization: %s -> %s", src, before, after)
		}
	}
}

func TestOptimizeMergesHomogeneousDice(t *testing.T) {
	hir := mustLower(t, "2d6+2d6")
	opt := Optimize(hir)
	collapse, ok := opt.(*HIRCollapse)
	if !ok {
		t.Fatalf("expected merged dice to collapse to a single pool, got %T", opt)
	}
	dice, ok := collapse.Inner.(*HIRDice)
	if !ok {
		t.Fatalf("expected *HIRDice inside collapse, got %T", collapse.Inner)
	}
	count, ok := dice.Count.(*HIRNumber)
	if !ok || count.Value != 4 {
		t.Fatalf("expected merged count 4, got %#v", dice.Count)
	}
}

func TestOptimizeDoesNotMergeDifferentFaces(t *testing.T) {
	hir := mustLower(t, "2d6+2d8")
	opt := Optimize(hir)
	if _, ok := opt.(*HIRCollapse); ok {
		t.Fatalf("2d6+2d8 must not merge into a single pool, got %#v", opt)
	}
}

func TestOptimizeDoesNotMergeModifiedDice(t *testing.T) {
	hir := mustLower(t, "2d6kh1+2d6")
	opt := Optimize(hir)
	bin, ok := opt.(*HIRBinary)
	if !ok {
		t.Fatalf("expected modified dice additions to stay unmerged, got %T", opt)
	}
	if _, ok := bin.Left.(*HIRCollapse); !ok {
		t.Fatalf("expected left operand to remain a distinct collapse, got %T", bin.Left)
	}
}
