package dice

import "testing"

func mustLower(t *testing.T, source string) HIRExpr {
	t.Helper()
	ast, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	hir, err := Lower(ast)
	if err != nil {
		t.Fatalf("Lower(%q) failed: %v", source, err)
	}
	return hir
}

func TestLowerCoercesDiceToNumber(t *testing.T) {
	hir := mustLower(t, "1d6+1")
	bin, ok := hir.(*HIRBinary)
	if !ok {
		t.Fatalf("expected *HIRBinary, got %T", hir)
	}
	if _, ok := bin.Left.(*HIRCollapse); !ok {
		t.Fatalf("expected dice operand wrapped in HIRCollapse, got %T", bin.Left)
	}
}

func TestLowerRejectsListArithmetic(t *testing.T) {
	_, err := Lower(parseOrFatal(t, "[1,2] + 3 - sum([1,2])"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Lower(parseOrFatal(t, "[1,2] * [3,4]"))
	if err == nil {
		t.Fatalf("expected a TypeError for List * List")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T", err)
	}
}

func parseOrFatal(t *testing.T, source string) Node {
	t.Helper()
	n, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return n
}

func TestLowerModifierApplicabilityError(t *testing.T) {
	// `cs` promotes the pool to a SuccessPool, and only `cs`/`df` apply
	// to a SuccessPool, so `kh` after `cs` is rejected at lowering.
	_, err := Lower(parseOrFatal(t, "4d6cs>=5kh2"))
	if err == nil {
		t.Fatalf("expected a TypeError: kh is not valid on a SuccessPool")
	}
}

func TestLowerRpdiceDoublesCounts(t *testing.T) {
	hir := mustLower(t, "rpdice(1d8+2d6)")
	bin, ok := hir.(*HIRBinary)
	if !ok {
		t.Fatalf("expected *HIRBinary, got %T", hir)
	}
	left := bin.Left.(*HIRCollapse).Inner.(*HIRDice)
	right := bin.Right.(*HIRCollapse).Inner.(*HIRDice)
	if n, ok := left.Count.(*HIRNumber); !ok || n.Value != 2 {
		t.Fatalf("expected left count 2, got %#v", left.Count)
	}
	if n, ok := right.Count.(*HIRNumber); !ok || n.Value != 4 {
		t.Fatalf("expected right count 4, got %#v", right.Count)
	}
}

func TestLowerMaxMinDualOverload(t *testing.T) {
	scalar := mustLower(t, "max(1,2,3)")
	if _, ok := scalar.(*HIRCall); !ok {
		t.Fatalf("expected scalar max to lower to *HIRCall, got %T", scalar)
	}
	if scalar.Type() != KindNumber {
		t.Fatalf("expected scalar max to type as Number, got %s", scalar.Type())
	}

	listForm := mustLower(t, "max([1,2,3], 2)")
	if listForm.Type() != KindList {
		t.Fatalf("expected max(list, n) to type as List, got %s", listForm.Type())
	}
}

func TestLowerFloorOfDivisionIsRoundedDiv(t *testing.T) {
	hir := mustLower(t, "floor(7/2)")
	if _, ok := hir.(*HIRRoundedDiv); !ok {
		t.Fatalf("expected floor(a/b) to lower to *HIRRoundedDiv, got %T", hir)
	}

	identity := mustLower(t, "floor(7)")
	call, ok := identity.(*HIRCall)
	if !ok || call.Func != "floor" {
		t.Fatalf("expected floor(n) to lower to an identity *HIRCall, got %#v", identity)
	}
}

func TestLowerListRepeatRequiresConstant(t *testing.T) {
	hir := mustLower(t, "[1,2] ** 3")
	rep, ok := hir.(*HIRListRepeat)
	if !ok || rep.Count != 3 {
		t.Fatalf("expected HIRListRepeat{Count:3}, got %#v", hir)
	}

	_, err := Lower(parseOrFatal(t, "[1,2] ** sum([1,2])"))
	if _, ok := err.(*DesugarError); !ok {
		t.Fatalf("expected *DesugarError for non-constant repeat count, got %#v", err)
	}

	_, err = Lower(parseOrFatal(t, "[1,2] ** 0"))
	if _, ok := err.(*DesugarError); !ok {
		t.Fatalf("expected *DesugarError for a zero repeat count, got %#v", err)
	}

	_, err = Lower(parseOrFatal(t, "[1,2] ** -1"))
	if _, ok := err.(*DesugarError); !ok {
		t.Fatalf("expected *DesugarError for a negative repeat count, got %#v", err)
	}
}
