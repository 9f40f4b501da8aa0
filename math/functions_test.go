package math

import "testing"

func TestReductions(t *testing.T) {
	xs := []int32{3, -1, 4, 1, 5}

	if got := Sum(xs); got != 12 {
		t.Errorf("Sum(%v) = %d, want 12", xs, got)
	}
	if got := Avg([]int32{1, 2, 3, 4}); got != 2 {
		t.Errorf("Avg = %d, want 2", got)
	}
	if got := Avg(nil); got != 0 {
		t.Errorf("Avg(nil) = %d, want 0", got)
	}
	if got := Len(xs); got != 5 {
		t.Errorf("Len(%v) = %d, want 5", xs, got)
	}
	if got, err := Max(xs); err != nil || got != 5 {
		t.Errorf("Max(%v) = (%d, %v), want (5, nil)", xs, got, err)
	}
	if got, err := Min(xs); err != nil || got != -1 {
		t.Errorf("Min(%v) = (%d, %v), want (-1, nil)", xs, got, err)
	}
	if _, err := Max(nil); err != ErrEmptyReduction {
		t.Errorf("Max(nil) error = %v, want ErrEmptyReduction", err)
	}
	if _, err := Min(nil); err != ErrEmptyReduction {
		t.Errorf("Min(nil) error = %v, want ErrEmptyReduction", err)
	}
}

func TestAbs(t *testing.T) {
	cases := []struct {
		in, want int32
	}{
		{-1, 1}, {1, 1}, {0, 0}, {-2147483648, 2147483647},
	}
	for _, c := range cases {
		if got := Abs(c.in); got != c.want {
			t.Errorf("Abs(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSortOrders(t *testing.T) {
	xs := []int32{3, 1, 2}
	if got, want := Sort(xs), []int32{1, 2, 3}; !equalSlice(got, want) {
		t.Errorf("Sort(%v) = %v, want %v", xs, got, want)
	}
	if got, want := SortDesc(xs), []int32{3, 2, 1}; !equalSlice(got, want) {
		t.Errorf("SortDesc(%v) = %v, want %v", xs, got, want)
	}
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Errorf("Sort/SortDesc mutated their input: %v", xs)
	}
}

func TestTopBottomN(t *testing.T) {
	xs := []int32{4, 8, 9}
	if got, want := TopN(xs, 2), []int32{8, 9}; !equalSlice(got, want) {
		t.Errorf("TopN(%v, 2) = %v, want %v", xs, got, want)
	}
	if got, want := BottomN(xs, 2), []int32{4, 8}; !equalSlice(got, want) {
		t.Errorf("BottomN(%v, 2) = %v, want %v", xs, got, want)
	}
	if got := TopN(xs, 10); len(got) != len(xs) {
		t.Errorf("TopN with n > len should clamp, got %v", got)
	}
}

func TestDivisionModes(t *testing.T) {
	if got, _ := DivTrunc(7, 2); got != 3 {
		t.Errorf("DivTrunc(7,2) = %d, want 3", got)
	}
	if got, _ := DivTrunc(-7, 2); got != -3 {
		t.Errorf("DivTrunc(-7,2) = %d, want -3", got)
	}
	if got, _ := DivFloor(-7, 2); got != -4 {
		t.Errorf("DivFloor(-7,2) = %d, want -4", got)
	}
	if got, _ := DivCeil(7, 2); got != 4 {
		t.Errorf("DivCeil(7,2) = %d, want 4", got)
	}
	if got, _ := DivNearest(5, 2); got != 3 {
		t.Errorf("DivNearest(5,2) = %d, want 3 (half away from zero)", got)
	}
	if _, err := DivTrunc(1, 0); err != ErrDivByZero {
		t.Errorf("DivTrunc(1,0) error = %v, want ErrDivByZero", err)
	}
	if _, err := Mod(1, 0); err != ErrDivByZero {
		t.Errorf("Mod(1,0) error = %v, want ErrDivByZero", err)
	}
}

func equalSlice(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
