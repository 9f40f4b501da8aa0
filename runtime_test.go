package dice

import (
	"context"
	"testing"
)

// scriptedRNG draws a fixed sequence of values in order, ignoring the
// requested face. Tests use it to pin down exactly which rounds and
// draws a runtime run consumes, instead of guessing a math/rand seed
// that happens to produce the right sequence.
type scriptedRNG struct {
	values []int32
	i      int
}

func (s *scriptedRNG) Draw(face DieFace) (int32, error) {
	if s.i >= len(s.values) {
		return 1, nil
	}
	v := s.values[s.i]
	s.i++
	return v, nil
}

func mustRun(t *testing.T, source string, opts Options, rng RNG) *Result {
	t.Helper()
	prog, err := Validate(source, opts)
	if err != nil {
		t.Fatalf("Validate(%q) failed: %v", source, err)
	}
	res, err := Run(context.Background(), prog.Graph, opts, rng)
	if err != nil {
		t.Fatalf("Run(%q) failed: %v", source, err)
	}
	return res
}

func TestRunDeterministicForFixedSeed(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	a := mustRun(t, "4d6kh3", opts, NewMathRand(42))
	b := mustRun(t, "4d6kh3", opts, NewMathRand(42))
	if a.Value.(Number).Value != b.Value.(Number).Value {
		t.Fatalf("same seed produced different results: %d vs %d",
			a.Value.(Number).Value, b.Value.(Number).Value)
	}
	if a.RoundsUsed != b.RoundsUsed || a.DiceDrawn != b.DiceDrawn {
		t.Fatalf("same seed produced different accounting: %+v vs %+v", a, b)
	}
}

func TestRunDiceCountLimitExceeded(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 2}
	_, err := Validate("5d6", opts)
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	prog, _ := Validate("5d6", opts)
	_, err = Run(context.Background(), prog.Graph, opts, &scriptedRNG{values: []int32{1, 2, 3, 4, 5}})
	le, ok := err.(*LimitExceededError)
	if !ok {
		t.Fatalf("expected *LimitExceededError, got %#v", err)
	}
	if le.Kind != LimitDiceCount || le.Limit != 2 {
		t.Fatalf("expected dice_count limit of 2, got %+v", le)
	}
}

func TestRunInitialDrawIsOneRound(t *testing.T) {
	// A bare N-die pool's entire first draw spends exactly one round,
	// not one round per die (spec.md §4.6.a).
	opts := Options{RecursionLimit: 1, DiceCountLimit: 100}
	res := mustRun(t, "5d6", opts, &scriptedRNG{values: []int32{1, 2, 3, 4, 5}})
	if res.RoundsUsed != 1 {
		t.Fatalf("expected RoundsUsed == 1 for a single 5-die draw, got %d", res.RoundsUsed)
	}
	if res.DiceDrawn != 5 {
		t.Fatalf("expected DiceDrawn == 5, got %d", res.DiceDrawn)
	}
}

func TestRunRecursionLimitExceededOnReroll(t *testing.T) {
	// 1d6r<8 always matches (every face is <8), so every round rerolls
	// the one die forever. With RecursionLimit 5: round 1 is the
	// initial draw, rounds 2-5 are four reroll waves, and the fifth
	// reroll attempt (round 6) is the one that trips the limit.
	opts := Options{RecursionLimit: 5, DiceCountLimit: 1000}
	rng := &scriptedRNG{values: []int32{6, 5, 4, 3, 2, 1}}
	prog, err := Validate("1d6r<8", opts)
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	_, err = Run(context.Background(), prog.Graph, opts, rng)
	le, ok := err.(*LimitExceededError)
	if !ok {
		t.Fatalf("expected *LimitExceededError, got %#v", err)
	}
	if le.Kind != LimitRounds || le.Limit != 5 {
		t.Fatalf("expected rounds limit of 5, got %+v", le)
	}
	// 5 rounds' worth of draws were made before the 6th round failed:
	// the initial draw plus 4 reroll waves, one die each.
	if rng.i != 5 {
		t.Fatalf("expected 5 draws before the limit tripped, got %d", rng.i)
	}
}

func TestRunRejectsZeroRecursionLimit(t *testing.T) {
	prog, err := Validate("1d6", Options{DiceCountLimit: 10})
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	_, err = Run(context.Background(), prog.Graph, Options{DiceCountLimit: 10}, NewMathRand(1))
	le, ok := err.(*LimitExceededError)
	if !ok {
		t.Fatalf("expected *LimitExceededError for a zero RecursionLimit, got %#v", err)
	}
	if le.Kind != LimitRounds || le.Limit != 0 {
		t.Fatalf("expected a rounds limit of 0, got %+v", le)
	}
}

func TestRunRejectsZeroDiceCountLimit(t *testing.T) {
	prog, err := Validate("1d6", Options{RecursionLimit: 10})
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	_, err = Run(context.Background(), prog.Graph, Options{RecursionLimit: 10}, NewMathRand(1))
	le, ok := err.(*LimitExceededError)
	if !ok {
		t.Fatalf("expected *LimitExceededError for a zero DiceCountLimit, got %#v", err)
	}
	if le.Kind != LimitDiceCount || le.Limit != 0 {
		t.Fatalf("expected a dice_count limit of 0, got %+v", le)
	}
}

func TestRunBatchesIndependentDiceSourcesIntoOneRound(t *testing.T) {
	// max([1d6,2d6,3d6], 2): three dice-sources with no dependency
	// between them must draw together in round 1, not one round per
	// sibling. With RecursionLimit 1 the true scheduler still succeeds.
	opts := Options{RecursionLimit: 1, DiceCountLimit: 100}
	res := mustRun(t, "max([1d6,2d6,3d6], 2)", opts, &scriptedRNG{values: []int32{4, 3, 5, 1, 2, 6}})
	if res.RoundsUsed != 1 {
		t.Fatalf("expected RoundsUsed == 1 for three independent dice-sources, got %d", res.RoundsUsed)
	}
	l, ok := res.Value.(*List)
	if !ok || len(l.Items) != 2 || l.Items[0].Value != 8 || l.Items[1].Value != 9 {
		t.Fatalf("expected [8,9], got %+v (%T)", res.Value, res.Value)
	}
}

func TestRunExplodeWithNestedCount(t *testing.T) {
	// (1d6)d8!: the outer count is itself a 1d6 draw, then the 2d8-ish
	// pool explodes on its max face. Round accounting: round 1 draws
	// the 1d6 count, round 2 draws the initial d8 pool, round 3 and 4
	// are each one explosion wave.
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	rng := &scriptedRNG{values: []int32{2, 8, 3, 8, 2}}
	res := mustRun(t, "(1d6)d8!", opts, rng)
	if res.RoundsUsed != 4 {
		t.Fatalf("expected RoundsUsed == 4, got %d", res.RoundsUsed)
	}
}

func TestCollapseLawDicePool(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res := mustRun(t, "3d6", opts, &scriptedRNG{values: []int32{1, 2, 3}})
	if got, want := res.Value.(Number).Value, int32(6); got != want {
		t.Fatalf("collapse of [1,2,3] = %d, want %d", got, want)
	}
}

func TestCollapseLawSuccessPool(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	// cs>=5 tags 5 and 6 as successes, the rest stay normal.
	res := mustRun(t, "4d6cs>=5", opts, &scriptedRNG{values: []int32{6, 1, 5, 2}})
	if got, want := res.Value.(Number).Value, int32(2); got != want {
		t.Fatalf("success-pool collapse = %d, want %d", got, want)
	}
}

func TestKeepHighDropsLowestRecords(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res := mustRun(t, "4d6kh3", opts, &scriptedRNG{values: []int32{1, 2, 3, 4}})
	if got, want := res.Value.(Number).Value, int32(9); got != want {
		t.Fatalf("kh3 of [1,2,3,4] = %d, want %d (2+3+4)", got, want)
	}
}

func TestClampMinRaisesLowValues(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res := mustRun(t, "3d6min3", opts, &scriptedRNG{values: []int32{1, 2, 6}})
	if got, want := res.Value.(Number).Value, int32(12); got != want {
		t.Fatalf("min3 of [1,2,6] = %d, want %d (3+3+6)", got, want)
	}
}

func TestCompoundExplodeFoldsIntoSingleRecord(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	// 1d6!! with faces 6 then 6 then 3: both explosions fold into the
	// one originating record, so the pool has exactly one live record.
	prog, err := Validate("1d6!!", opts)
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	res, err := Run(context.Background(), prog.Graph, opts, &scriptedRNG{values: []int32{6, 6, 3}})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if got, want := res.Value.(Number).Value, int32(15); got != want {
		t.Fatalf("compound explode 6+6+3 = %d, want %d", got, want)
	}
	for _, v := range res.Pools {
		if dp, ok := v.(*DicePool); ok && len(dp.Records) != 1 {
			t.Fatalf("expected compound explode to keep a single record, got %d", len(dp.Records))
		}
	}
}
