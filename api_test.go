package dice

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestEvaluateDropLowestThenAddOne(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res, err := Evaluate(context.Background(), "3d20dl+1", opts, &scriptedRNG{values: []int32{5, 19, 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := res.Value.(Number).Value, int32(27); got != want {
		t.Fatalf("3d20dl+1 of [5,19,7] = %d, want %d (19+7+1)", got, want)
	}
}

func TestEvaluateSuccessThenFailureOverride(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res, err := Evaluate(context.Background(), "4d20cs>=5df>19+1", opts, &scriptedRNG{values: []int32{5, 20, 7, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := res.Value.(Number).Value, int32(2); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestEvaluateNestedCountExplode(t *testing.T) {
	// (1d6)d8!: rolls 1d6->2, then 2d8->[8,3], and the live 8 explodes.
	// The worked example in spec.md §8 states a 5-record/29-sum final
	// pool, which isn't reachable from its own described mechanics
	// (see DESIGN.md); the mechanically-consistent result is a 4-record
	// pool summing to 21, reached in 4 rounds either way.
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res, err := Evaluate(context.Background(), "(1d6)d8!", opts, &scriptedRNG{values: []int32{2, 8, 3, 8, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RoundsUsed != 4 {
		t.Fatalf("expected RoundsUsed == 4, got %d", res.RoundsUsed)
	}
	if got, want := res.Value.(Number).Value, int32(21); got != want {
		t.Fatalf("got collapse %d, want %d", got, want)
	}
}

func TestEvaluateMaxOverDiceList(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res, err := Evaluate(context.Background(), "max([1d6,2d6,3d6], 2)", opts,
		&scriptedRNG{values: []int32{4, 3, 5, 1, 2, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, ok := res.Value.(*List)
	if !ok {
		t.Fatalf("expected *List, got %T", res.Value)
	}
	if len(l.Items) != 2 || l.Items[0].Value != 8 || l.Items[1].Value != 9 {
		t.Fatalf("expected [8,9], got %+v", l.Items)
	}
}

func TestEvaluateRpdiceDoublesDrawnCount(t *testing.T) {
	opts := Options{RecursionLimit: 100, DiceCountLimit: 100}
	res, err := Evaluate(context.Background(), "rpdice(1d8+2d6)", opts,
		&scriptedRNG{values: []int32{1, 2, 3, 4, 5, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// rpdice(1d8+2d6) desugars to 2d8+4d6: 6 draws total. 2d8 and 4d6
	// are independent dice-sources with no dependency between them, so
	// the scheduler draws both in the same round.
	if res.DiceDrawn != 6 {
		t.Fatalf("expected DiceDrawn == 6, got %d", res.DiceDrawn)
	}
	if res.RoundsUsed != 1 {
		t.Fatalf("expected RoundsUsed == 1, got %d", res.RoundsUsed)
	}
}

func TestEvaluateRerollExhaustsRecursionLimit(t *testing.T) {
	opts := Options{RecursionLimit: 5, DiceCountLimit: 1000}
	_, err := Evaluate(context.Background(), "1d6r<8", opts,
		&scriptedRNG{values: []int32{6, 5, 4, 3, 2, 1}})
	if err == nil {
		t.Fatalf("expected a limit-exceeded error")
	}
	le, ok := errors.Cause(err).(*LimitExceededError)
	if !ok {
		t.Fatalf("expected *LimitExceededError, got %#v", err)
	}
	if le.Kind != LimitRounds || le.Limit != 5 {
		t.Fatalf("expected rounds limit of 5, got %+v", le)
	}
}

func TestValidateNeverRolls(t *testing.T) {
	prog, err := Validate("100d20!", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog.Graph == nil || len(prog.Graph.Nodes) == 0 {
		t.Fatalf("expected a non-empty compiled graph")
	}
}
