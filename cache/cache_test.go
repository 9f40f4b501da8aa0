package cache

import (
	"testing"

	dice "github.com/travis-g/dicelang"
)

func TestGetOrValidateCachesOnHit(t *testing.T) {
	c := New()
	opts := dice.Options{RecursionLimit: 100, DiceCountLimit: 100}

	p1, err := c.GetOrValidate("1d6+1", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", c.Len())
	}

	p2, err := c.GetOrValidate("1d6+1", opts)
	if err != nil {
		t.Fatalf("unexpected error on cache hit: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("expected cache hit to return the same *Program pointer")
	}
}

func TestGetOrValidatePropagatesErrors(t *testing.T) {
	c := New()
	if _, err := c.GetOrValidate("1d6 +", dice.Options{}); err == nil {
		t.Fatalf("expected a parse error")
	}
	if c.Len() != 0 {
		t.Fatalf("a failed validate must not be cached")
	}
}

func TestPurge(t *testing.T) {
	c := New()
	c.Put("1d20", &dice.Program{})
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after Put")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected 0 entries after Purge")
	}
}
