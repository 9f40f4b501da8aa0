package dice

// Options configures validation and evaluation. Per spec.md §5 all
// configuration passes through call arguments, never globals or
// environment variables.
type Options struct {
	// RecursionLimit bounds the number of runtime rounds (spec.md
	// §4.6/§5). Must be > 0: Run rejects a zero value with a
	// LimitExceededError rather than treating it as unbounded.
	RecursionLimit uint

	// DiceCountLimit bounds the total number of RNG draws across the
	// whole evaluation, including rerolls and explosions. Must be > 0,
	// enforced the same way as RecursionLimit.
	DiceCountLimit uint
}

// contextKey is a value for use with context.WithValue, following the
// teacher's contextKey convention (context.go).
type contextKey string

func (k contextKey) String() string {
	return "github.com/travis-g/dicelang context value " + string(k)
}
