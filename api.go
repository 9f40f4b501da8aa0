package dice

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Program is the result of Validate: a fully type-checked, optimized,
// and compiled expression ready to run against any RNG.
type Program struct {
	Graph *Graph
}

// Validate parses, type-checks, constant-folds, and compiles source,
// without evaluating it. It is the "does this roll even make sense"
// entry point: callers that only need to know whether an expression
// is well-formed should use this instead of Evaluate.
func Validate(source string, opts Options) (*Program, error) {
	start := time.Now()
	ast, err := Parse(source)
	if err != nil {
		log.Debug().Str("source", source).Err(err).Msg("validate: parse failed")
		return nil, errors.Wrap(err, "parse")
	}
	hir, err := Lower(ast)
	if err != nil {
		log.Debug().Str("source", source).Err(err).Msg("validate: lower failed")
		return nil, errors.Wrap(err, "lower")
	}
	hir = Optimize(hir)
	graph := Compile(hir)
	log.Info().
		Str("source", source).
		Int("nodes", len(graph.Nodes)).
		Dur("elapsed", time.Since(start)).
		Msg("validate")
	return &Program{Graph: graph}, nil
}

// Evaluate parses, type-checks, optimizes, compiles, and runs source
// against rng, enforcing opts' budgets. It is the single entry point
// driving every one of the worked examples a caller sends.
func Evaluate(ctx context.Context, source string, opts Options, rng RNG) (*Result, error) {
	start := time.Now()
	prog, err := Validate(source, opts)
	if err != nil {
		return nil, err
	}
	res, err := Run(ctx, prog.Graph, opts, rng)
	if err != nil {
		log.Debug().Str("source", source).Err(err).Msg("evaluate: run failed")
		return res, errors.Wrap(err, "run")
	}
	log.Info().
		Str("source", source).
		Uint("rounds", res.RoundsUsed).
		Uint("dice_drawn", res.DiceDrawn).
		Dur("elapsed", time.Since(start)).
		Msg("evaluate")
	return res, nil
}
