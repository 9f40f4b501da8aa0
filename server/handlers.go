package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	dice "github.com/travis-g/dicelang"
)

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("response marshal failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, err string) {
	respondWithJSON(w, code, map[string]string{"error": err})
}

// evalRequest is the shared body of /v1/validate and /v1/evaluate: an
// expression plus the budgets Evaluate must enforce. Seed, if nonzero,
// pins the RNG for a reproducible roll (spec.md §8's determinism
// property); a zero seed draws a fresh one from the system CSPRNG.
type evalRequest struct {
	Expression     string `json:"expression"`
	RecursionLimit uint   `json:"recursion_limit"`
	DiceCountLimit uint   `json:"dice_count_limit"`
	Seed           int64  `json:"seed,omitempty"`
	Format         string `json:"format,omitempty"`
}

func decodeEvalRequest(r *http.Request) (*evalRequest, error) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if req.RecursionLimit == 0 {
		req.RecursionLimit = DefaultRecursionLimit
	}
	if req.DiceCountLimit == 0 {
		req.DiceCountLimit = DefaultDiceCountLimit
	}
	return &req, nil
}

// ValidateHandler parses, type-checks, and compiles the posted
// expression, reporting any error without rolling a single die.
func ValidateHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEvalRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := dice.Options{RecursionLimit: req.RecursionLimit, DiceCountLimit: req.DiceCountLimit}
	prog, err := programs.GetOrValidate(req.Expression, opts)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"nodes": len(prog.Graph.Nodes),
	})
}

// EvaluateHandler validates, rolls, and renders the posted expression.
func EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEvalRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := dice.Options{RecursionLimit: req.RecursionLimit, DiceCountLimit: req.DiceCountLimit}

	var rng dice.RNG
	if req.Seed != 0 {
		rng = dice.NewMathRand(req.Seed)
	} else {
		seeded, seed, err := dice.NewDefaultRNG()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Debug().Int64("seed", seed).Msg("seeded evaluation RNG")
		rng = seeded
	}

	res, err := dice.Evaluate(r.Context(), req.Expression, opts, rng)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, dice.Render(res))
}

// RootHandler describes the API for a human landing on the base route.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"routes": []string{"POST /v1/validate", "POST /v1/evaluate"},
	})
}

// NotFoundHandler responds to any unmatched route.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "not found")
}
