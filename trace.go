package dice

// Result is a completed evaluation: the final collapsed/ungathered
// Value plus enough of the runtime's bookkeeping to render a
// DisplayTree (spec.md §4.6/§6) after the fact.
type Result struct {
	Value Value
	Graph *Graph

	// Pools holds each dice-source node's resolved DicePool or
	// SuccessPool, keyed by its Graph node ID.
	Pools map[NodeID]Value

	RoundsUsed uint
	DiceDrawn  uint
}
