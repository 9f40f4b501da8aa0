package dice

import (
	"context"
	"sort"

	dmath "github.com/travis-g/dicelang/math"
)

// Runtime executes a compiled Graph's HIR against an RNG, enforcing
// the global round and dice-count budgets (spec.md §4.6). A Runtime
// evaluates exactly one expression and is not reused.
type Runtime struct {
	ctx  context.Context
	opts Options
	rng  RNG

	rounds uint
	drawn  uint
	nextID int

	pools map[*HIRDice]Value
}

// diceJob is one dice-source node's progress through the round loop:
// its resolved count/face, the pool under construction, and where it
// currently sits in its modifier pipeline (spec.md §4.5's "each
// dice-source node owns a scratch area for its in-progress pool").
type diceJob struct {
	hir  *HIRDice
	face DieFace
	n    int32

	faceReady bool
	pool      Value
	modIdx    int
	settled   bool

	// contModIdx marks which modIdx the reroll/explode continuation
	// state below belongs to; it is (re)initialized lazily the first
	// time that modifier is reached.
	contModIdx      int
	rerollCounts    map[int]int32
	explodeFrontier []explodeItem
	explodeSpawned  map[int]int32
}

type explodeItem struct {
	rec      *RollRecord
	root     int
	depth    int32
	checkVal int32 // the roll that must match cmp to continue cascading
}

// Run drives the compiled Graph's dice-source nodes round by round
// (spec.md §4.6) until every one has settled, then evaluates the root
// expression against the settled pools. Every runtime error returns
// alongside whatever partial trace the run accumulated before it
// failed, so a caller can display progress up to the failure point.
// The one exception is a zero RecursionLimit or DiceCountLimit, which
// is rejected before anything runs and returns a nil Result.
func Run(ctx context.Context, g *Graph, opts Options, rng RNG) (*Result, error) {
	if opts.RecursionLimit == 0 {
		return nil, &LimitExceededError{Kind: LimitRounds, Limit: 0}
	}
	if opts.DiceCountLimit == 0 {
		return nil, &LimitExceededError{Kind: LimitDiceCount, Limit: 0}
	}

	rt := &Runtime{ctx: ctx, opts: opts, rng: rng, pools: make(map[*HIRDice]Value)}
	partial := func(err error) (*Result, error) {
		return &Result{
			Graph:      g,
			Pools:      rt.snapshot(g),
			RoundsUsed: rt.rounds,
			DiceDrawn:  rt.drawn,
		}, err
	}

	if err := rt.runGraph(g); err != nil {
		return partial(err)
	}
	val, ok, err := rt.tryEval(g.Root)
	if err != nil {
		return partial(err)
	}
	if !ok {
		return partial(&InternalError{Message: "runtime: graph settled but root is still unresolved"})
	}
	// A pool at the root collapses to its Number; Pools keeps its records.
	switch val.(type) {
	case *DicePool, *SuccessPool:
		val = rt.collapse(val)
	}
	return &Result{
		Value:      val,
		Graph:      g,
		Pools:      rt.snapshot(g),
		RoundsUsed: rt.rounds,
		DiceDrawn:  rt.drawn,
	}, nil
}

func (rt *Runtime) snapshot(g *Graph) map[NodeID]Value {
	out := make(map[NodeID]Value)
	for _, n := range g.Nodes {
		if n.Kind != NodeDice {
			continue
		}
		d := n.HIR.(*HIRDice)
		if v, ok := rt.pools[d]; ok {
			out[n.ID] = v
		}
	}
	return out
}

func (rt *Runtime) checkCtx() error {
	if rt.ctx == nil {
		return nil
	}
	select {
	case <-rt.ctx.Done():
		return rt.ctx.Err()
	default:
		return nil
	}
}

// draw enforces dice_count_limit before delegating to the RNG.
func (rt *Runtime) draw(face DieFace) (int32, error) {
	if rt.drawn >= rt.opts.DiceCountLimit {
		return 0, &LimitExceededError{Kind: LimitDiceCount, Limit: rt.opts.DiceCountLimit}
	}
	v, err := rt.rng.Draw(face)
	if err != nil {
		return 0, err
	}
	rt.drawn++
	return v, nil
}

// consumeRound enforces recursion_limit before crediting one round to
// the whole batch of dice-source nodes that drew in it.
func (rt *Runtime) consumeRound() error {
	if rt.rounds >= rt.opts.RecursionLimit {
		return &LimitExceededError{Kind: LimitRounds, Limit: rt.opts.RecursionLimit}
	}
	rt.rounds++
	return nil
}

func (rt *Runtime) newRollID() int {
	id := rt.nextID
	rt.nextID++
	return id
}

// runGraph drives every dice-source node in g to completion, one
// round at a time (spec.md §4.6): each round, every node whose
// count_input and face_spec are resolved and that still owes rolls
// draws together in a single RNG batch, charged against the round
// budget once for the whole batch rather than once per node. A node
// with no RNG-consuming work left (nothing but kh/kl/dh/dl/min/max/sf
// ahead of it) advances through those for free between rounds.
func (rt *Runtime) runGraph(g *Graph) error {
	var jobs []*diceJob
	for _, n := range g.DiceNodes() {
		jobs = append(jobs, &diceJob{hir: n.HIR.(*HIRDice), contModIdx: -1})
	}

	for {
		if err := rt.checkCtx(); err != nil {
			return err
		}

		// Settle everything reachable without spending a round: resolve
		// newly-ready faces, and run free (non-rolling) modifiers to a
		// fixed point.
		for progressed := true; progressed; {
			progressed = false
			for _, j := range jobs {
				if j.settled {
					continue
				}
				if !j.faceReady {
					ok, err := rt.resolveFace(j)
					if err != nil {
						return err
					}
					if ok {
						progressed = true
					}
					continue
				}
				if j.pool == nil {
					if j.n == 0 {
						// A zero-die pool needs no RNG batch at all.
						j.pool = &DicePool{}
						progressed = true
					}
					continue
				}
				if rt.advanceFreeModifiers(j) {
					progressed = true
				}
				if j.modIdx >= len(j.hir.Modifiers) {
					rt.pools[j.hir] = j.pool
					j.settled = true
					progressed = true
				}
			}
		}

		type action struct {
			job         *diceJob
			initial     bool
			reroll      []*RollRecord
			explode     []explodeItem
			explodeKind Modifier
		}
		var actions []action
		for _, j := range jobs {
			if j.settled || !j.faceReady {
				continue
			}
			if j.pool == nil {
				actions = append(actions, action{job: j, initial: true})
				continue
			}
			m := j.hir.Modifiers[j.modIdx]
			switch m.Kind {
			case ModReroll:
				if due := rt.computeRerollDue(j, m); len(due) > 0 {
					actions = append(actions, action{job: j, reroll: due})
				}
			case ModExplode, ModCompound:
				if due := rt.computeExplodeDue(j, m); len(due) > 0 {
					actions = append(actions, action{job: j, explode: due, explodeKind: m})
				}
			}
		}

		if len(actions) == 0 {
			allSettled := true
			for _, j := range jobs {
				if !j.settled {
					allSettled = false
					break
				}
			}
			if allSettled {
				return nil
			}
			return &InternalError{Message: "runtime: no dice-source node could make progress"}
		}

		if err := rt.consumeRound(); err != nil {
			return err
		}
		for _, a := range actions {
			switch {
			case a.initial:
				if err := rt.drawInitial(a.job); err != nil {
					return err
				}
			case a.reroll != nil:
				if err := rt.drawRerollWave(a.job, a.reroll); err != nil {
					return err
				}
			case a.explode != nil:
				if err := rt.drawExplodeWave(a.job, a.explode, a.explodeKind); err != nil {
					return err
				}
			}
		}
	}
}

// resolveFace evaluates a dice-source node's count and face
// sub-expressions against already-settled sibling nodes. It reports
// ok=false, not an error, when those sub-expressions reach a
// dice-source node that hasn't settled yet: the node simply isn't
// ready this round.
func (rt *Runtime) resolveFace(j *diceJob) (bool, error) {
	count := int32(1)
	if j.hir.Count != nil {
		cv, ok, err := rt.tryEval(j.hir.Count)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		count = rt.collapse(cv).Value
	}
	if count < 0 {
		count = 0
	}

	face := DieFace{Fate: j.hir.Face.Fate, Coin: j.hir.Face.Coin}
	if !face.Fate && !face.Coin {
		if j.hir.Face.Dynamic != nil {
			fv, ok, err := rt.tryEval(j.hir.Face.Dynamic)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
			face.Size = rt.collapse(fv).Value
		} else {
			face.Size = j.hir.Face.Concrete
		}
	}

	j.face = face
	j.n = count
	j.faceReady = true
	return true, nil
}

// drawInitial draws a dice-source node's first pool, one round's
// batch for however many dice it owns (spec.md §4.6.a).
func (rt *Runtime) drawInitial(j *diceJob) error {
	pool := &DicePool{}
	for i := int32(0); i < j.n; i++ {
		val, err := rt.draw(j.face)
		if err != nil {
			return err
		}
		pool.Records = append(pool.Records, &RollRecord{
			ID: rt.newRollID(), Face: j.face, Value: val, ParentID: -1, Round: int(rt.rounds),
		})
	}
	j.pool = pool
	return nil
}

// advanceFreeModifiers applies every modifier ahead of j's current
// position that doesn't draw from the RNG (kh/kl/dh/dl/min/max/sf/
// cs/df are pure pool transforms), and skips past a reroll/explode
// modifier once nothing is due for it, all without spending a round.
// It stops at the first modifier that still owes a roll this round.
func (rt *Runtime) advanceFreeModifiers(j *diceJob) bool {
	changed := false
	for j.modIdx < len(j.hir.Modifiers) {
		m := j.hir.Modifiers[j.modIdx]
		switch m.Kind {
		case ModKeepHigh, ModKeepLow, ModDropHigh, ModDropLow:
			j.pool, _ = rt.applyKeepDrop(j.pool, m)
			j.modIdx++
			changed = true
		case ModMin, ModMax:
			j.pool, _ = rt.applyClamp(j.pool, m)
			j.modIdx++
			changed = true
		case ModSuccessFilter:
			j.pool, _ = rt.applySuccessFilter(j.pool, m)
			j.modIdx++
			changed = true
		case ModMarkFailure:
			j.pool, _ = rt.applyMark(j.pool, m, TagFailure)
			j.modIdx++
			changed = true
		case ModMarkSuccess:
			j.pool, _ = rt.applyMark(j.pool, m, TagSuccess)
			j.modIdx++
			changed = true
		case ModReroll:
			if len(rt.computeRerollDue(j, m)) == 0 {
				j.modIdx++
				changed = true
				continue
			}
			return changed
		case ModExplode, ModCompound:
			if len(rt.computeExplodeDue(j, m)) == 0 {
				j.modIdx++
				changed = true
				continue
			}
			return changed
		default:
			j.modIdx++
			changed = true
		}
	}
	return changed
}

// computeRerollDue lists the live records still due a reroll under m,
// lazily starting m's per-record reroll-count tracking the first time
// it's reached (spec.md §4.3/§4.6.d).
func (rt *Runtime) computeRerollDue(j *diceJob, m Modifier) []*RollRecord {
	if j.contModIdx != j.modIdx {
		j.rerollCounts = make(map[int]int32)
		j.contModIdx = j.modIdx
	}
	var due []*RollRecord
	for _, r := range poolRecords(j.pool) {
		if r.Dropped || r.Removed {
			continue
		}
		if !m.Compare.Eval(r.Value, m.Target) {
			continue
		}
		if m.Limit.LT > 0 && j.rerollCounts[r.ID] >= m.Limit.LT {
			continue
		}
		if m.Limit.LC > 0 && j.rerollCounts[r.ID] >= m.Limit.LC {
			continue
		}
		due = append(due, r)
	}
	return due
}

func (rt *Runtime) drawRerollWave(j *diceJob, due []*RollRecord) error {
	for _, r := range due {
		newVal, err := rt.draw(r.Face)
		if err != nil {
			return err
		}
		r.RerollChain = append(r.RerollChain, r.Value)
		r.Value = newVal
		j.rerollCounts[r.ID]++
	}
	return nil
}

// computeExplodeDue lists the cascade frontier still due a step under
// m (! or !!), lazily seeding the frontier from j's live records the
// first time this modifier is reached.
func (rt *Runtime) computeExplodeDue(j *diceJob, m Modifier) []explodeItem {
	if j.contModIdx != j.modIdx {
		var frontier []explodeItem
		for _, r := range poolRecords(j.pool) {
			if !r.Dropped && !r.Removed {
				frontier = append(frontier, explodeItem{rec: r, root: r.ID, depth: 0, checkVal: r.Value})
			}
		}
		j.explodeFrontier = frontier
		j.explodeSpawned = make(map[int]int32)
		j.contModIdx = j.modIdx
	}

	target := m.Target
	if m.UseMaxFace {
		target = maxFaceValue(j.face)
	}
	var due []explodeItem
	for _, cur := range j.explodeFrontier {
		if !m.Compare.Eval(cur.checkVal, target) {
			continue
		}
		if m.Limit.LC > 0 && j.explodeSpawned[cur.root] >= m.Limit.LC {
			continue
		}
		if m.Limit.LT > 0 && cur.depth >= m.Limit.LT {
			continue
		}
		due = append(due, cur)
	}
	return due
}

func (rt *Runtime) drawExplodeWave(j *diceJob, due []explodeItem, m Modifier) error {
	compound := m.Kind == ModCompound
	var next []explodeItem
	for _, cur := range due {
		newVal, err := rt.draw(j.face)
		if err != nil {
			return err
		}
		j.explodeSpawned[cur.root]++
		r := cur.rec

		if compound {
			r.Value = saturateInt32(int64(r.Value) + int64(newVal))
			next = append(next, explodeItem{rec: r, root: cur.root, depth: cur.depth + 1, checkVal: newVal})
			continue
		}

		child := &RollRecord{ID: rt.newRollID(), Face: j.face, Value: newVal, ParentID: r.ID, Round: int(rt.rounds)}
		r.Children = append(r.Children, child.ID)
		switch p := j.pool.(type) {
		case *DicePool:
			p.Records = append(p.Records, child)
		case *SuccessPool:
			p.Records = append(p.Records, child)
		}
		next = append(next, explodeItem{rec: child, root: cur.root, depth: cur.depth + 1, checkVal: newVal})
	}

	// Frontier items not due this wave are done: a non-cascading value
	// stays non-cascading, and a limit, once hit, never reopens. Only
	// the continuations drawn this wave carry into the next one.
	j.explodeFrontier = next
	return nil
}

// tryEval evaluates h against already-settled dice-source pools. It
// reports ok=false, never an error, the moment it reaches an
// unsettled *HIRDice: the caller (the round scheduler, or Run once
// every node has settled) decides what that means.
func (rt *Runtime) tryEval(h HIRExpr) (Value, bool, error) {
	if err := rt.checkCtx(); err != nil {
		return nil, false, err
	}
	switch v := h.(type) {
	case *HIRNumber:
		return Number{Value: v.Value, Provenance: ProvLiteral}, true, nil
	case *HIRList:
		items := make([]Number, len(v.Items))
		for i, it := range v.Items {
			val, ok, err := rt.tryEval(it)
			if err != nil || !ok {
				return nil, ok, err
			}
			items[i] = val.(Number)
		}
		return &List{Items: items}, true, nil
	case *HIRListRepeat:
		lv, ok, err := rt.tryEval(v.List)
		if err != nil || !ok {
			return nil, ok, err
		}
		l := lv.(*List)
		out := make([]Number, 0, len(l.Items)*int(v.Count))
		for i := int32(0); i < v.Count; i++ {
			out = append(out, l.Items...)
		}
		return &List{Items: out}, true, nil
	case *HIRDice:
		val, ok := rt.pools[v]
		return val, ok, nil
	case *HIRCollapse:
		inner, ok, err := rt.tryEval(v.Inner)
		if err != nil || !ok {
			return nil, ok, err
		}
		return rt.collapse(inner), true, nil
	case *HIRToList:
		inner, ok, err := rt.tryEval(v.Inner)
		if err != nil || !ok {
			return nil, ok, err
		}
		return rt.toList(inner), true, nil
	case *HIRUnary:
		inner, ok, err := rt.tryEval(v.Inner)
		if err != nil || !ok {
			return nil, ok, err
		}
		return rt.evalUnaryValue(v, inner), true, nil
	case *HIRBinary:
		left, ok, err := rt.tryEval(v.Left)
		if err != nil || !ok {
			return nil, ok, err
		}
		right, ok, err := rt.tryEval(v.Right)
		if err != nil || !ok {
			return nil, ok, err
		}
		val, err := rt.evalBinaryValue(v, left, right)
		return val, true, err
	case *HIRRoundedDiv:
		left, ok, err := rt.tryEval(v.Left)
		if err != nil || !ok {
			return nil, ok, err
		}
		right, ok, err := rt.tryEval(v.Right)
		if err != nil || !ok {
			return nil, ok, err
		}
		val, err := rt.evalRoundedDivValue(v, left, right)
		return val, true, err
	case *HIRCall:
		args := make([]Value, len(v.Args))
		for i, a := range v.Args {
			val, ok, err := rt.tryEval(a)
			if err != nil || !ok {
				return nil, ok, err
			}
			args[i] = val
		}
		val, err := rt.evalCallValue(v, args)
		return val, true, err
	case *HIRFilterCall:
		target, ok, err := rt.tryEval(v.Target)
		if err != nil || !ok {
			return nil, ok, err
		}
		source, ok, err := rt.tryEval(v.Source)
		if err != nil || !ok {
			return nil, ok, err
		}
		val, err := rt.evalFilterValue(v, target, source)
		return val, true, err
	}
	return nil, false, &InternalError{Message: "runtime: unhandled HIR node"}
}

func (rt *Runtime) collapse(v Value) Number {
	switch p := v.(type) {
	case Number:
		return p
	case *DicePool:
		return Number{Value: p.Collapse(), Provenance: ProvCollapse}
	case *SuccessPool:
		return Number{Value: p.Collapse(), Provenance: ProvCollapse}
	default:
		return Number{}
	}
}

func (rt *Runtime) toList(v Value) *List {
	switch p := v.(type) {
	case *DicePool:
		items := make([]Number, 0, len(p.Records))
		for _, r := range p.Live() {
			items = append(items, Number{Value: r.Value, Provenance: ProvCollapse})
		}
		return &List{Items: items}
	case *SuccessPool:
		items := make([]Number, 0, len(p.Records))
		for _, r := range p.Live() {
			items = append(items, Number{Value: r.Value, Provenance: ProvCollapse})
		}
		return &List{Items: items}
	default:
		return &List{}
	}
}

func (rt *Runtime) evalUnaryValue(v *HIRUnary, inner Value) Value {
	if l, ok := inner.(*List); ok {
		out := make([]Number, len(l.Items))
		for i, n := range l.Items {
			val := n.Value
			if v.Op == TokMinus {
				val = saturateInt32(-int64(val))
			}
			out[i] = Number{Value: val, Provenance: ProvArithmetic}
		}
		return &List{Items: out}
	}
	n := inner.(Number)
	val := n.Value
	if v.Op == TokMinus {
		val = saturateInt32(-int64(val))
	}
	return Number{Value: val, Provenance: ProvArithmetic}
}

func applyArith(op TokenKind, l, r int32, span Span) (int32, error) {
	switch op {
	case TokPlus:
		return saturateInt32(int64(l) + int64(r)), nil
	case TokMinus:
		return saturateInt32(int64(l) - int64(r)), nil
	case TokStar:
		return saturateInt32(int64(l) * int64(r)), nil
	case TokSlash:
		v, err := dmath.DivTrunc(l, r)
		if err != nil {
			return 0, &DivisionByZeroError{Span: span}
		}
		return v, nil
	case TokSlashSlash:
		v, err := dmath.DivFloor(l, r)
		if err != nil {
			return 0, &DivisionByZeroError{Span: span}
		}
		return v, nil
	case TokPercent:
		v, err := dmath.Mod(l, r)
		if err != nil {
			return 0, &DivisionByZeroError{Span: span}
		}
		return v, nil
	}
	return 0, &InternalError{Message: "runtime: unknown binary operator"}
}

func (rt *Runtime) evalBinaryValue(v *HIRBinary, left, right Value) (Value, error) {
	ll, lIsList := left.(*List)
	rl, rIsList := right.(*List)

	switch {
	case lIsList && rIsList:
		items := append(append([]Number{}, ll.Items...), rl.Items...)
		return &List{Items: items}, nil
	case lIsList:
		rn := right.(Number)
		out := make([]Number, len(ll.Items))
		for i, n := range ll.Items {
			val, err := applyArith(v.Op, n.Value, rn.Value, v.Span())
			if err != nil {
				return nil, err
			}
			out[i] = Number{Value: val, Provenance: ProvArithmetic}
		}
		return &List{Items: out}, nil
	case rIsList:
		ln := left.(Number)
		out := make([]Number, len(rl.Items))
		for i, n := range rl.Items {
			val, err := applyArith(v.Op, ln.Value, n.Value, v.Span())
			if err != nil {
				return nil, err
			}
			out[i] = Number{Value: val, Provenance: ProvArithmetic}
		}
		return &List{Items: out}, nil
	}

	ln := left.(Number)
	rn := right.(Number)
	val, err := applyArith(v.Op, ln.Value, rn.Value, v.Span())
	if err != nil {
		return nil, err
	}
	return Number{Value: val, Provenance: ProvArithmetic}, nil
}

func (rt *Runtime) evalRoundedDivValue(v *HIRRoundedDiv, left, right Value) (Value, error) {
	ln := left.(Number)
	rn := right.(Number)
	var val int32
	var err error
	switch v.Mode {
	case RoundFloor:
		val, err = dmath.DivFloor(ln.Value, rn.Value)
	case RoundCeil:
		val, err = dmath.DivCeil(ln.Value, rn.Value)
	default:
		val, err = dmath.DivNearest(ln.Value, rn.Value)
	}
	if err != nil {
		return nil, &DivisionByZeroError{Span: v.Span()}
	}
	return Number{Value: val, Provenance: ProvArithmetic}, nil
}

func numsOf(l *List) []int32 {
	out := make([]int32, len(l.Items))
	for i, n := range l.Items {
		out[i] = n.Value
	}
	return out
}

func listOf(xs []int32) *List {
	items := make([]Number, len(xs))
	for i, x := range xs {
		items[i] = Number{Value: x, Provenance: ProvFunction}
	}
	return &List{Items: items}
}

func (rt *Runtime) evalCallValue(v *HIRCall, args []Value) (Value, error) {
	switch v.Func {
	case "abs":
		n := args[0].(Number)
		return Number{Value: dmath.Abs(n.Value), Provenance: ProvFunction}, nil
	case "floor", "ceil", "round":
		n := args[0].(Number)
		return Number{Value: n.Value, Provenance: ProvFunction}, nil
	case "sum", "avg", "len":
		xs := numsOf(args[0].(*List))
		var val int32
		switch v.Func {
		case "sum":
			val = dmath.Sum(xs)
		case "avg":
			val = dmath.Avg(xs)
		case "len":
			val = dmath.Len(xs)
		}
		return Number{Value: val, Provenance: ProvFunction}, nil
	case "sort", "sortd":
		xs := numsOf(args[0].(*List))
		var sorted []int32
		if v.Func == "sort" {
			sorted = dmath.Sort(xs)
		} else {
			sorted = dmath.SortDesc(xs)
		}
		return listOf(sorted), nil
	case "max", "min":
		xs := numsOf(args[0].(*List))
		if len(args) == 2 {
			n := args[1].(Number)
			var picked []int32
			if v.Func == "max" {
				picked = dmath.TopN(xs, int(n.Value))
			} else {
				picked = dmath.BottomN(xs, int(n.Value))
			}
			return listOf(picked), nil
		}
		var val int32
		var err error
		if v.Func == "max" {
			val, err = dmath.Max(xs)
		} else {
			val, err = dmath.Min(xs)
		}
		if err != nil {
			return nil, &EmptyReductionError{Span: v.Span(), Func: v.Func}
		}
		return Number{Value: val, Provenance: ProvFunction}, nil
	}
	return nil, &InternalError{Message: "runtime: unknown function " + v.Func}
}

func (rt *Runtime) evalFilterValue(v *HIRFilterCall, target, source Value) (Value, error) {
	tn := target.(Number)
	list := source.(*List)
	out := make([]Number, 0, len(list.Items))
	for _, n := range list.Items {
		if v.Compare.Eval(n.Value, tn.Value) {
			out = append(out, n)
		}
	}
	return &List{Items: out}, nil
}

func poolRecords(v Value) []*RollRecord {
	switch p := v.(type) {
	case *DicePool:
		return p.Records
	case *SuccessPool:
		return p.Records
	default:
		return nil
	}
}

func (rt *Runtime) applyKeepDrop(v Value, m Modifier) (Value, error) {
	records := poolRecords(v)
	live := make([]*RollRecord, 0, len(records))
	for _, r := range records {
		if !r.Dropped && !r.Removed {
			live = append(live, r)
		}
	}
	n := int(m.Num)
	if n < 0 {
		n = 0
	}
	if n > len(live) {
		n = len(live)
	}

	sorted := append([]*RollRecord(nil), live...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	keep := make(map[int]bool, len(sorted))
	switch m.Kind {
	case ModKeepHigh:
		for _, r := range sorted[len(sorted)-n:] {
			keep[r.ID] = true
		}
	case ModKeepLow:
		for _, r := range sorted[:n] {
			keep[r.ID] = true
		}
	case ModDropHigh:
		for _, r := range sorted[:len(sorted)-n] {
			keep[r.ID] = true
		}
	case ModDropLow:
		for _, r := range sorted[n:] {
			keep[r.ID] = true
		}
	}
	for _, r := range live {
		if !keep[r.ID] {
			r.Dropped = true
		}
	}
	return v, nil
}

func (rt *Runtime) applyClamp(v Value, m Modifier) (Value, error) {
	for _, r := range poolRecords(v) {
		if r.Dropped || r.Removed {
			continue
		}
		switch {
		case m.Kind == ModMin && r.Value < m.Target:
			r.ClampedFrom, r.Value, r.Clamped = r.Value, m.Target, true
		case m.Kind == ModMax && r.Value > m.Target:
			r.ClampedFrom, r.Value, r.Clamped = r.Value, m.Target, true
		}
	}
	return v, nil
}

func (rt *Runtime) applySuccessFilter(v Value, m Modifier) (Value, error) {
	for _, r := range poolRecords(v) {
		if r.Dropped || r.Removed {
			continue
		}
		if m.Compare.Eval(r.Value, m.Target) {
			r.Removed = true
		}
	}
	return v, nil
}

func (rt *Runtime) applyMark(v Value, m Modifier, tag Tag) (Value, error) {
	var sp *SuccessPool
	switch p := v.(type) {
	case *DicePool:
		sp = NewSuccessPoolFromDice(p)
	case *SuccessPool:
		sp = p
	}
	for _, r := range sp.Records {
		if r.Dropped || r.Removed {
			continue
		}
		if m.Compare.Eval(r.Value, m.Target) {
			r.Tag = tag
		}
	}
	return sp, nil
}
