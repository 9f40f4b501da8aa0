package dice

// Compile walks optimized HIR and records every non-literal node in
// evaluation order into a Graph (spec.md §4.5). Node registration order doubles
// as dependency order: compileWalk always visits a node's operands
// before the node itself, so a dice-source's count_input and
// face_spec are registered before it is. The runtime's round
// scheduler (runtime.go) relies on this to recognize dice-source
// nodes with no dependency between them and draw them in the same
// round.
func Compile(h HIRExpr) *Graph {
	g := &Graph{Root: h}
	compileWalk(g, h)
	return g
}

func compileWalk(g *Graph, h HIRExpr) {
	switch v := h.(type) {
	case *HIRNumber:
		// leaf; no node needed.
	case *HIRList:
		for _, it := range v.Items {
			compileWalk(g, it)
		}
		g.addNode(NodePure, v)
	case *HIRListRepeat:
		compileWalk(g, v.List)
		g.addNode(NodePure, v)
	case *HIRDice:
		if v.Count != nil {
			compileWalk(g, v.Count)
		}
		if v.Face.Dynamic != nil {
			compileWalk(g, v.Face.Dynamic)
		}
		g.addNode(NodeDice, v)
	case *HIRCollapse:
		compileWalk(g, v.Inner)
		g.addNode(NodePure, v)
	case *HIRToList:
		compileWalk(g, v.Inner)
		g.addNode(NodePure, v)
	case *HIRUnary:
		compileWalk(g, v.Inner)
		g.addNode(NodePure, v)
	case *HIRBinary:
		compileWalk(g, v.Left)
		compileWalk(g, v.Right)
		g.addNode(NodePure, v)
	case *HIRRoundedDiv:
		compileWalk(g, v.Left)
		compileWalk(g, v.Right)
		g.addNode(NodePure, v)
	case *HIRCall:
		for _, a := range v.Args {
			compileWalk(g, a)
		}
		g.addNode(NodePure, v)
	case *HIRFilterCall:
		compileWalk(g, v.Target)
		compileWalk(g, v.Source)
		g.addNode(NodePure, v)
	}
}
