package dice

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ryanuber/columnize"
	yaml "gopkg.in/yaml.v2"
)

// delim separates a rendered field's key from its value in table output,
// chosen wide enough that it never collides with roll notation.
const delim = "⚂"

// DisplayTree is the flattened, presentation-ready view of a Result:
// the final value alongside every dice-source node's resolved pool,
// keyed by the same NodeIDs the Graph assigned during Compile (spec.md
// §6).
type DisplayTree struct {
	Value      string                 `json:"value"`
	RoundsUsed uint                   `json:"rounds_used"`
	DiceDrawn  uint                   `json:"dice_drawn"`
	Pools      map[NodeID]*PoolDetail `json:"pools,omitempty"`
}

// PoolDetail is one dice-source node's rolled records, in display form.
type PoolDetail struct {
	Kind    string         `json:"kind"`
	Total   int32          `json:"total"`
	Records []RecordDetail `json:"records"`
}

// RecordDetail is one die's outcome, flattened for rendering.
type RecordDetail struct {
	ID      int     `json:"id"`
	Face    string  `json:"face"`
	Value   int32   `json:"value"`
	Dropped bool    `json:"dropped,omitempty"`
	Removed bool    `json:"removed,omitempty"`
	Clamped bool    `json:"clamped,omitempty"`
	Tag     string  `json:"tag,omitempty"`
	Reroll  []int32 `json:"reroll_chain,omitempty"`
}

// Render flattens a Result into a DisplayTree, the shape every output
// format below marshals from.
func Render(res *Result) *DisplayTree {
	tree := &DisplayTree{
		Value:      describeValue(res.Value),
		RoundsUsed: res.RoundsUsed,
		DiceDrawn:  res.DiceDrawn,
	}
	if len(res.Pools) > 0 {
		tree.Pools = make(map[NodeID]*PoolDetail, len(res.Pools))
		for id, v := range res.Pools {
			tree.Pools[id] = describePool(v)
		}
	}
	return tree
}

func describeValue(v Value) string {
	switch t := v.(type) {
	case Number:
		return fmt.Sprintf("%d", t.Value)
	case *DicePool:
		return fmt.Sprintf("%d", t.Collapse())
	case *SuccessPool:
		return fmt.Sprintf("%d", t.Collapse())
	case *List:
		parts := make([]string, len(t.Items))
		for i, n := range t.Items {
			parts[i] = fmt.Sprintf("%d", n.Value)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func describePool(v Value) *PoolDetail {
	var records []*RollRecord
	var total int32
	kind := "DicePool"
	switch t := v.(type) {
	case *DicePool:
		records = t.Records
		total = t.Collapse()
	case *SuccessPool:
		records = t.Records
		total = t.Collapse()
		kind = "SuccessPool"
	default:
		return &PoolDetail{Kind: kind}
	}
	detail := &PoolDetail{Kind: kind, Total: total, Records: make([]RecordDetail, len(records))}
	for i, r := range records {
		rd := RecordDetail{
			ID:      r.ID,
			Face:    r.Face.String(),
			Value:   r.Value,
			Dropped: r.Dropped,
			Removed: r.Removed,
			Clamped: r.Clamped,
			Reroll:  r.RerollChain,
		}
		switch r.Tag {
		case TagSuccess:
			rd.Tag = "success"
		case TagFailure:
			rd.Tag = "failure"
		}
		detail.Records[i] = rd
	}
	return detail
}

// Output renders i in the requested format: "table" (the default),
// "json", or "yaml"/"yml". JSON and YAML marshal i directly; table
// output walks a *DisplayTree's own fields (or, for the simpler status
// maps the CLI's other commands print, a sorted generic row set)
// rather than round-tripping through JSON into a generic map first.
func Output(i interface{}, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(i, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(i)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	case "", "table":
		return toTable(i)
	default:
		return "", fmt.Errorf("requested format %v unhandled", format)
	}
}

func toTable(i interface{}) (string, error) {
	var rows []string
	switch v := i.(type) {
	case *DisplayTree:
		rows = treeRows(v)
	case map[string]interface{}:
		rows = genericRows(v)
	default:
		return "", fmt.Errorf("table output requires a *DisplayTree or map[string]interface{}, got %T", i)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return columnize.Format(rows, &columnize.Config{Delim: delim, Glue: "    ", Empty: "n/a"}), nil
}

// genericRows renders the CLI's plain status maps (e.g. ValidateCommand's
// "valid"/"nodes" pair), sorted by key for a stable column order.
func genericRows(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, fmt.Sprintf("%s %s %v", k, delim, m[k]))
	}
	return rows
}

// treeRows renders a DisplayTree's own fields plus one row per
// dice-source pool, ordered by NodeID for a stable report.
func treeRows(tree *DisplayTree) []string {
	rows := []string{
		fmt.Sprintf("value %s %s", delim, tree.Value),
		fmt.Sprintf("rounds_used %s %d", delim, tree.RoundsUsed),
		fmt.Sprintf("dice_drawn %s %d", delim, tree.DiceDrawn),
	}
	ids := make([]int, 0, len(tree.Pools))
	for id := range tree.Pools {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := tree.Pools[NodeID(id)]
		vals := make([]string, len(p.Records))
		for i, r := range p.Records {
			vals[i] = fmt.Sprintf("%d", r.Value)
		}
		rows = append(rows, fmt.Sprintf("pool[%d] (%s) %s %d from [%s]",
			id, p.Kind, delim, p.Total, strings.Join(vals, " ")))
	}
	return rows
}
