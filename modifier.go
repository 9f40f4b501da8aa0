package dice

import "fmt"

// CompareOp is a comparison operator usable in modifier parameters and
// filter expressions. Grounded on the teacher's CompareOp enum
// (modifier.go), widened from 4 to 6 operators per spec.md §4.1.
type CompareOp int

// Comparison operators.
const (
	CompareNone CompareOp = iota
	CompareEQ
	CompareNE
	CompareLT
	CompareLE
	CompareGT
	CompareGE
)

var compareStrings = [...]string{
	CompareNone: "",
	CompareEQ:   "=",
	CompareNE:   "<>",
	CompareLT:   "<",
	CompareLE:   "<=",
	CompareGT:   ">",
	CompareGE:   ">=",
}

func (c CompareOp) String() string {
	if c >= 0 && int(c) < len(compareStrings) {
		return compareStrings[c]
	}
	return ""
}

// Eval applies the comparison to (value, target).
func (c CompareOp) Eval(value, target int32) bool {
	switch c {
	case CompareEQ, CompareNone:
		return value == target
	case CompareNE:
		return value != target
	case CompareLT:
		return value < target
	case CompareLE:
		return value <= target
	case CompareGT:
		return value > target
	case CompareGE:
		return value >= target
	default:
		return false
	}
}

// ModifierKind is the tag of a modifier's tagged-variant case
// (spec.md §9's "dynamic dispatch over modifier kinds" design note).
type ModifierKind int

// Modifier kinds, per spec.md §4.3.
const (
	ModKeepHigh ModifierKind = iota
	ModKeepLow
	ModDropHigh
	ModDropLow
	ModMin
	ModMax
	ModReroll
	ModExplode
	ModCompound
	ModSuccessFilter // sf: erase matching dice
	ModMarkFailure   // df
	ModMarkSuccess   // cs
)

func (k ModifierKind) String() string {
	switch k {
	case ModKeepHigh:
		return "kh"
	case ModKeepLow:
		return "kl"
	case ModDropHigh:
		return "dh"
	case ModDropLow:
		return "dl"
	case ModMin:
		return "min"
	case ModMax:
		return "max"
	case ModReroll:
		return "r"
	case ModExplode:
		return "!"
	case ModCompound:
		return "!!"
	case ModSuccessFilter:
		return "sf"
	case ModMarkFailure:
		return "df"
	case ModMarkSuccess:
		return "cs"
	default:
		return "?"
	}
}

// appliesToDicePool reports whether a modifier of this kind is valid
// against a DicePool-typed operand.
func (k ModifierKind) appliesToDicePool() bool {
	switch k {
	case ModKeepHigh, ModKeepLow, ModDropHigh, ModDropLow, ModMin, ModMax,
		ModReroll, ModExplode, ModCompound, ModSuccessFilter, ModMarkFailure, ModMarkSuccess:
		return true
	default:
		return false
	}
}

// appliesToSuccessPool reports whether a modifier of this kind is
// valid against a SuccessPool-typed operand.
func (k ModifierKind) appliesToSuccessPool() bool {
	switch k {
	case ModMarkFailure, ModMarkSuccess:
		return true
	default:
		return false
	}
}

// resultKind reports the Kind a pool has after this modifier is
// applied.
func (k ModifierKind) resultKind(in Kind) Kind {
	switch k {
	case ModMarkFailure, ModMarkSuccess:
		return KindSuccessPool
	default:
		return in
	}
}

// Limit bounds a reroll/explode/compound modifier's continuations, per
// spec.md §4.3: `lt` caps rounds of rerolling, `lc` caps new dice
// created. Zero means "unbounded" (only the global budgets apply).
type Limit struct {
	LT int32
	LC int32
}

func (l Limit) String() string {
	s := ""
	if l.LT > 0 {
		s += fmt.Sprintf("lt%d", l.LT)
	}
	if l.LC > 0 {
		s += fmt.Sprintf("lc%d", l.LC)
	}
	return s
}

// Modifier is a resolved, type-checked modifier ready for the compiler
// and runtime: the HIR-level counterpart of ModifierNode.
type Modifier struct {
	Kind    ModifierKind
	Num     int32 // kh/kl/dh/dl count; negative treated as zero (spec.md §7 tolerant path)
	Compare CompareOp
	Target  int32

	// UseMaxFace marks a bare `!`/`!!` with no explicit comparison at
	// all: its target is the rolled face's maximum value, resolved at
	// runtime once the face is known (spec.md §4.3's "default cmp is =
	// max(face)").
	UseMaxFace bool

	Limit Limit
}

// maxFaceValue is the highest value face can roll: the size for a
// concrete polyhedron, 1 for Fate and Coin.
func maxFaceValue(face DieFace) int32 {
	switch {
	case face.Fate, face.Coin:
		return 1
	default:
		return face.Size
	}
}

func (m Modifier) String() string {
	switch m.Kind {
	case ModKeepHigh, ModKeepLow, ModDropHigh, ModDropLow:
		return fmt.Sprintf("%s%d", m.Kind, m.Num)
	case ModMin, ModMax:
		return fmt.Sprintf("%s%d", m.Kind, m.Target)
	case ModReroll, ModExplode, ModCompound:
		return fmt.Sprintf("%s%s%d%s", m.Kind, m.Compare, m.Target, m.Limit)
	default:
		return fmt.Sprintf("%s%s%d", m.Kind, m.Compare, m.Target)
	}
}
