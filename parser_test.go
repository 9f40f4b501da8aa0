package dice

import "testing"

func TestParseBasicDice(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"simple", "3d20", false},
		{"bare-d", "d6", false},
		{"fate", "4dF", false},
		{"coin", "2dC", false},
		{"nested-count", "(1d6)d8", false},
		{"arithmetic", "3d20dl+1", false},
		{"keep-drop", "4d6kh3", false},
		{"reroll-with-limit", "5d6r<3lt2", false},
		{"explode-with-limit", "5d6!lc3", false},
		{"compound", "5d6!!>=5", false},
		{"success-pool", "4d20cs>=5df>19+1", false},
		{"list-lit", "[1,2,3]", false},
		{"call", "sum([1,2,3])", false},
		{"filter-form", "filter<3([1,2,3])", false},
		{"list-repeat", "[1,2] ** 3", false},
		{"unclosed-paren", "(1d6", true},
		{"unknown-ident-no-call", "foo", true},
		{"trailing-garbage", "1d6 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			}
		})
	}
}

func TestParseDiceExprShape(t *testing.T) {
	n, err := Parse("3d20kh2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := n.(*DiceExpr)
	if !ok {
		t.Fatalf("expected *DiceExpr, got %T", n)
	}
	if len(d.Modifiers) != 1 || d.Modifiers[0].Kind != ModKeepHigh {
		t.Fatalf("expected one kh modifier, got %+v", d.Modifiers)
	}
	count, ok := d.Count.(*IntLit)
	if !ok || count.Value != 3 {
		t.Fatalf("expected count literal 3, got %#v", d.Count)
	}
}

func TestParseModifierChainOrder(t *testing.T) {
	n, err := Parse("4d20cs>=5df>19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := n.(*DiceExpr)
	if len(d.Modifiers) != 2 {
		t.Fatalf("expected 2 modifiers, got %d", len(d.Modifiers))
	}
	if d.Modifiers[0].Kind != ModMarkSuccess || d.Modifiers[1].Kind != ModMarkFailure {
		t.Fatalf("expected cs then df, got %+v", d.Modifiers)
	}
}
