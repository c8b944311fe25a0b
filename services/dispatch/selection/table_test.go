// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the action selection table.

package selection

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
)

func action(name string, route map[string]string) *Action {
	return &Action{Name: name, Handler: name + "Handler", RouteValues: route}
}

func names(actions []*Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Name)
	}
	return out
}

func TestBuildTable_RouteKeySet(t *testing.T) {
	tests := []struct {
		name     string
		actions  []*Action
		wantKeys []string
	}{
		{
			name:     "empty collection",
			actions:  nil,
			wantKeys: []string{},
		},
		{
			name: "sorted case-insensitively",
			actions: []*Action{
				action("a", map[string]string{"id": "1", "Controller": "Home"}),
			},
			wantKeys: []string{"Controller", "id"},
		},
		{
			name: "case-insensitive dedup keeps first spelling",
			actions: []*Action{
				action("a", map[string]string{"Controller": "Home"}),
				action("b", map[string]string{"controller": "Store", "action": "Buy"}),
			},
			wantKeys: []string{"action", "Controller"},
		},
		{
			name: "attribute-routed actions contribute no keys",
			actions: []*Action{
				{Name: "attr", RouteValues: map[string]string{"slug": "x"}, AttributeRouted: true},
				action("a", map[string]string{"controller": "Home"}),
			},
			wantKeys: []string{"controller"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := BuildTable(&Collection{Version: "v1", Actions: tc.actions})
			got := table.Keys()
			if len(got) != len(tc.wantKeys) {
				t.Fatalf("Keys() = %v, want %v", got, tc.wantKeys)
			}
			for i := range got {
				if got[i] != tc.wantKeys[i] {
					t.Errorf("Keys()[%d] = %q, want %q", i, got[i], tc.wantKeys[i])
				}
			}
		})
	}
}

// TestTable_SelectScenario covers the canonical three-action scenario:
// ordinal precedence for an exact-case hit, and the shared case-insensitive
// group for a casing variant.
func TestTable_SelectScenario(t *testing.T) {
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("first", map[string]string{"controller": "Home", "id": "1"}),
			action("second", map[string]string{"controller": "HOME", "id": "1"}),
			action("third", map[string]string{"controller": "Home", "id": "2"}),
		},
	})

	if got := table.Keys(); !reflect.DeepEqual(got, []string{"controller", "id"}) {
		t.Fatalf("Keys() = %v, want [controller id]", got)
	}

	tests := []struct {
		name      string
		values    map[string]string
		wantNames []string
		wantKind  MatchKind
	}{
		{
			// The ordinal entry points at the group shared with the
			// case-insensitive index, so every case-variant member comes
			// back; disambiguation is the caller's job.
			name:      "exact case hits ordinal index",
			values:    map[string]string{"controller": "Home", "id": "1"},
			wantNames: []string{"first", "second"},
			wantKind:  MatchOrdinal,
		},
		{
			name:      "other exact casing hits its own ordinal entry",
			values:    map[string]string{"controller": "HOME", "id": "1"},
			wantNames: []string{"first", "second"},
			wantKind:  MatchOrdinal,
		},
		{
			name:      "unseen casing falls back to the shared group",
			values:    map[string]string{"controller": "home", "id": "1"},
			wantNames: []string{"first", "second"},
			wantKind:  MatchFolded,
		},
		{
			name:      "distinct values miss the group",
			values:    map[string]string{"controller": "Home", "id": "2"},
			wantNames: []string{"third"},
			wantKind:  MatchOrdinal,
		},
		{
			name:      "no match is empty, not an error",
			values:    map[string]string{"controller": "Store", "id": "1"},
			wantNames: []string{},
			wantKind:  MatchNone,
		},
		{
			name:      "missing keys project to empty string",
			values:    map[string]string{"controller": "Home"},
			wantNames: []string{},
			wantKind:  MatchNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actions, kind := table.Match(tc.values)
			if kind != tc.wantKind {
				t.Errorf("Match kind = %v, want %v", kind, tc.wantKind)
			}
			got := names(actions)
			if len(got) != len(tc.wantNames) {
				t.Fatalf("Match = %v, want %v", got, tc.wantNames)
			}
			for i := range got {
				if got[i] != tc.wantNames[i] {
					t.Errorf("Match[%d] = %q, want %q", i, got[i], tc.wantNames[i])
				}
			}
		})
	}
}

func TestTable_OrdinalEntrySharesFoldedGroup(t *testing.T) {
	// An ordinal hit must win even when the case-insensitive group under
	// the same folded tuple is larger.
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("upper", map[string]string{"controller": "HOME"}),
			action("mixed", map[string]string{"controller": "Home"}),
		},
	})

	actions, kind := table.Match(map[string]string{"controller": "Home"})
	if kind != MatchOrdinal {
		t.Fatalf("kind = %v, want MatchOrdinal", kind)
	}
	if got := names(actions); !reflect.DeepEqual(got, []string{"upper", "mixed"}) {
		t.Errorf("ordinal entry shares the folded group: got %v, want [upper mixed]", got)
	}
}

func TestBuildTable_FirstWriteWinsOnExactCollision(t *testing.T) {
	// Two actions with identical exact-case route values: the ordinal entry
	// keeps the first-registered group reference, and the group holds both
	// actions in declaration order.
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("one", map[string]string{"controller": "Home"}),
			action("two", map[string]string{"controller": "Home"}),
		},
	})

	actions, kind := table.Match(map[string]string{"controller": "Home"})
	if kind != MatchOrdinal {
		t.Fatalf("kind = %v, want MatchOrdinal", kind)
	}
	if got := names(actions); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("group = %v, want [one two]", got)
	}
}

func TestBuildTable_DuplicateActionObjectsKeepMultiplicity(t *testing.T) {
	a := action("dup", map[string]string{"controller": "Home"})
	table := BuildTable(&Collection{Version: "v1", Actions: []*Action{a, a}})

	actions := table.Select(map[string]string{"controller": "Home"})
	if len(actions) != 2 {
		t.Fatalf("len = %d, want 2 (duplicates are not collapsed)", len(actions))
	}
	if actions[0] != a || actions[1] != a {
		t.Error("both entries should be the same action object")
	}
}

func TestBuildTable_OrderIndependence(t *testing.T) {
	forward := []*Action{
		action("a", map[string]string{"Controller": "Home", "id": "1"}),
		action("b", map[string]string{"controller": "home", "ID": "1"}),
		action("c", map[string]string{"action": "Buy"}),
	}
	reversed := []*Action{forward[2], forward[1], forward[0]}

	t1 := BuildTable(&Collection{Version: "v1", Actions: forward})
	t2 := BuildTable(&Collection{Version: "v1", Actions: reversed})

	queries := []map[string]string{
		{"controller": "Home", "id": "1"},
		{"controller": "home", "id": "1"},
		{"CONTROLLER": "HOME", "ID": "1"},
		{"action": "Buy"},
		{"action": "buy"},
		{},
		{"controller": "Store"},
	}
	for i, q := range queries {
		t.Run(fmt.Sprintf("query_%d", i), func(t *testing.T) {
			s1 := names(t1.Select(q))
			s2 := names(t2.Select(q))
			sort.Strings(s1)
			sort.Strings(s2)
			if !reflect.DeepEqual(s1, s2) {
				t.Errorf("query %v: %v vs %v", q, s1, s2)
			}
		})
	}
}

func TestTable_EmptyCollection(t *testing.T) {
	table := BuildTable(&Collection{Version: "v0"})

	if len(table.Keys()) != 0 {
		t.Errorf("Keys() = %v, want empty", table.Keys())
	}
	if got := table.Select(map[string]string{"controller": "Home"}); len(got) != 0 {
		t.Errorf("Select = %v, want empty", names(got))
	}
	if got := table.Select(nil); len(got) != 0 {
		t.Errorf("Select(nil) = %v, want empty", names(got))
	}
	if table.Version() != "v0" {
		t.Errorf("Version() = %q, want v0", table.Version())
	}
}

func TestBuildTable_NilCollection(t *testing.T) {
	table := BuildTable(nil)
	if got := table.Select(map[string]string{"x": "y"}); len(got) != 0 {
		t.Errorf("Select = %v, want empty", names(got))
	}
}

func TestTable_EmptyValueEqualsMissingDeclaration(t *testing.T) {
	// One action declares id="", the other does not declare id at all.
	// Both must land in the same group and be reachable with or without
	// id in the query.
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("declared", map[string]string{"controller": "Home", "id": ""}),
			action("undeclared", map[string]string{"controller": "Home"}),
		},
	})

	for _, values := range []map[string]string{
		{"controller": "Home", "id": ""},
		{"controller": "Home"},
	} {
		got := names(table.Select(values))
		if !reflect.DeepEqual(got, []string{"declared", "undeclared"}) {
			t.Errorf("Select(%v) = %v, want [declared undeclared]", values, got)
		}
	}
}

func TestTable_QueryKeysMatchCaseInsensitively(t *testing.T) {
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("home", map[string]string{"controller": "Home"}),
		},
	})

	got := names(table.Select(map[string]string{"CONTROLLER": "Home"}))
	if !reflect.DeepEqual(got, []string{"home"}) {
		t.Errorf("Select with differently-cased key = %v, want [home]", got)
	}
}

func TestTable_ConcurrentSelect(t *testing.T) {
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("a", map[string]string{"controller": "Home", "id": "1"}),
			action("b", map[string]string{"controller": "HOME", "id": "1"}),
		},
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := table.Select(map[string]string{"controller": "home", "id": "1"}); len(got) != 2 {
					t.Errorf("concurrent Select returned %d actions, want 2", len(got))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestBuildTable_PanicsOnMutatedRouteValues(t *testing.T) {
	// Simulate a collaborator mutating an action's route values between
	// the key-set discovery pass and projection. The second action's
	// RouteValues map gains a key only after the first action (and the
	// key-set) has been read... which we can't do from outside BuildTable,
	// so drive the guard directly through projectAction.
	table := BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{action("a", map[string]string{"controller": "Home"})},
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a key missing from the route key set")
		}
	}()
	table.projectAction(action("late", map[string]string{"surprise": "x"}))
}

func TestBuildTable_PanicsOnCaseCollidingKeysWithinOneAction(t *testing.T) {
	// "id" and "ID" fold to one column; whichever value map iteration
	// visited last would win, so the same input could build tables that
	// route differently. Build must refuse instead.
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for case-colliding route keys in one action")
		}
	}()
	BuildTable(&Collection{
		Version: "v1",
		Actions: []*Action{
			action("dup", map[string]string{"id": "1", "ID": "2"}),
		},
	})
}

func TestBuildTable_DoesNotMutateInput(t *testing.T) {
	a := action("a", map[string]string{"controller": "Home"})
	col := &Collection{Version: "v1", Actions: []*Action{a, nil}}
	BuildTable(col)

	if len(col.Actions) != 2 || col.Actions[0] != a || col.Actions[1] != nil {
		t.Error("BuildTable mutated the input collection")
	}
	if len(a.RouteValues) != 1 || a.RouteValues["controller"] != "Home" {
		t.Error("BuildTable mutated an action's route values")
	}
}
