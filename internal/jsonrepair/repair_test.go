package jsonrepair

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRepairCompleteDocument(t *testing.T) {
	value, ok := Repair(`{"title":"Board","phases":[{"name":"core"}]}`)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", value)
	}
	if obj["title"] != "Board" {
		t.Fatalf("unexpected title: %v", obj["title"])
	}
}

func TestRepairTruncatedDocuments(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string // canonical JSON of the expected repaired value
	}{
		{"open object", `{"a":1`, `{"a":1}`},
		{"open array", `[1,2,3`, `[1,2,3]`},
		{"open string value", `{"msg":"hel`, `{"msg":"hel"}`},
		{"dangling comma", `{"a":1,`, `{"a":1}`},
		{"dangling colon", `{"a":`, `{}`},
		{"partial key", `{"a":"x","ne`, `{"a":"x"}`},
		{"key without colon", `{"a":1,"b"`, `{"a":1}`},
		{"partial literal", `{"ok":tr`, `{}`},
		{"complete literal at end", `{"ok":true`, `{"ok":true}`},
		{"partial number", `{"n":12.`, `{}`},
		{"nested", `{"a":[1,{"b":"x`, `{"a":[1,{"b":"x"}]}`},
		{"trailing escape", `{"m":"a\`, `{"m":"a"}`},
		{"bare open brace", `{`, `{}`},
		{"bare open bracket", `[`, `[]`},
		{"top level string", `"hel`, `"hel"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, ok := Repair(tc.input)
			if !ok {
				t.Fatalf("Repair(%q) not ok", tc.input)
			}
			var want any
			if err := json.Unmarshal([]byte(tc.want), &want); err != nil {
				t.Fatalf("bad expectation: %v", err)
			}
			if !reflect.DeepEqual(value, want) {
				t.Fatalf("Repair(%q) = %#v, want %#v", tc.input, value, want)
			}
		})
	}
}

func TestRepairRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "garbage", "tru"} {
		if value, ok := Repair(input); ok {
			t.Fatalf("Repair(%q) unexpectedly ok: %#v", input, value)
		}
	}
}

func TestRepairerIncrementalConvergence(t *testing.T) {
	document := `{"title":"Todo App","framework":"react","dependencies":["zustand","tailwind"],` +
		`"phases":[{"name":"core","files":["src/app.tsx","src/store.ts"]},{"name":"polish","files":["src/theme.css"]}]}`
	var want any
	if err := json.Unmarshal([]byte(document), &want); err != nil {
		t.Fatalf("bad document: %v", err)
	}
	for _, step := range []int{1, 3, 7, 16} {
		r := NewRepairer()
		for i := 0; i < len(document); i += step {
			end := i + step
			if end > len(document) {
				end = len(document)
			}
			r.Feed(document[i:end])
			// Finalize mid-stream must never panic and reflects only the
			// content fed so far.
			_, _ = r.Finalize()
		}
		if r.Len() != len(document) {
			t.Fatalf("step %d: Len() = %d, want %d", step, r.Len(), len(document))
		}
		value, ok := r.Finalize()
		if !ok {
			t.Fatalf("step %d: final Finalize not ok", step)
		}
		if !reflect.DeepEqual(value, want) {
			t.Fatalf("step %d: converged value mismatch", step)
		}
	}
}

func TestRepairerFinalizeIdempotent(t *testing.T) {
	r := NewRepairer()
	r.Feed(`{"a":[1,2`)
	first, ok := r.Finalize()
	if !ok {
		t.Fatalf("expected ok")
	}
	second, ok := r.Finalize()
	if !ok {
		t.Fatalf("expected ok on repeat")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Finalize not idempotent: %#v vs %#v", first, second)
	}
}

func TestRepairPreservesLiveContentOverTrailingGarbage(t *testing.T) {
	value, ok := Repair(`{"a":1}trailing`)
	if !ok {
		t.Fatalf("expected ok")
	}
	var want any
	_ = json.Unmarshal([]byte(`{"a":1}`), &want)
	if !reflect.DeepEqual(value, want) {
		t.Fatalf("unexpected value: %#v", value)
	}
}
