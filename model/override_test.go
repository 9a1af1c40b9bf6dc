package model

import (
	"encoding/json"
	"testing"
)

func TestPatchDistinguishesAbsentNullAndValue(t *testing.T) {
	var patch LinkPatch
	body := `{"labelOverride":"Full name","descriptionOverride":null}`
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !patch.LabelOverride.Present || patch.LabelOverride.Null {
		t.Error("present value must be Present and not Null")
	}
	if patch.LabelOverride.Value != "Full name" {
		t.Errorf("value = %q", patch.LabelOverride.Value)
	}

	if !patch.DescriptionOverride.Present || !patch.DescriptionOverride.Null {
		t.Error("explicit null must be Present and Null")
	}

	if patch.RequiredOverride.Present {
		t.Error("absent key must stay not Present")
	}
}

func TestPatchApply(t *testing.T) {
	current := "inherited"

	var absent Patch[string]
	if got := absent.Apply(&current); got != &current {
		t.Error("absent patch must return the current pointer unchanged")
	}

	null := Patch[string]{Present: true, Null: true}
	if got := null.Apply(&current); got != nil {
		t.Errorf("null patch must clear, got %v", got)
	}

	set := Patch[string]{Present: true, Value: "override"}
	got := set.Apply(nil)
	if got == nil || *got != "override" {
		t.Errorf("set patch must produce the value, got %v", got)
	}
}

func TestPatchFalseIsAValueNotAClear(t *testing.T) {
	var patch LinkPatch
	if err := json.Unmarshal([]byte(`{"requiredOverride":false}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := patch.RequiredOverride.Apply(nil)
	if got == nil || *got {
		t.Errorf("false must set an override to false, got %v", got)
	}
}
