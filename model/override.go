package model

import (
	"bytes"
	"encoding/json"
)

// Patch is a tri-state update field: absent from the JSON document means
// "leave unchanged", an explicit null means "clear back to inherited", and a
// value means "set". encoding/json only invokes UnmarshalJSON for keys that
// are present, which is what makes the absent case distinguishable.
type Patch[T any] struct {
	Present bool
	Null    bool
	Value   T
}

var jsonNull = []byte("null")

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Present = true
	if bytes.Equal(data, jsonNull) {
		p.Null = true
		return nil
	}
	return json.Unmarshal(data, &p.Value)
}

// Apply resolves the patch against the current value: a pointer for a set
// value, nil for a cleared one, the current pointer when absent.
func (p Patch[T]) Apply(current *T) *T {
	if !p.Present {
		return current
	}
	if p.Null {
		return nil
	}
	v := p.Value
	return &v
}

// LinkPatch is a partial update of a question link. Override fields are
// tri-state; the rest follow the usual nil-means-unchanged convention.
type LinkPatch struct {
	OrderIndex          *int          `json:"orderIndex"`
	LabelOverride       Patch[string] `json:"labelOverride"`
	DescriptionOverride Patch[string] `json:"descriptionOverride"`
	RequiredOverride    Patch[bool]   `json:"requiredOverride"`
	Hidden              *bool         `json:"hidden"`
}
