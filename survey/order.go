package survey

import (
	"sort"

	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/model"
)

// Ordered returns the links sorted by order index. The sort is stable so
// duplicate indices fall back to insertion order.
func Ordered(links []model.QuestionLink) []model.QuestionLink {
	out := make([]model.QuestionLink, len(links))
	copy(out, links)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// Renumber assigns a dense zero-based index sequence, preserving the current
// order. Every link mutation that can gap or duplicate the sequence ends
// with a Renumber pass.
func Renumber(links []model.QuestionLink) []model.QuestionLink {
	out := Ordered(links)
	for i := range out {
		out[i].OrderIndex = i
	}
	return out
}

// Insert places a link at the given position (clamped to the list bounds)
// and renumbers. A negative position appends.
func Insert(links []model.QuestionLink, link model.QuestionLink, at int) []model.QuestionLink {
	out := Renumber(links)
	if at < 0 || at > len(out) {
		at = len(out)
	}
	link.OrderIndex = at
	// shift everything at and after the slot
	for i := range out {
		if out[i].OrderIndex >= at {
			out[i].OrderIndex++
		}
	}
	return Renumber(append(out, link))
}

// Move relocates the identified link to the target index, shifting everything
// between the old and new position by one, and renumbers.
func Move(links []model.QuestionLink, id uuid.UUID, target int) []model.QuestionLink {
	out := Renumber(links)

	from := -1
	for i, l := range out {
		if l.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return out
	}
	if target < 0 {
		target = 0
	}
	if target >= len(out) {
		target = len(out) - 1
	}
	if target == from {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:target], append([]model.QuestionLink{moved}, out[target:]...)...)
	return Renumber(out)
}

// Remove drops the identified link and renumbers the rest.
func Remove(links []model.QuestionLink, id uuid.UUID) []model.QuestionLink {
	out := Renumber(links)
	for i, l := range out {
		if l.ID == id {
			out = append(out[:i], out[i+1:]...)
			break
		}
	}
	return Renumber(out)
}
