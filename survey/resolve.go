// Package survey holds the pure composition, projection, validation and
// aggregation rules. Nothing in here touches storage or transport; every
// function is total over its inputs.
package survey

import (
	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/model"
)

// EffectiveQuestion is a link resolved against its catalog question, with
// override precedence link > question. It is the unit the public form, the
// validator and the aggregator all work from.
type EffectiveQuestion struct {
	QuestionID  uuid.UUID                `json:"questionId"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Type        model.QuestionType       `json:"type"`
	Required    bool                     `json:"required"`
	MaxLength   *int                     `json:"maxLength,omitempty"`
	ScaleConfig *model.LinearScaleConfig `json:"linearScaleConfig,omitempty"`
	Options     []model.QuestionOption   `json:"options,omitempty"`
}

// PublicSurvey is the submitter-facing contract: effective fields only, no
// link identities, no override bookkeeping.
type PublicSurvey struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Questions   []EffectiveQuestion `json:"questions"`
}

// Resolve merges a link's overrides onto its question. The second return is
// false when the link cannot be resolved (question missing), in which case
// the link must be excluded from any projection.
func Resolve(link model.QuestionLink) (EffectiveQuestion, bool) {
	q := link.Question
	if q == nil {
		return EffectiveQuestion{}, false
	}

	eff := EffectiveQuestion{
		QuestionID:  q.ID,
		Title:       q.Title,
		Description: q.Description,
		Type:        q.Type,
		Required:    q.Required,
		MaxLength:   q.MaxLength,
		ScaleConfig: q.ScaleConfig,
		Options:     q.Options,
	}
	if link.LabelOverride != nil {
		eff.Title = *link.LabelOverride
	}
	if link.DescriptionOverride != nil {
		eff.Description = *link.DescriptionOverride
	}
	if link.RequiredOverride != nil {
		eff.Required = *link.RequiredOverride
	}
	return eff, true
}

// Project derives the public view of a survey. It fails when the survey is
// not published or archived, and otherwise filters hidden and unresolvable
// links, preserving link order.
func Project(s model.Survey) (PublicSurvey, error) {
	if !s.Published || s.Archived {
		return PublicSurvey{}, model.NotAvailableError{SurveyID: s.ID}
	}

	questions := []EffectiveQuestion{}
	for _, link := range Ordered(s.Links) {
		if link.Hidden {
			continue
		}
		eff, ok := Resolve(link)
		if !ok {
			continue
		}
		questions = append(questions, eff)
	}

	return PublicSurvey{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Questions:   questions,
	}, nil
}

// ByQuestion indexes effective questions by question id.
func ByQuestion(questions []EffectiveQuestion) map[uuid.UUID]EffectiveQuestion {
	index := make(map[uuid.UUID]EffectiveQuestion, len(questions))
	for _, q := range questions {
		index[q.QuestionID] = q
	}
	return index
}

// ApplyPatch merges a partial update into a link. Override fields honor the
// tri-state convention: absent keeps, null clears, value sets. OrderIndex is
// intentionally not applied here; reordering goes through Move so sibling
// indices stay dense.
func ApplyPatch(link model.QuestionLink, patch model.LinkPatch) model.QuestionLink {
	link.LabelOverride = patch.LabelOverride.Apply(link.LabelOverride)
	link.DescriptionOverride = patch.DescriptionOverride.Apply(link.DescriptionOverride)
	link.RequiredOverride = patch.RequiredOverride.Apply(link.RequiredOverride)
	if patch.Hidden != nil {
		link.Hidden = *patch.Hidden
	}
	return link
}
