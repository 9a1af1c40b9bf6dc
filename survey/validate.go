package survey

import (
	"unicode/utf8"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/talaatharb/survey-forge/model"
)

// Validate checks a submission against the public projection current at
// submission time. All failing questions are reported in one pass; the
// returned error is a *multierror.Error whose wrapped errors are all
// model.ValidationError values. A nil return means the submission may be
// recorded.
func Validate(questions []EffectiveQuestion, answers []model.Answer) error {
	index := ByQuestion(questions)

	var errs *multierror.Error

	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		q, ok := index[a.QuestionID]
		if !ok {
			// schema drift between the form the submitter loaded and now
			errs = multierror.Append(errs, model.StaleSchemaError{QuestionID: a.QuestionID})
			continue
		}
		if hasAnswer(a, q) {
			answered[a.QuestionID] = true
		}
		if err := validateAnswer(a, q); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	for _, q := range questions {
		if q.Required && !answered[q.QuestionID] {
			errs = multierror.Append(errs, model.RequiredFieldError{QuestionID: q.QuestionID})
		}
	}

	return errs.ErrorOrNil()
}

// hasAnswer reports whether the payload slot the question's answer type
// prescribes is populated. Payloads of the wrong type never count as an
// answer: a text fragment does not satisfy a required checkbox question.
func hasAnswer(a model.Answer, q EffectiveQuestion) bool {
	switch q.Type.AnswerType() {
	case model.AnswerText:
		return a.TextAnswer != ""
	case model.AnswerSelection:
		return len(a.SelectedOptionIDs) > 0
	case model.AnswerNumeric:
		return a.NumericAnswer != nil
	}
	return false
}

func validateAnswer(a model.Answer, q EffectiveQuestion) error {
	if !hasAnswer(a, q) {
		return nil
	}

	switch {
	case q.Type.IsText():
		if q.MaxLength != nil && utf8.RuneCountInString(a.TextAnswer) > *q.MaxLength {
			return model.MaxLengthExceededError{QuestionID: q.QuestionID, Max: *q.MaxLength}
		}

	case q.Type == model.MultipleChoice || q.Type == model.Dropdown:
		if len(a.SelectedOptionIDs) != 1 {
			return model.InvalidSelectionError{QuestionID: q.QuestionID, Reason: "exactly one option must be selected"}
		}
		return validateOptions(a.SelectedOptionIDs, q)

	case q.Type == model.Checkboxes:
		return validateOptions(a.SelectedOptionIDs, q)

	case q.Type == model.LinearScale:
		return validateScale(*a.NumericAnswer, q)
	}

	return nil
}

func validateOptions(selected []uuid.UUID, q EffectiveQuestion) error {
	valid := make(map[uuid.UUID]bool, len(q.Options))
	for _, opt := range q.Options {
		valid[opt.ID] = true
	}
	for _, id := range selected {
		if !valid[id] {
			return model.InvalidSelectionError{QuestionID: q.QuestionID, OptionID: id}
		}
	}
	return nil
}

func validateScale(value int, q EffectiveQuestion) error {
	cfg := q.ScaleConfig
	if cfg == nil {
		return nil
	}
	step := cfg.EffectiveStep()
	outOfRange := model.OutOfRangeError{
		QuestionID: q.QuestionID,
		Value:      value,
		Min:        cfg.MinValue,
		Max:        cfg.MaxValue,
		Step:       step,
	}
	if value < cfg.MinValue || value > cfg.MaxValue {
		return outOfRange
	}
	// must be reachable from the minimum in whole steps
	if (value-cfg.MinValue)%step != 0 {
		return outOfRange
	}
	return nil
}

// BuildDetails turns validated answers into recorded details, classifying
// the payload from the question type and snapshotting option labels. Answers
// whose prescribed payload is empty produce no detail, so every recorded
// detail has exactly one populated payload. Call only after Validate
// succeeded.
func BuildDetails(questions []EffectiveQuestion, answers []model.Answer) []model.AnswerDetail {
	index := ByQuestion(questions)

	details := make([]model.AnswerDetail, 0, len(answers))
	for _, a := range answers {
		q, ok := index[a.QuestionID]
		if !ok || !hasAnswer(a, q) {
			continue
		}

		detail := model.AnswerDetail{
			QuestionID: a.QuestionID,
			AnswerType: q.Type.AnswerType(),
		}
		switch detail.AnswerType {
		case model.AnswerText:
			detail.TextAnswer = a.TextAnswer
		case model.AnswerNumeric:
			detail.NumericAnswer = a.NumericAnswer
		case model.AnswerSelection:
			labels := make(map[uuid.UUID]string, len(q.Options))
			for _, opt := range q.Options {
				labels[opt.ID] = opt.Label
			}
			for _, id := range a.SelectedOptionIDs {
				detail.SelectedOptions = append(detail.SelectedOptions, model.SelectedOption{
					OptionID: id,
					Label:    labels[id],
				})
			}
		}
		details = append(details, detail)
	}
	return details
}
