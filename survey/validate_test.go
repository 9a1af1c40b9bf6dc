package survey

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/talaatharb/survey-forge/model"
)

func effText(t *testing.T, required bool, maxLength *int) EffectiveQuestion {
	return EffectiveQuestion{
		QuestionID: newID(t),
		Title:      "free text",
		Type:       model.ShortAnswer,
		Required:   required,
		MaxLength:  maxLength,
	}
}

func effChoice(t *testing.T, typ model.QuestionType, labels ...string) EffectiveQuestion {
	eff := EffectiveQuestion{QuestionID: newID(t), Title: "choice", Type: typ}
	for i, label := range labels {
		eff.Options = append(eff.Options, model.QuestionOption{ID: newID(t), Label: label, OrderIndex: i})
	}
	return eff
}

func effScale(t *testing.T, min, max, step int) EffectiveQuestion {
	return EffectiveQuestion{
		QuestionID:  newID(t),
		Title:       "scale",
		Type:        model.LinearScale,
		ScaleConfig: &model.LinearScaleConfig{MinValue: min, MaxValue: max, Step: step},
	}
}

func singleError(t *testing.T, err error) model.ValidationError {
	t.Helper()
	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("want *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 1 {
		t.Fatalf("want exactly 1 validation error, got %d: %v", len(merr.Errors), merr)
	}
	ve, ok := merr.Errors[0].(model.ValidationError)
	if !ok {
		t.Fatalf("want model.ValidationError, got %T", merr.Errors[0])
	}
	return ve
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	q := effText(t, true, intptr(10))
	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, TextAnswer: "hello"},
	})
	if err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}
}

func TestValidateRequiredAnswerMissing(t *testing.T) {
	q := effText(t, true, nil)

	for name, answers := range map[string][]model.Answer{
		"absent":       {},
		"empty string": {{QuestionID: q.QuestionID, TextAnswer: ""}},
	} {
		err := Validate([]EffectiveQuestion{q}, answers)
		ve := singleError(t, err)
		if _, ok := ve.(model.RequiredFieldError); !ok {
			t.Errorf("%s: want RequiredFieldError, got %T", name, ve)
		}
		if ve.Question() != q.QuestionID {
			t.Errorf("%s: error must name the failing question", name)
		}
	}
}

func TestValidateRequiredIgnoresWrongTypedPayload(t *testing.T) {
	checkboxes := effChoice(t, model.Checkboxes, "A", "B")
	checkboxes.Required = true
	text := effText(t, true, nil)

	// a text fragment does not answer a checkbox question
	err := Validate([]EffectiveQuestion{checkboxes}, []model.Answer{
		{QuestionID: checkboxes.QuestionID, TextAnswer: "not a selection"},
	})
	ve := singleError(t, err)
	if _, ok := ve.(model.RequiredFieldError); !ok {
		t.Errorf("text payload on required checkboxes: want RequiredFieldError, got %T", ve)
	}

	// and a selection does not answer a text question
	err = Validate([]EffectiveQuestion{text}, []model.Answer{
		{QuestionID: text.QuestionID, SelectedOptionIDs: []uuid.UUID{newID(t)}},
	})
	ve = singleError(t, err)
	if _, ok := ve.(model.RequiredFieldError); !ok {
		t.Errorf("selection payload on required text question: want RequiredFieldError, got %T", ve)
	}
}

func TestValidateRequiredEmptySelection(t *testing.T) {
	q := effChoice(t, model.Checkboxes, "A", "B")
	q.Required = true

	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, SelectedOptionIDs: []uuid.UUID{}},
	})
	ve := singleError(t, err)
	if _, ok := ve.(model.RequiredFieldError); !ok {
		t.Errorf("empty selection list on required question: want RequiredFieldError, got %T", ve)
	}
}

func TestValidateMaxLengthBoundary(t *testing.T) {
	q := effText(t, true, intptr(10))

	if err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, TextAnswer: "exactly10c"},
	}); err != nil {
		t.Errorf("answer at the limit must pass: %v", err)
	}

	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, TextAnswer: "elevenchars"},
	})
	ve := singleError(t, err)
	mle, ok := ve.(model.MaxLengthExceededError)
	if !ok {
		t.Fatalf("want MaxLengthExceededError, got %T", ve)
	}
	if mle.Max != 10 {
		t.Errorf("error must carry the limit, got %d", mle.Max)
	}
}

func TestValidateSingleChoiceExactlyOne(t *testing.T) {
	q := effChoice(t, model.MultipleChoice, "A", "B")

	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, SelectedOptionIDs: []uuid.UUID{q.Options[0].ID, q.Options[1].ID}},
	})
	ve := singleError(t, err)
	if _, ok := ve.(model.InvalidSelectionError); !ok {
		t.Errorf("two selections on a single-choice question: want InvalidSelectionError, got %T", ve)
	}
}

func TestValidateForeignOptionAlwaysRejected(t *testing.T) {
	q := effChoice(t, model.Checkboxes, "A", "B")
	foreign := newID(t)

	// a foreign id is rejected even when the other selections are valid
	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, SelectedOptionIDs: []uuid.UUID{q.Options[0].ID, foreign}},
	})
	ve := singleError(t, err)
	ise, ok := ve.(model.InvalidSelectionError)
	if !ok {
		t.Fatalf("want InvalidSelectionError, got %T", ve)
	}
	if ise.OptionID != foreign {
		t.Error("error must name the foreign option id")
	}
}

func TestValidateOptionalCheckboxesMayBeEmpty(t *testing.T) {
	q := effChoice(t, model.Checkboxes, "A", "B")
	if err := Validate([]EffectiveQuestion{q}, []model.Answer{}); err != nil {
		t.Errorf("optional checkboxes may go unanswered: %v", err)
	}
}

func TestValidateScaleBounds(t *testing.T) {
	q := effScale(t, 1, 5, 1)

	for _, v := range []int{1, 3, 5} {
		if err := Validate([]EffectiveQuestion{q}, []model.Answer{
			{QuestionID: q.QuestionID, NumericAnswer: intptr(v)},
		}); err != nil {
			t.Errorf("value %d within [1,5] must pass: %v", v, err)
		}
	}

	for _, v := range []int{0, 6} {
		err := Validate([]EffectiveQuestion{q}, []model.Answer{
			{QuestionID: q.QuestionID, NumericAnswer: intptr(v)},
		})
		ve := singleError(t, err)
		if _, ok := ve.(model.OutOfRangeError); !ok {
			t.Errorf("value %d outside [1,5]: want OutOfRangeError, got %T", v, ve)
		}
	}
}

func TestValidateScaleStepReachability(t *testing.T) {
	q := effScale(t, 0, 10, 3)

	for _, v := range []int{0, 3, 6, 9} {
		if err := Validate([]EffectiveQuestion{q}, []model.Answer{
			{QuestionID: q.QuestionID, NumericAnswer: intptr(v)},
		}); err != nil {
			t.Errorf("value %d is reachable with step 3: %v", v, err)
		}
	}

	for _, v := range []int{1, 2, 4, 10} {
		err := Validate([]EffectiveQuestion{q}, []model.Answer{
			{QuestionID: q.QuestionID, NumericAnswer: intptr(v)},
		})
		ve := singleError(t, err)
		if _, ok := ve.(model.OutOfRangeError); !ok {
			t.Errorf("value %d is not reachable with step 3: want OutOfRangeError, got %T", v, ve)
		}
	}
}

func TestValidateStaleSchema(t *testing.T) {
	q := effText(t, false, nil)
	gone := newID(t)

	err := Validate([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: gone, TextAnswer: "answer to a question that no longer exists"},
	})
	ve := singleError(t, err)
	if _, ok := ve.(model.StaleSchemaError); !ok {
		t.Errorf("want StaleSchemaError, got %T", ve)
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	required := effText(t, true, nil)
	limited := effText(t, false, intptr(3))
	scale := effScale(t, 1, 5, 1)

	err := Validate([]EffectiveQuestion{required, limited, scale}, []model.Answer{
		{QuestionID: limited.QuestionID, TextAnswer: "too long"},
		{QuestionID: scale.QuestionID, NumericAnswer: intptr(42)},
	})
	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("want *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 3 {
		t.Fatalf("all failing questions must be reported in one pass, got %d errors: %v", len(merr.Errors), merr)
	}
}

func TestBuildDetailsClassifiesAnswerTypes(t *testing.T) {
	text := effText(t, false, nil)
	date := EffectiveQuestion{QuestionID: newID(t), Type: model.Date}
	choice := effChoice(t, model.Dropdown, "A", "B")
	scale := effScale(t, 1, 5, 1)

	questions := []EffectiveQuestion{text, date, choice, scale}
	details := BuildDetails(questions, []model.Answer{
		{QuestionID: text.QuestionID, TextAnswer: "hello"},
		{QuestionID: date.QuestionID, TextAnswer: "2026-08-30"},
		{QuestionID: choice.QuestionID, SelectedOptionIDs: []uuid.UUID{choice.Options[1].ID}},
		{QuestionID: scale.QuestionID, NumericAnswer: intptr(4)},
	})
	if len(details) != 4 {
		t.Fatalf("expected 4 details, got %d", len(details))
	}

	want := []model.AnswerType{model.AnswerText, model.AnswerText, model.AnswerSelection, model.AnswerNumeric}
	for i, d := range details {
		if d.AnswerType != want[i] {
			t.Errorf("detail %d: answer type = %s, want %s", i, d.AnswerType, want[i])
		}
	}

	if details[2].SelectedOptions[0].Label != "B" {
		t.Error("selection details must snapshot the option label")
	}
	if details[3].NumericAnswer == nil || *details[3].NumericAnswer != 4 {
		t.Error("numeric details must carry the value")
	}
}

func TestBuildDetailsSkipsEmptyAnswers(t *testing.T) {
	q := effText(t, false, nil)
	details := BuildDetails([]EffectiveQuestion{q}, []model.Answer{
		{QuestionID: q.QuestionID, TextAnswer: ""},
	})
	if len(details) != 0 {
		t.Errorf("empty answers must not be recorded, got %d details", len(details))
	}
}

func TestBuildDetailsSkipsWrongTypedPayloads(t *testing.T) {
	text := effText(t, false, nil)
	choice := effChoice(t, model.Checkboxes, "A")

	details := BuildDetails([]EffectiveQuestion{text, choice}, []model.Answer{
		{QuestionID: text.QuestionID, SelectedOptionIDs: []uuid.UUID{choice.Options[0].ID}},
		{QuestionID: choice.QuestionID, TextAnswer: "stray"},
	})
	if len(details) != 0 {
		t.Errorf("wrong-typed payloads must not be recorded, got %d details", len(details))
	}
}
