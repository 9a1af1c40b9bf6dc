package model

import (
	"time"

	"github.com/gofrs/uuid"
)

type QuestionType string

const (
	ShortAnswer    QuestionType = "SHORT_ANSWER"
	Paragraph      QuestionType = "PARAGRAPH"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Checkboxes     QuestionType = "CHECKBOXES"
	Dropdown       QuestionType = "DROPDOWN"
	Date           QuestionType = "DATE"
	Time           QuestionType = "TIME"
	LinearScale    QuestionType = "LINEAR_SCALE"
)

var questionTypes = map[QuestionType]bool{
	ShortAnswer:    true,
	Paragraph:      true,
	MultipleChoice: true,
	Checkboxes:     true,
	Dropdown:       true,
	Date:           true,
	Time:           true,
	LinearScale:    true,
}

func (t QuestionType) Valid() bool {
	return questionTypes[t]
}

// HasOptions reports whether answers to this type designate option ids.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == Checkboxes || t == Dropdown
}

// IsText reports whether answers to this type are free text.
// DATE and TIME answers travel as text in ISO form.
func (t QuestionType) IsText() bool {
	return t == ShortAnswer || t == Paragraph || t == Date || t == Time
}

// AnswerType classifies the payload a question of this type produces.
func (t QuestionType) AnswerType() AnswerType {
	switch {
	case t.HasOptions():
		return AnswerSelection
	case t == LinearScale:
		return AnswerNumeric
	default:
		return AnswerText
	}
}

type AnswerType string

const (
	AnswerText      AnswerType = "TEXT"
	AnswerSelection AnswerType = "SELECTION"
	AnswerNumeric   AnswerType = "NUMERIC"
)

type LinearScaleConfig struct {
	MinValue   int    `json:"minValue"`
	MaxValue   int    `json:"maxValue"`
	Step       int    `json:"step"`
	LeftLabel  string `json:"leftLabel,omitempty"`
	RightLabel string `json:"rightLabel,omitempty"`
}

// EffectiveStep treats a missing or non-positive step as 1.
func (c LinearScaleConfig) EffectiveStep() int {
	if c.Step <= 0 {
		return 1
	}
	return c.Step
}

type QuestionOption struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	OrderIndex int       `json:"orderIndex"`
}

// Question is a reusable catalog entry. Surveys reference it through
// QuestionLink and never store a copy of it.
type Question struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Type        QuestionType       `json:"type"`
	Required    bool               `json:"required"`
	MaxLength   *int               `json:"maxLength,omitempty"`
	ScaleConfig *LinearScaleConfig `json:"linearScaleConfig,omitempty"`
	Options     []QuestionOption   `json:"options,omitempty"`
	Archived    bool               `json:"archived,omitempty"`
	CreatedAt   time.Time          `json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty"`
}

// OptionIDs returns the set of option ids defined on the question.
func (q Question) OptionIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(q.Options))
	for _, opt := range q.Options {
		ids[opt.ID] = true
	}
	return ids
}

type Survey struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Published   bool           `json:"published"`
	Archived    bool           `json:"archived,omitempty"`
	Links       []QuestionLink `json:"questionLinks,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// QuestionLink attaches a catalog question to a survey with a position and
// optional per-survey overrides. Question is resolved on load, never stored.
type QuestionLink struct {
	ID                  uuid.UUID `json:"id"`
	SurveyID            uuid.UUID `json:"-"`
	QuestionID          uuid.UUID `json:"questionId"`
	OrderIndex          int       `json:"orderIndex"`
	LabelOverride       *string   `json:"labelOverride,omitempty"`
	DescriptionOverride *string   `json:"descriptionOverride,omitempty"`
	RequiredOverride    *bool     `json:"requiredOverride,omitempty"`
	Hidden              bool      `json:"hidden"`
	Question            *Question `json:"question,omitempty"`
}

// Answer is one submitted answer as it arrives from a submitter.
type Answer struct {
	QuestionID        uuid.UUID   `json:"questionId"`
	TextAnswer        string      `json:"textAnswer,omitempty"`
	SelectedOptionIDs []uuid.UUID `json:"selectedOptionIds,omitempty"`
	NumericAnswer     *int        `json:"numericAnswer,omitempty"`
}

type Submission struct {
	SubmitterID string   `json:"submitterId,omitempty"`
	Answers     []Answer `json:"answers"`
}

// SelectedOption records a chosen option together with its label at
// submission time, so later option edits do not rewrite history.
type SelectedOption struct {
	OptionID uuid.UUID `json:"optionId"`
	Label    string    `json:"label"`
}

// AnswerDetail is one recorded answer. Exactly one payload is populated,
// according to AnswerType.
type AnswerDetail struct {
	QuestionID      uuid.UUID        `json:"questionId"`
	AnswerType      AnswerType       `json:"answerType"`
	TextAnswer      string           `json:"textAnswer,omitempty"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
	NumericAnswer   *int             `json:"numericAnswer,omitempty"`
}

// SurveyResponse is immutable once recorded. Corrections are new submissions.
type SurveyResponse struct {
	ID          uuid.UUID      `json:"id"`
	SurveyID    uuid.UUID      `json:"surveyId"`
	SubmittedAt time.Time      `json:"submittedAt"`
	SubmitterID string         `json:"submitterId,omitempty"`
	SubmitterIP string         `json:"-"`
	Answers     []AnswerDetail `json:"answers"`
}

type ResponseSummary struct {
	ID          uuid.UUID `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	SubmitterID string    `json:"submitterId,omitempty"`
	AnswerCount int       `json:"answerCount"`
}

type SurveySummary struct {
	Survey
	QuestionCount int `json:"questionCount"`
	ResponseCount int `json:"responseCount"`
}
