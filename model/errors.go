package model

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// Structural errors terminate an operation immediately.

type NotFoundError struct {
	Resource string
	ID       any
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// NotAvailableError is returned when a survey is requested publicly while
// unpublished or archived. It deliberately does not reveal which.
type NotAvailableError struct {
	SurveyID uuid.UUID
}

func (e NotAvailableError) Error() string {
	return fmt.Sprintf("survey %s is not available", e.SurveyID)
}

type DuplicateLinkError struct {
	SurveyID   uuid.UUID
	QuestionID uuid.UUID
}

func (e DuplicateLinkError) Error() string {
	return fmt.Sprintf("question %s is already linked to survey %s", e.QuestionID, e.SurveyID)
}

type PublishPreconditionError struct {
	SurveyID uuid.UUID
}

func (e PublishPreconditionError) Error() string {
	return fmt.Sprintf("survey %s has no questions and cannot be published", e.SurveyID)
}

// ValidationError is the family of per-question submission failures. Each
// carries the offending question id so the boundary can point at the field.
type ValidationError interface {
	error
	Question() uuid.UUID
	Kind() string
}

type RequiredFieldError struct {
	QuestionID uuid.UUID
}

func (e RequiredFieldError) Error() string {
	return fmt.Sprintf("question %s is required", e.QuestionID)
}
func (e RequiredFieldError) Question() uuid.UUID { return e.QuestionID }
func (RequiredFieldError) Kind() string          { return "REQUIRED_FIELD" }

type MaxLengthExceededError struct {
	QuestionID uuid.UUID
	Max        int
}

func (e MaxLengthExceededError) Error() string {
	return fmt.Sprintf("answer to question %s exceeds maximum length %d", e.QuestionID, e.Max)
}
func (e MaxLengthExceededError) Question() uuid.UUID { return e.QuestionID }
func (MaxLengthExceededError) Kind() string          { return "MAX_LENGTH_EXCEEDED" }

type InvalidSelectionError struct {
	QuestionID uuid.UUID
	OptionID   uuid.UUID
	Reason     string
}

func (e InvalidSelectionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid selection for question %s: %s", e.QuestionID, e.Reason)
	}
	return fmt.Sprintf("invalid selection for question %s: option %s", e.QuestionID, e.OptionID)
}
func (e InvalidSelectionError) Question() uuid.UUID { return e.QuestionID }
func (InvalidSelectionError) Kind() string          { return "INVALID_SELECTION" }

type OutOfRangeError struct {
	QuestionID uuid.UUID
	Value      int
	Min        int
	Max        int
	Step       int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("value %d for question %s is outside scale [%d,%d] step %d",
		e.Value, e.QuestionID, e.Min, e.Max, e.Step)
}
func (e OutOfRangeError) Question() uuid.UUID { return e.QuestionID }
func (OutOfRangeError) Kind() string          { return "OUT_OF_RANGE" }

// StaleSchemaError marks an answer keyed to a question that is not part of
// the survey's current public projection. The whole submission is rejected.
type StaleSchemaError struct {
	QuestionID uuid.UUID
}

func (e StaleSchemaError) Error() string {
	return fmt.Sprintf("question %s is not part of the current survey schema", e.QuestionID)
}
func (e StaleSchemaError) Question() uuid.UUID { return e.QuestionID }
func (StaleSchemaError) Kind() string          { return "STALE_SCHEMA" }
