package survey

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/model"
)

// ValidateQuestion checks a catalog definition before it is created or
// updated: choice types need at least one option, linear scales need a
// coherent range.
func ValidateQuestion(q model.Question) error {
	if q.Title == "" {
		return errors.New("question title is required")
	}
	if !q.Type.Valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	if q.Type.HasOptions() && len(q.Options) == 0 {
		return fmt.Errorf("at least one option is required for %s", q.Type)
	}

	if q.Type == model.LinearScale {
		cfg := q.ScaleConfig
		if cfg == nil {
			return errors.New("linear scale configuration is required for LINEAR_SCALE")
		}
		if cfg.MinValue >= cfg.MaxValue {
			return errors.New("scale min value must be less than max value")
		}
		if cfg.Step <= 0 {
			return errors.New("scale step must be greater than 0")
		}
	}

	return nil
}

// Copy derives an independent question from an existing one: same shape,
// fresh identities throughout, so two surveys can evolve their own variant
// of a shared template without coupling.
func Copy(original model.Question) (model.Question, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.Question{}, err
	}

	dup := model.Question{
		ID:          id,
		Title:       original.Title + " (Copy)",
		Description: original.Description,
		Type:        original.Type,
		Required:    original.Required,
		MaxLength:   original.MaxLength,
	}
	if original.ScaleConfig != nil {
		cfg := *original.ScaleConfig
		dup.ScaleConfig = &cfg
	}
	for _, opt := range original.Options {
		optID, err := uuid.NewV4()
		if err != nil {
			return model.Question{}, err
		}
		dup.Options = append(dup.Options, model.QuestionOption{
			ID:         optID,
			Label:      opt.Label,
			OrderIndex: opt.OrderIndex,
		})
	}
	return dup, nil
}
