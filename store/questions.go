package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/talaatharb/survey-forge/model"
)

const questionColumns = `
	q.id, q.title, q.description, q.type, q.required, q.max_length,
	q.scale_min, q.scale_max, q.scale_step, q.scale_left_label, q.scale_right_label,
	q.archived, q.created_at, q.updated_at`

func scanQuestion(row interface{ Scan(...any) error }) (model.Question, error) {
	var q model.Question
	var maxLength sql.NullInt64
	var scaleMin, scaleMax, scaleStep sql.NullInt64
	var scaleLeft, scaleRight sql.NullString

	err := row.Scan(
		&q.ID, &q.Title, &q.Description, &q.Type, &q.Required, &maxLength,
		&scaleMin, &scaleMax, &scaleStep, &scaleLeft, &scaleRight,
		&q.Archived, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return q, err
	}

	q.MaxLength = fromNullInt(maxLength)
	if scaleMin.Valid && scaleMax.Valid {
		q.ScaleConfig = &model.LinearScaleConfig{
			MinValue:   int(scaleMin.Int64),
			MaxValue:   int(scaleMax.Int64),
			Step:       int(scaleStep.Int64),
			LeftLabel:  scaleLeft.String,
			RightLabel: scaleRight.String,
		}
	}
	return q, nil
}

func scaleFields(q model.Question) (min, max, step sql.NullInt64, left, right sql.NullString) {
	if q.ScaleConfig == nil {
		return
	}
	min = sql.NullInt64{Int64: int64(q.ScaleConfig.MinValue), Valid: true}
	max = sql.NullInt64{Int64: int64(q.ScaleConfig.MaxValue), Valid: true}
	step = sql.NullInt64{Int64: int64(q.ScaleConfig.EffectiveStep()), Valid: true}
	left = sql.NullString{String: q.ScaleConfig.LeftLabel, Valid: true}
	right = sql.NullString{String: q.ScaleConfig.RightLabel, Valid: true}
	return
}

// InsertQuestion stores a new catalog question with its options, assigning
// identities and timestamps as needed.
func InsertQuestion(ctx context.Context, db Querier, q *model.Question) error {
	if q.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "generate question id")
		}
		q.ID = id
	}
	now := time.Now().UTC()
	q.CreatedAt, q.UpdatedAt = now, now

	scaleMin, scaleMax, scaleStep, scaleLeft, scaleRight := scaleFields(*q)
	_, err := db.ExecContext(ctx, `
		INSERT INTO question (
			id, title, description, type, required, max_length,
			scale_min, scale_max, scale_step, scale_left_label, scale_right_label,
			archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		q.ID, q.Title, q.Description, q.Type, q.Required, nullInt(q.MaxLength),
		scaleMin, scaleMax, scaleStep, scaleLeft, scaleRight,
		q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert question")
	}

	return insertOptions(ctx, db, q.ID, q.Options)
}

func insertOptions(ctx context.Context, db Querier, questionID uuid.UUID, options []model.QuestionOption) error {
	for i := range options {
		if options[i].ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return errors.Wrap(err, "generate option id")
			}
			options[i].ID = id
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO question_option (id, question_id, label, order_index)
			VALUES (?, ?, ?, ?)`,
			options[i].ID, questionID, options[i].Label, options[i].OrderIndex,
		)
		if err != nil {
			return errors.Wrap(err, "insert question option")
		}
	}
	return nil
}

// GetQuestion loads a non-archived question with its options.
func GetQuestion(ctx context.Context, db Querier, id uuid.UUID) (model.Question, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		WHERE q.id = ? AND q.archived = 0`,
		id,
	)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return q, model.NotFoundError{Resource: "question", ID: id}
	}
	if err != nil {
		return q, errors.Wrap(err, "get question")
	}

	options, err := loadOptions(ctx, db, id)
	if err != nil {
		return q, err
	}
	q.Options = options[id]
	return q, nil
}

func loadOptions(ctx context.Context, db Querier, questionIDs ...uuid.UUID) (map[uuid.UUID][]model.QuestionOption, error) {
	byQuestion := make(map[uuid.UUID][]model.QuestionOption)
	if len(questionIDs) == 0 {
		return byQuestion, nil
	}

	args := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx, `
		SELECT question_id, id, label, order_index
		FROM question_option
		WHERE question_id IN (`+placeholders(len(questionIDs))+`)
		ORDER BY question_id, order_index`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get question options")
	}
	defer rows.Close()

	for rows.Next() {
		var questionID uuid.UUID
		var opt model.QuestionOption
		err = rows.Scan(&questionID, &opt.ID, &opt.Label, &opt.OrderIndex)
		if err != nil {
			return nil, errors.Wrap(err, "scan question option")
		}
		byQuestion[questionID] = append(byQuestion[questionID], opt)
	}
	return byQuestion, rows.Err()
}

// ListQuestions pages through non-archived questions, optionally filtered by
// a search term matched against title and description.
func ListQuestions(ctx context.Context, db Querier, search string, page, size int) (model.Page[model.Question], error) {
	where := "q.archived = 0"
	args := []any{}
	if search != "" {
		where += " AND (q.title LIKE ? OR q.description LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM question q WHERE `+where, args...).Scan(&total)
	if err != nil {
		return model.Page[model.Question]{}, errors.Wrap(err, "count questions")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		WHERE `+where+`
		ORDER BY q.created_at, q.id
		LIMIT ? OFFSET ?`,
		append(args, size, page*size)...,
	)
	if err != nil {
		return model.Page[model.Question]{}, errors.Wrap(err, "list questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	ids := []uuid.UUID{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return model.Page[model.Question]{}, errors.Wrap(err, "scan question")
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Question]{}, err
	}

	options, err := loadOptions(ctx, db, ids...)
	if err != nil {
		return model.Page[model.Question]{}, err
	}
	for i := range questions {
		questions[i].Options = options[questions[i].ID]
	}

	return model.NewPage(questions, page, size, total), nil
}

// UpdateQuestion rewrites a question's fields and replaces its option set.
func UpdateQuestion(ctx context.Context, db Querier, q *model.Question) error {
	q.UpdatedAt = time.Now().UTC()

	scaleMin, scaleMax, scaleStep, scaleLeft, scaleRight := scaleFields(*q)
	res, err := db.ExecContext(ctx, `
		UPDATE question
		SET
			title = ?, description = ?, type = ?, required = ?, max_length = ?,
			scale_min = ?, scale_max = ?, scale_step = ?,
			scale_left_label = ?, scale_right_label = ?,
			updated_at = ?
		WHERE id = ? AND archived = 0`,
		q.Title, q.Description, q.Type, q.Required, nullInt(q.MaxLength),
		scaleMin, scaleMax, scaleStep, scaleLeft, scaleRight,
		q.UpdatedAt, q.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update question")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update question verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "question", ID: q.ID}
	}

	_, err = db.ExecContext(ctx, `DELETE FROM question_option WHERE question_id = ?`, q.ID)
	if err != nil {
		return errors.Wrap(err, "replace question options")
	}
	return insertOptions(ctx, db, q.ID, q.Options)
}

// ArchiveQuestion soft-deletes a question. Links referencing it keep
// resolving; it just stops being offered by the catalog.
func ArchiveQuestion(ctx context.Context, db Querier, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `
		UPDATE question SET archived = 1, updated_at = ?
		WHERE id = ? AND archived = 0`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "archive question")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "archive question verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "question", ID: id}
	}
	return nil
}

// QuestionExists reports whether the id is known, archived or not. Used by
// import reconciliation.
func QuestionExists(ctx context.Context, db Querier, id uuid.UUID) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM question WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "question exists")
	}
	return true, nil
}
