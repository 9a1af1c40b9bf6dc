package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/talaatharb/survey-forge/model"
)

// InsertSurvey stores a new survey. New surveys always start unpublished.
func InsertSurvey(ctx context.Context, db Querier, s *model.Survey) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "generate survey id")
		}
		s.ID = id
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := db.ExecContext(ctx, `
		INSERT INTO survey (id, title, description, published, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		s.ID, s.Title, s.Description, s.Published, s.CreatedAt, s.UpdatedAt,
	)
	return errors.Wrap(err, "insert survey")
}

// GetSurvey loads a non-archived survey without its links.
func GetSurvey(ctx context.Context, db Querier, id uuid.UUID) (model.Survey, error) {
	var s model.Survey
	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, published, archived, created_at, updated_at
		FROM survey
		WHERE id = ? AND archived = 0`,
		id,
	).Scan(&s.ID, &s.Title, &s.Description, &s.Published, &s.Archived, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, model.NotFoundError{Resource: "survey", ID: id}
	}
	if err != nil {
		return s, errors.Wrap(err, "get survey")
	}
	return s, nil
}

// GetSurveyWithLinks loads a non-archived survey with its links resolved
// against their catalog questions, in order.
func GetSurveyWithLinks(ctx context.Context, db Querier, id uuid.UUID) (model.Survey, error) {
	s, err := GetSurvey(ctx, db, id)
	if err != nil {
		return s, err
	}
	s.Links, err = ListLinks(ctx, db, id)
	return s, err
}

// ListSurveys pages through non-archived surveys with question and response
// counts, optionally filtered by a title search term.
func ListSurveys(ctx context.Context, db Querier, search string, page, size int) (model.Page[model.SurveySummary], error) {
	where := "s.archived = 0"
	args := []any{}
	if search != "" {
		where += " AND s.title LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var total int
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM survey s WHERE `+where, args...).Scan(&total)
	if err != nil {
		return model.Page[model.SurveySummary]{}, errors.Wrap(err, "count surveys")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT
			s.id, s.title, s.description, s.published, s.created_at, s.updated_at,
			(SELECT count(*) FROM survey_question_link l WHERE l.survey_id = s.id),
			(SELECT count(*) FROM survey_response r WHERE r.survey_id = s.id)
		FROM survey s
		WHERE `+where+`
		ORDER BY s.created_at, s.id
		LIMIT ? OFFSET ?`,
		append(args, size, page*size)...,
	)
	if err != nil {
		return model.Page[model.SurveySummary]{}, errors.Wrap(err, "list surveys")
	}
	defer rows.Close()

	surveys := []model.SurveySummary{}
	for rows.Next() {
		var s model.SurveySummary
		err = rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Published, &s.CreatedAt, &s.UpdatedAt,
			&s.QuestionCount, &s.ResponseCount,
		)
		if err != nil {
			return model.Page[model.SurveySummary]{}, errors.Wrap(err, "scan survey")
		}
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.SurveySummary]{}, err
	}

	return model.NewPage(surveys, page, size, total), nil
}

// UpdateSurveyFields rewrites title, description and the published flag.
func UpdateSurveyFields(ctx context.Context, db Querier, s *model.Survey) error {
	s.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		UPDATE survey
		SET title = ?, description = ?, published = ?, updated_at = ?
		WHERE id = ? AND archived = 0`,
		s.Title, s.Description, s.Published, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update survey verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "survey", ID: s.ID}
	}
	return nil
}

// ArchiveSurvey soft-deletes a survey; its responses stay on record.
func ArchiveSurvey(ctx context.Context, db Querier, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `
		UPDATE survey SET archived = 1, published = 0, updated_at = ?
		WHERE id = ? AND archived = 0`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "archive survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "archive survey verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "survey", ID: id}
	}
	return nil
}

// SurveyExists reports whether the id is known, archived or not.
func SurveyExists(ctx context.Context, db Querier, id uuid.UUID) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM survey WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "survey exists")
	}
	return true, nil
}

// ListLinks loads a survey's links in order, each resolved against its
// catalog question (options included).
func ListLinks(ctx context.Context, db Querier, surveyID uuid.UUID) ([]model.QuestionLink, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			l.id, l.survey_id, l.question_id, l.order_index,
			l.label_override, l.description_override, l.required_override, l.hidden,
			`+questionColumns+`
		FROM survey_question_link l
		INNER JOIN question q ON (q.id = l.question_id)
		WHERE l.survey_id = ?
		ORDER BY l.order_index, l.rowid`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list links")
	}
	defer rows.Close()

	links := []model.QuestionLink{}
	questionIDs := []uuid.UUID{}
	for rows.Next() {
		var link model.QuestionLink
		var labelOverride, descriptionOverride sql.NullString
		var requiredOverride sql.NullBool
		var q model.Question
		var maxLength, scaleMin, scaleMax, scaleStep sql.NullInt64
		var scaleLeft, scaleRight sql.NullString

		err = rows.Scan(
			&link.ID, &link.SurveyID, &link.QuestionID, &link.OrderIndex,
			&labelOverride, &descriptionOverride, &requiredOverride, &link.Hidden,
			&q.ID, &q.Title, &q.Description, &q.Type, &q.Required, &maxLength,
			&scaleMin, &scaleMax, &scaleStep, &scaleLeft, &scaleRight,
			&q.Archived, &q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan link")
		}

		link.LabelOverride = fromNullString(labelOverride)
		link.DescriptionOverride = fromNullString(descriptionOverride)
		link.RequiredOverride = fromNullBool(requiredOverride)

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
		link.Question = &q

		links = append(links, link)
		questionIDs = append(questionIDs, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	options, err := loadOptions(ctx, db, questionIDs...)
	if err != nil {
		return nil, err
	}
	for i := range links {
		links[i].Question.Options = options[links[i].QuestionID]
	}
	return links, nil
}

// GetLink loads one link scoped to its survey, question resolved.
func GetLink(ctx context.Context, db Querier, surveyID, linkID uuid.UUID) (model.QuestionLink, error) {
	links, err := ListLinks(ctx, db, surveyID)
	if err != nil {
		return model.QuestionLink{}, err
	}
	for _, link := range links {
		if link.ID == linkID {
			return link, nil
		}
	}
	return model.QuestionLink{}, model.NotFoundError{Resource: "survey question link", ID: linkID}
}

// LinkExists reports whether the question is already linked to the survey.
func LinkExists(ctx context.Context, db Querier, surveyID, questionID uuid.UUID) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM survey_question_link
		WHERE survey_id = ? AND question_id = ?`,
		surveyID, questionID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "link exists")
	}
	return true, nil
}

// CountLinks returns the number of links in a survey.
func CountLinks(ctx context.Context, db Querier, surveyID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT count(*) FROM survey_question_link WHERE survey_id = ?`,
		surveyID,
	).Scan(&n)
	return n, errors.Wrap(err, "count links")
}

// InsertLink stores a new link, assigning an identity as needed.
func InsertLink(ctx context.Context, db Querier, link *model.QuestionLink) error {
	if link.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "generate link id")
		}
		link.ID = id
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO survey_question_link (
			id, survey_id, question_id, order_index,
			label_override, description_override, required_override, hidden
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.SurveyID, link.QuestionID, link.OrderIndex,
		nullString(link.LabelOverride), nullString(link.DescriptionOverride),
		nullBool(link.RequiredOverride), link.Hidden,
	)
	return errors.Wrap(err, "insert link")
}

// UpdateLink rewrites a link's overrides and hidden flag.
func UpdateLink(ctx context.Context, db Querier, link model.QuestionLink) error {
	res, err := db.ExecContext(ctx, `
		UPDATE survey_question_link
		SET label_override = ?, description_override = ?, required_override = ?, hidden = ?
		WHERE id = ? AND survey_id = ?`,
		nullString(link.LabelOverride), nullString(link.DescriptionOverride),
		nullBool(link.RequiredOverride), link.Hidden,
		link.ID, link.SurveyID,
	)
	if err != nil {
		return errors.Wrap(err, "update link")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update link verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "survey question link", ID: link.ID}
	}
	return nil
}

// SaveOrder writes back the order index of every link in the slice. Run it
// inside the transaction that computed the renumbering.
func SaveOrder(ctx context.Context, db Querier, links []model.QuestionLink) error {
	for _, link := range links {
		_, err := db.ExecContext(ctx, `
			UPDATE survey_question_link SET order_index = ?
			WHERE id = ?`,
			link.OrderIndex, link.ID,
		)
		if err != nil {
			return errors.Wrap(err, "save link order")
		}
	}
	return nil
}

// DeleteLink removes a link; the underlying question stays in the catalog.
func DeleteLink(ctx context.Context, db Querier, surveyID, linkID uuid.UUID) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM survey_question_link
		WHERE id = ? AND survey_id = ?`,
		linkID, surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "delete link")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete link verify")
	}
	if n < 1 {
		return model.NotFoundError{Resource: "survey question link", ID: linkID}
	}
	return nil
}

// DeleteLinks removes every link of a survey. Used by import before
// re-materializing the composition.
func DeleteLinks(ctx context.Context, db Querier, surveyID uuid.UUID) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM survey_question_link WHERE survey_id = ?`,
		surveyID,
	)
	return errors.Wrap(err, "delete links")
}
