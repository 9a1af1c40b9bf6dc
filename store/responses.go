package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/talaatharb/survey-forge/model"
)

// InsertResponse stores a response with all its answer details and selected
// options. Run it inside a transaction: a response is recorded whole or not
// at all, and never updated afterwards.
func InsertResponse(ctx context.Context, db Querier, resp *model.SurveyResponse) error {
	if resp.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "generate response id")
		}
		resp.ID = id
	}
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO survey_response (id, survey_id, submitted_at, submitter_id, submitter_ip)
		VALUES (?, ?, ?, ?, ?)`,
		resp.ID, resp.SurveyID, resp.SubmittedAt, resp.SubmitterID, resp.SubmitterIP,
	)
	if err != nil {
		return errors.Wrap(err, "insert response")
	}

	for _, detail := range resp.Answers {
		detailID, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "generate answer id")
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO question_response (id, response_id, question_id, answer_type, text_answer, numeric_answer)
			VALUES (?, ?, ?, ?, ?, ?)`,
			detailID, resp.ID, detail.QuestionID, detail.AnswerType,
			detail.TextAnswer, nullInt(detail.NumericAnswer),
		)
		if err != nil {
			return errors.Wrap(err, "insert answer")
		}

		for _, sel := range detail.SelectedOptions {
			_, err = db.ExecContext(ctx, `
				INSERT INTO question_response_option (question_response_id, option_id, label_snapshot)
				VALUES (?, ?, ?)`,
				detailID, sel.OptionID, sel.Label,
			)
			if err != nil {
				return errors.Wrap(err, "insert selected option")
			}
		}
	}
	return nil
}

// ListResponses loads every response to a survey with full details, oldest
// first. Analytics aggregates over this snapshot.
func ListResponses(ctx context.Context, db Querier, surveyID uuid.UUID) ([]model.SurveyResponse, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, survey_id, submitted_at, submitter_id, submitter_ip
		FROM survey_response
		WHERE survey_id = ?
		ORDER BY submitted_at, id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list responses")
	}
	defer rows.Close()

	responses := []model.SurveyResponse{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var resp model.SurveyResponse
		err = rows.Scan(&resp.ID, &resp.SurveyID, &resp.SubmittedAt, &resp.SubmitterID, &resp.SubmitterIP)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		index[resp.ID] = len(responses)
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return responses, nil
	}

	err = loadAnswers(ctx, db, surveyID, func(responseID uuid.UUID, detail model.AnswerDetail) {
		i, ok := index[responseID]
		if ok {
			responses[i].Answers = append(responses[i].Answers, detail)
		}
	})
	return responses, err
}

func loadAnswers(ctx context.Context, db Querier, surveyID uuid.UUID, add func(uuid.UUID, model.AnswerDetail)) error {
	rows, err := db.QueryContext(ctx, `
		SELECT
			qr.id, qr.response_id, qr.question_id, qr.answer_type, qr.text_answer, qr.numeric_answer,
			o.option_id, o.label_snapshot
		FROM question_response qr
		INNER JOIN survey_response r ON (r.id = qr.response_id)
		LEFT OUTER JOIN question_response_option o ON (o.question_response_id = qr.id)
		WHERE r.survey_id = ?
		ORDER BY r.submitted_at, r.id, qr.rowid, o.rowid`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "list answers")
	}
	defer rows.Close()

	var currentID uuid.UUID
	var currentResponse uuid.UUID
	var current *model.AnswerDetail
	flush := func() {
		if current != nil {
			add(currentResponse, *current)
			current = nil
		}
	}

	for rows.Next() {
		var detailID, responseID uuid.UUID
		var detail model.AnswerDetail
		var numeric sql.NullInt64
		var optionID sql.NullString
		var optionLabel sql.NullString

		err = rows.Scan(
			&detailID, &responseID, &detail.QuestionID, &detail.AnswerType, &detail.TextAnswer, &numeric,
			&optionID, &optionLabel,
		)
		if err != nil {
			return errors.Wrap(err, "scan answer")
		}
		detail.NumericAnswer = fromNullInt(numeric)

		if detailID != currentID {
			flush()
			currentID = detailID
			currentResponse = responseID
			current = &detail
		}
		if optionID.Valid {
			id, err := uuid.FromString(optionID.String)
			if err != nil {
				return errors.Wrap(err, "parse selected option id")
			}
			current.SelectedOptions = append(current.SelectedOptions, model.SelectedOption{
				OptionID: id,
				Label:    optionLabel.String,
			})
		}
	}
	flush()
	return rows.Err()
}

// PageResponses pages through response summaries, newest first.
func PageResponses(ctx context.Context, db Querier, surveyID uuid.UUID, page, size int) (model.Page[model.ResponseSummary], error) {
	var total int
	err := db.QueryRowContext(ctx, `
		SELECT count(*) FROM survey_response WHERE survey_id = ?`,
		surveyID,
	).Scan(&total)
	if err != nil {
		return model.Page[model.ResponseSummary]{}, errors.Wrap(err, "count responses")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT
			r.id, r.submitted_at, r.submitter_id,
			(SELECT count(*) FROM question_response qr WHERE qr.response_id = r.id)
		FROM survey_response r
		WHERE r.survey_id = ?
		ORDER BY r.submitted_at DESC, r.id
		LIMIT ? OFFSET ?`,
		surveyID, size, page*size,
	)
	if err != nil {
		return model.Page[model.ResponseSummary]{}, errors.Wrap(err, "page responses")
	}
	defer rows.Close()

	summaries := []model.ResponseSummary{}
	for rows.Next() {
		var s model.ResponseSummary
		err = rows.Scan(&s.ID, &s.SubmittedAt, &s.SubmitterID, &s.AnswerCount)
		if err != nil {
			return model.Page[model.ResponseSummary]{}, errors.Wrap(err, "scan response summary")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.ResponseSummary]{}, err
	}

	return model.NewPage(summaries, page, size, total), nil
}

// GetResponse loads one recorded response scoped to its survey.
func GetResponse(ctx context.Context, db Querier, surveyID, responseID uuid.UUID) (model.SurveyResponse, error) {
	var resp model.SurveyResponse
	err := db.QueryRowContext(ctx, `
		SELECT id, survey_id, submitted_at, submitter_id, submitter_ip
		FROM survey_response
		WHERE id = ? AND survey_id = ?`,
		responseID, surveyID,
	).Scan(&resp.ID, &resp.SurveyID, &resp.SubmittedAt, &resp.SubmitterID, &resp.SubmitterIP)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, model.NotFoundError{Resource: "submission", ID: responseID}
	}
	if err != nil {
		return resp, errors.Wrap(err, "get response")
	}

	err = loadAnswers(ctx, db, surveyID, func(id uuid.UUID, detail model.AnswerDetail) {
		if id == resp.ID {
			resp.Answers = append(resp.Answers, detail)
		}
	})
	return resp, err
}
