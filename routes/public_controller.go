package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/talaatharb/survey-forge/app"
	"github.com/talaatharb/survey-forge/httpx"
	"github.com/talaatharb/survey-forge/log"
	"github.com/talaatharb/survey-forge/model"
	"github.com/talaatharb/survey-forge/store"
	"github.com/talaatharb/survey-forge/survey"
)

func GetPublicSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		s, err := store.GetSurveyWithLinks(r.Context(), app.DB, surveyId)
		if err != nil {
			// a missing survey is indistinguishable from an unavailable one
			if _, notFound := err.(model.NotFoundError); notFound {
				err = model.NotAvailableError{SurveyID: surveyId}
			}
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}

		public, err := survey.Project(s)
		if err != nil {
			httpx.RenderError(w, r, "survey.project", err)
			return
		}

		render.JSON(w, r, public)
	}
}

func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		submission := model.Submission{}
		err = render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		// the schema is re-resolved here, never trusted from the client: a
		// survey republished mid-flight surfaces as a validation failure
		s, err := store.GetSurveyWithLinks(r.Context(), tx, surveyId)
		if err != nil {
			if _, notFound := err.(model.NotFoundError); notFound {
				err = model.NotAvailableError{SurveyID: surveyId}
			}
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}
		public, err := survey.Project(s)
		if err != nil {
			httpx.RenderError(w, r, "survey.project", err)
			return
		}

		err = survey.Validate(public.Questions, submission.Answers)
		if err != nil {
			httpx.RenderError(w, r, "submission.validate", err)
			return
		}

		response := model.SurveyResponse{
			SurveyID:    surveyId,
			SubmitterID: submission.SubmitterID,
			SubmitterIP: strings.Split(r.RemoteAddr, ":")[0],
			Answers:     survey.BuildDetails(public.Questions, submission.Answers),
		}
		err = store.InsertResponse(r.Context(), tx, &response)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response)
	}
}
