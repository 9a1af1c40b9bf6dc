package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/talaatharb/survey-forge/app"
	"github.com/talaatharb/survey-forge/httpx"
	"github.com/talaatharb/survey-forge/log"
	"github.com/talaatharb/survey-forge/store"
	"github.com/talaatharb/survey-forge/survey"
)

// GetSurveyAnalytics recomputes the aggregate view from the full response
// set on every call. Reads a snapshot, takes no locks, never blocks new
// submissions.
func GetSurveyAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		s, err := store.GetSurveyWithLinks(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}

		responses, err := store.ListResponses(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		render.JSON(w, r, survey.Aggregate(s, responses, app.TextSamples))
	}
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		_, err = store.GetSurvey(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}

		page, size := paging(r, app)
		submissions, err := store.PageResponses(r.Context(), app.DB, surveyId, page, size)
		if err != nil {
			httpx.LogInternalError(w, "db.page_responses", err)
			return
		}

		render.JSON(w, r, submissions)
	}
}

func GetSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}
		submissionId, err := uuidParam(r, "submissionId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.submission_id")
			return
		}

		submission, err := store.GetResponse(r.Context(), app.DB, surveyId, submissionId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_response", err)
			return
		}

		render.JSON(w, r, submission)
	}
}
