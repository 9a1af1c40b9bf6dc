package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/app"
	"github.com/talaatharb/survey-forge/httpx"
	"github.com/talaatharb/survey-forge/log"
	"github.com/talaatharb/survey-forge/model"
	"github.com/talaatharb/survey-forge/store"
	"github.com/talaatharb/survey-forge/survey"
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := model.Survey{}
		err := render.DecodeJSON(r.Body, &s)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if s.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "survey.validate", "survey title is required")
			return
		}

		// new surveys always start unpublished
		s.Published = false
		err = store.InsertSurvey(r.Context(), app.DB, &s)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, s)
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := paging(r, app)
		search := r.URL.Query().Get("q")

		surveys, err := store.ListSurveys(r.Context(), app.DB, search, page, size)
		if err != nil {
			httpx.LogInternalError(w, "db.list_surveys", err)
			return
		}

		render.JSON(w, r, surveys)
	}
}

func GetSurveyByID(app app.App) http.HandlerFunc {
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

		render.JSON(w, r, map[string]any{
			"id":            s.ID,
			"title":         s.Title,
			"description":   s.Description,
			"published":     s.Published,
			"createdAt":     s.CreatedAt,
			"updatedAt":     s.UpdatedAt,
			"questionLinks": newLinkViews(s.Links),
		})
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		update := model.Survey{}
		err = render.DecodeJSON(r.Body, &update)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if update.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "survey.validate", "survey title is required")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		s, err := store.GetSurvey(r.Context(), tx, surveyId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}

		// an empty survey cannot go live
		if update.Published && !s.Published {
			links, err := store.CountLinks(r.Context(), tx, surveyId)
			if err != nil {
				httpx.LogInternalError(w, "db.count_links", err)
				return
			}
			if links == 0 {
				httpx.RenderError(w, r, "survey.publish", model.PublishPreconditionError{SurveyID: surveyId})
				return
			}
		}

		s.Title = update.Title
		s.Description = update.Description
		s.Published = update.Published

		err = store.UpdateSurveyFields(r.Context(), tx, &s)
		if err != nil {
			httpx.RenderError(w, r, "db.update_survey", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey.commit", err)
			return
		}

		render.JSON(w, r, s)
	}
}

// DeleteSurvey archives: recorded responses must stay reachable.
func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		err = store.ArchiveSurvey(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.RenderError(w, r, "db.archive_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetQuestionLinks(app app.App) http.HandlerFunc {
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

		links, err := store.ListLinks(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.list_links", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"links": newLinkViews(links),
		})
	}
}

type addLinkRequest struct {
	QuestionID          string  `json:"questionId"`
	OrderIndex          *int    `json:"orderIndex"`
	LabelOverride       *string `json:"labelOverride"`
	DescriptionOverride *string `json:"descriptionOverride"`
	RequiredOverride    *bool   `json:"requiredOverride"`
	Hidden              bool    `json:"hidden"`
}

func AddQuestionLink(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}

		req := addLinkRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		questionId, err := uuid.FromString(req.QuestionID)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body.question_id")
			return
		}

		unlock := lockSurvey(surveyId)
		defer unlock()

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = store.GetSurvey(r.Context(), tx, surveyId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_survey", err)
			return
		}
		question, err := store.GetQuestion(r.Context(), tx, questionId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_question", err)
			return
		}

		linked, err := store.LinkExists(r.Context(), tx, surveyId, questionId)
		if err != nil {
			httpx.LogInternalError(w, "db.link_exists", err)
			return
		}
		if linked {
			httpx.RenderError(w, r, "link.duplicate", model.DuplicateLinkError{SurveyID: surveyId, QuestionID: questionId})
			return
		}

		links, err := store.ListLinks(r.Context(), tx, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.list_links", err)
			return
		}

		link := model.QuestionLink{
			SurveyID:            surveyId,
			QuestionID:          questionId,
			LabelOverride:       req.LabelOverride,
			DescriptionOverride: req.DescriptionOverride,
			RequiredOverride:    req.RequiredOverride,
			Hidden:              req.Hidden,
		}
		err = store.InsertLink(r.Context(), tx, &link)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_link", err)
			return
		}

		at := -1 // append
		if req.OrderIndex != nil {
			at = *req.OrderIndex
		}
		renumbered := survey.Insert(links, link, at)
		err = store.SaveOrder(r.Context(), tx, renumbered)
		if err != nil {
			httpx.LogInternalError(w, "db.save_link_order", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_link.commit", err)
			return
		}

		for _, l := range renumbered {
			if l.ID == link.ID {
				link.OrderIndex = l.OrderIndex
			}
		}
		link.Question = &question

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, newLinkView(link))
	}
}

func UpdateQuestionLink(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}
		linkId, err := uuidParam(r, "linkId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.link_id")
			return
		}

		patch := model.LinkPatch{}
		err = render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		unlock := lockSurvey(surveyId)
		defer unlock()

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		link, err := store.GetLink(r.Context(), tx, surveyId, linkId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_link", err)
			return
		}

		link = survey.ApplyPatch(link, patch)
		err = store.UpdateLink(r.Context(), tx, link)
		if err != nil {
			httpx.RenderError(w, r, "db.update_link", err)
			return
		}

		if patch.OrderIndex != nil {
			links, err := store.ListLinks(r.Context(), tx, surveyId)
			if err != nil {
				httpx.LogInternalError(w, "db.list_links", err)
				return
			}
			renumbered := survey.Move(links, linkId, *patch.OrderIndex)
			err = store.SaveOrder(r.Context(), tx, renumbered)
			if err != nil {
				httpx.LogInternalError(w, "db.save_link_order", err)
				return
			}
			for _, l := range renumbered {
				if l.ID == linkId {
					link.OrderIndex = l.OrderIndex
				}
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_link.commit", err)
			return
		}

		render.JSON(w, r, newLinkView(link))
	}
}

func RemoveQuestionLink(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := uuidParam(r, "surveyId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.survey_id")
			return
		}
		linkId, err := uuidParam(r, "linkId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.link_id")
			return
		}

		unlock := lockSurvey(surveyId)
		defer unlock()

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		err = store.DeleteLink(r.Context(), tx, surveyId, linkId)
		if err != nil {
			httpx.RenderError(w, r, "db.delete_link", err)
			return
		}

		// close the gap the removed link left behind
		links, err := store.ListLinks(r.Context(), tx, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.list_links", err)
			return
		}
		err = store.SaveOrder(r.Context(), tx, survey.Renumber(links))
		if err != nil {
			httpx.LogInternalError(w, "db.save_link_order", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_link.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
