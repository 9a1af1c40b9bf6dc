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

func ListQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := paging(r, app)
		search := r.URL.Query().Get("q")

		questions, err := store.ListQuestions(r.Context(), app.DB, search, page, size)
		if err != nil {
			httpx.LogInternalError(w, "db.list_questions", err)
			return
		}

		render.JSON(w, r, questions)
	}
}

func GetQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := uuidParam(r, "questionId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.question_id")
			return
		}

		question, err := store.GetQuestion(r.Context(), app.DB, questionId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_question", err)
			return
		}

		render.JSON(w, r, question)
	}
}

func CreateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		question := model.Question{}
		err := render.DecodeJSON(r.Body, &question)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = survey.ValidateQuestion(question)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "question.validate", "%s", err)
			return
		}

		err = store.InsertQuestion(r.Context(), app.DB, &question)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := uuidParam(r, "questionId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.question_id")
			return
		}

		question := model.Question{}
		err = render.DecodeJSON(r.Body, &question)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		question.ID = questionId
		// option identities are reassigned on update
		for i := range question.Options {
			question.Options[i].ID = uuid.Nil
		}

		err = survey.ValidateQuestion(question)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "question.validate", "%s", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		err = store.UpdateQuestion(r.Context(), tx, &question)
		if err != nil {
			httpx.RenderError(w, r, "db.update_question", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_question.commit", err)
			return
		}

		render.JSON(w, r, question)
	}
}

// DeleteQuestion archives: catalog questions referenced by links or recorded
// answers must stay resolvable.
func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := uuidParam(r, "questionId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.question_id")
			return
		}

		err = store.ArchiveQuestion(r.Context(), app.DB, questionId)
		if err != nil {
			httpx.RenderError(w, r, "db.archive_question", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CopyQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := uuidParam(r, "questionId")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.question_id")
			return
		}

		original, err := store.GetQuestion(r.Context(), app.DB, questionId)
		if err != nil {
			httpx.RenderError(w, r, "db.get_question", err)
			return
		}

		dup, err := survey.Copy(original)
		if err != nil {
			httpx.LogInternalError(w, "question.copy", err)
			return
		}

		err = store.InsertQuestion(r.Context(), app.DB, &dup)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, dup)
	}
}
