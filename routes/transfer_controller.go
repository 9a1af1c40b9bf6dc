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

// The export document is self-contained: a survey, its links and the full
// question definitions, so another instance can re-materialize it without
// sharing a catalog.

type exportOption struct {
	Label      string `json:"label"`
	OrderIndex int    `json:"orderIndex"`
}

type exportQuestion struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Type        model.QuestionType       `json:"type"`
	Required    bool                     `json:"required"`
	MaxLength   *int                     `json:"maxLength,omitempty"`
	ScaleConfig *model.LinearScaleConfig `json:"linearScaleConfig,omitempty"`
	Options     []exportOption           `json:"options,omitempty"`
}

type exportLink struct {
	OrderIndex          int            `json:"orderIndex"`
	LabelOverride       *string        `json:"labelOverride,omitempty"`
	DescriptionOverride *string        `json:"descriptionOverride,omitempty"`
	RequiredOverride    *bool          `json:"requiredOverride,omitempty"`
	Hidden              bool           `json:"hidden"`
	Question            exportQuestion `json:"question"`
}

type exportDocument struct {
	ID          uuid.UUID    `json:"id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Published   bool         `json:"published"`
	Questions   []exportLink `json:"questions"`
}

func ExportSurvey(app app.App) http.HandlerFunc {
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

		doc := exportDocument{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Published:   s.Published,
			Questions:   []exportLink{},
		}
		for _, link := range survey.Ordered(s.Links) {
			q := link.Question
			if q == nil {
				continue
			}
			eq := exportQuestion{
				ID:          q.ID,
				Title:       q.Title,
				Description: q.Description,
				Type:        q.Type,
				Required:    q.Required,
				MaxLength:   q.MaxLength,
				ScaleConfig: q.ScaleConfig,
			}
			for _, opt := range q.Options {
				eq.Options = append(eq.Options, exportOption{Label: opt.Label, OrderIndex: opt.OrderIndex})
			}
			doc.Questions = append(doc.Questions, exportLink{
				OrderIndex:          link.OrderIndex,
				LabelOverride:       link.LabelOverride,
				DescriptionOverride: link.DescriptionOverride,
				RequiredOverride:    link.RequiredOverride,
				Hidden:              link.Hidden,
				Question:            eq,
			})
		}

		w.Header().Set("content-disposition", `attachment; filename="survey-`+s.ID.String()+`.json"`)
		render.JSON(w, r, doc)
	}
}

// ImportSurvey re-materializes an exported document. Questions whose id is
// known locally are updated in place; unknown or absent ids become new
// catalog entries. A known survey id replaces that survey's composition.
func ImportSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := exportDocument{}
		err := render.DecodeJSON(r.Body, &doc)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if doc.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "import.validate", "survey title is required")
			return
		}
		if doc.Published && len(doc.Questions) == 0 {
			httpx.RenderError(w, r, "import.publish", model.PublishPreconditionError{SurveyID: doc.ID})
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		s := model.Survey{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Published:   doc.Published,
		}

		exists := false
		if doc.ID != uuid.Nil {
			exists, err = store.SurveyExists(r.Context(), tx, doc.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.survey_exists", err)
				return
			}
		}
		if exists {
			err = store.UpdateSurveyFields(r.Context(), tx, &s)
			if err != nil {
				httpx.RenderError(w, r, "db.update_survey", err)
				return
			}
			err = store.DeleteLinks(r.Context(), tx, s.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.delete_links", err)
				return
			}
		} else {
			s.ID = uuid.Nil
			err = store.InsertSurvey(r.Context(), tx, &s)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_survey", err)
				return
			}
		}

		links := make([]model.QuestionLink, 0, len(doc.Questions))
		for _, linkData := range doc.Questions {
			question := model.Question{
				ID:          linkData.Question.ID,
				Title:       linkData.Question.Title,
				Description: linkData.Question.Description,
				Type:        linkData.Question.Type,
				Required:    linkData.Question.Required,
				MaxLength:   linkData.Question.MaxLength,
				ScaleConfig: linkData.Question.ScaleConfig,
			}
			for _, opt := range linkData.Question.Options {
				question.Options = append(question.Options, model.QuestionOption{
					Label:      opt.Label,
					OrderIndex: opt.OrderIndex,
				})
			}

			err = survey.ValidateQuestion(question)
			if err != nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "import.validate_question", "%s", err)
				return
			}

			known := false
			if question.ID != uuid.Nil {
				known, err = store.QuestionExists(r.Context(), tx, question.ID)
				if err != nil {
					httpx.LogInternalError(w, "db.question_exists", err)
					return
				}
			}
			if known {
				err = store.UpdateQuestion(r.Context(), tx, &question)
			} else {
				question.ID = uuid.Nil
				err = store.InsertQuestion(r.Context(), tx, &question)
			}
			if err != nil {
				httpx.RenderError(w, r, "db.save_question", err)
				return
			}

			link := model.QuestionLink{
				SurveyID:            s.ID,
				QuestionID:          question.ID,
				OrderIndex:          linkData.OrderIndex,
				LabelOverride:       linkData.LabelOverride,
				DescriptionOverride: linkData.DescriptionOverride,
				RequiredOverride:    linkData.RequiredOverride,
				Hidden:              linkData.Hidden,
			}
			err = store.InsertLink(r.Context(), tx, &link)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_link", err)
				return
			}
			links = append(links, link)
		}

		// imported order indices may be sparse; make them dense
		err = store.SaveOrder(r.Context(), tx, survey.Renumber(links))
		if err != nil {
			httpx.LogInternalError(w, "db.save_link_order", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.import_survey.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, s)
	}
}
