package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talaatharb/survey-forge/app"
	"github.com/talaatharb/survey-forge/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Route("/v1/public/surveys", func(r chi.Router) {
		r.Get("/{surveyId}", GetPublicSurvey(app))
		r.Post("/{surveyId}/responses", SubmitResponse(app))
	})

	api.Route("/v1/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", ListQuestions(app))
			r.Post("/", CreateQuestion(app))
			r.Get("/{questionId}", GetQuestion(app))
			r.Put("/{questionId}", UpdateQuestion(app))
			r.Delete("/{questionId}", DeleteQuestion(app))
			r.Post("/{questionId}/copy", CopyQuestion(app))
		})

		r.Route("/surveys", func(r chi.Router) {
			r.Get("/", ListSurveys(app))
			r.Post("/", CreateSurvey(app))
			r.Post("/import", ImportSurvey(app))
			r.Get("/{surveyId}", GetSurveyByID(app))
			r.Put("/{surveyId}", UpdateSurvey(app))
			r.Delete("/{surveyId}", DeleteSurvey(app))
			r.Get("/{surveyId}/export", ExportSurvey(app))

			r.Get("/{surveyId}/links", GetQuestionLinks(app))
			r.Post("/{surveyId}/links", AddQuestionLink(app))
			r.Patch("/{surveyId}/links/{linkId}", UpdateQuestionLink(app))
			r.Delete("/{surveyId}/links/{linkId}", RemoveQuestionLink(app))

			r.Get("/{surveyId}/results", GetSurveyAnalytics(app))
			r.Get("/{surveyId}/results/submissions", ListSubmissions(app))
			r.Get("/{surveyId}/results/submissions/{submissionId}", GetSubmission(app))
		})
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
