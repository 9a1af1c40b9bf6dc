package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/talaatharb/survey-forge/log"
	"github.com/talaatharb/survey-forge/model"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

type errorBody struct {
	Status  int           `json:"status"`
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Details []errorDetail `json:"details,omitempty"`
}

type errorDetail struct {
	Kind       string    `json:"kind"`
	QuestionID uuid.UUID `json:"questionId"`
	Message    string    `json:"message"`
}

// RenderError maps the domain error taxonomy to an HTTP status and a
// structured JSON body. Validation failures carry one detail per failing
// question; anything unrecognized is treated as internal.
func RenderError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch e := err.(type) {
	case model.NotFoundError:
		log.Debugf("%s: %s", code, e)
		renderBody(w, r, http.StatusNotFound, "Not Found", e.Error(), nil)

	case model.NotAvailableError:
		log.Debugf("%s: %s", code, e)
		renderBody(w, r, http.StatusForbidden, "Forbidden", e.Error(), nil)

	case model.DuplicateLinkError:
		log.Debugf("%s: %s", code, e)
		renderBody(w, r, http.StatusConflict, "Conflict", e.Error(), nil)

	case model.PublishPreconditionError:
		log.Debugf("%s: %s", code, e)
		renderBody(w, r, http.StatusConflict, "Conflict", e.Error(), nil)

	case model.ValidationError:
		log.Debugf("%s: %s", code, e)
		renderBody(w, r, http.StatusBadRequest, "Bad Request", e.Error(), validationDetails(e))

	case *multierror.Error:
		log.Debugf("%s: %s", code, e)
		details := []errorDetail{}
		for _, wrapped := range e.WrappedErrors() {
			if ve, ok := wrapped.(model.ValidationError); ok {
				details = append(details, validationDetails(ve)...)
			}
		}
		renderBody(w, r, http.StatusBadRequest, "Bad Request", "submission has invalid answers", details)

	default:
		LogInternalError(w, code, err)
	}
}

func validationDetails(e model.ValidationError) []errorDetail {
	return []errorDetail{{
		Kind:       e.Kind(),
		QuestionID: e.Question(),
		Message:    e.Error(),
	}}
}

func renderBody(w http.ResponseWriter, r *http.Request, status int, name, message string, details []errorDetail) {
	w.WriteHeader(status)
	render.JSON(w, r, errorBody{
		Status:  status,
		Error:   name,
		Message: message,
		Details: details,
	})
}
