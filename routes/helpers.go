package routes

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/app"
	"github.com/talaatharb/survey-forge/model"
	"github.com/talaatharb/survey-forge/survey"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.FromString(chi.URLParam(r, name))
}

func paging(r *http.Request, app app.App) (page, size int) {
	size = app.PageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 && v <= 200 {
		size = v
	}
	return
}

// Link mutations renumber the shared order index sequence, so they are
// serialized per survey. Submissions and reads never take this lock.
var surveyLocks sync.Map

func lockSurvey(id uuid.UUID) func() {
	m, _ := surveyLocks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// linkView is the admin-facing link shape: stored fields plus the computed
// effective ones.
type linkView struct {
	model.QuestionLink
	EffectiveLabel       string `json:"effectiveLabel"`
	EffectiveDescription string `json:"effectiveDescription,omitempty"`
	EffectivelyRequired  bool   `json:"effectivelyRequired"`
}

func newLinkView(link model.QuestionLink) linkView {
	view := linkView{QuestionLink: link}
	if eff, ok := survey.Resolve(link); ok {
		view.EffectiveLabel = eff.Title
		view.EffectiveDescription = eff.Description
		view.EffectivelyRequired = eff.Required
	}
	return view
}

func newLinkViews(links []model.QuestionLink) []linkView {
	views := make([]linkView, len(links))
	for i, link := range links {
		views[i] = newLinkView(link)
	}
	return views
}
