package survey

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/model"
)

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	return id
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }
func intptr(i int) *int       { return &i }

func textQuestion(t *testing.T) *model.Question {
	return &model.Question{
		ID:          newID(t),
		Title:       "Your name",
		Description: "as printed on your badge",
		Type:        model.ShortAnswer,
		Required:    true,
	}
}

func TestResolveInheritsQuestionValues(t *testing.T) {
	q := textQuestion(t)
	link := model.QuestionLink{ID: newID(t), QuestionID: q.ID, Question: q}

	eff, ok := Resolve(link)
	if !ok {
		t.Fatal("expected link to resolve")
	}
	if eff.Title != "Your name" {
		t.Errorf("title = %q, want question title", eff.Title)
	}
	if eff.Description != "as printed on your badge" {
		t.Errorf("description = %q, want question description", eff.Description)
	}
	if !eff.Required {
		t.Error("required should inherit from question")
	}
	if eff.QuestionID != q.ID {
		t.Error("question id should be carried over")
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	q := textQuestion(t)
	link := model.QuestionLink{
		ID:                  newID(t),
		QuestionID:          q.ID,
		Question:            q,
		LabelOverride:       strptr("Full name"),
		DescriptionOverride: strptr(""),
		RequiredOverride:    boolptr(false),
	}

	eff, ok := Resolve(link)
	if !ok {
		t.Fatal("expected link to resolve")
	}
	if eff.Title != "Full name" {
		t.Errorf("title = %q, want override", eff.Title)
	}
	if eff.Description != "" {
		t.Errorf("description = %q, want empty override", eff.Description)
	}
	if eff.Required {
		t.Error("required override false should win over question required true")
	}
}

func TestResolveFailsWithoutQuestion(t *testing.T) {
	_, ok := Resolve(model.QuestionLink{ID: uuid.Nil})
	if ok {
		t.Error("a link without a resolved question must not resolve")
	}
}

func TestApplyPatchSetsAndClears(t *testing.T) {
	link := model.QuestionLink{LabelOverride: strptr("old"), RequiredOverride: boolptr(true)}

	// absent fields keep current values
	link = ApplyPatch(link, model.LinkPatch{})
	if link.LabelOverride == nil || *link.LabelOverride != "old" {
		t.Error("absent patch field must keep the override")
	}

	// explicit null clears back to inherit
	patch := model.LinkPatch{}
	if err := json.Unmarshal([]byte(`{"labelOverride":null,"requiredOverride":false}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	link = ApplyPatch(link, patch)
	if link.LabelOverride != nil {
		t.Error("explicit null must clear the label override")
	}
	if link.RequiredOverride == nil || *link.RequiredOverride {
		t.Error("explicit false must set the required override, not clear it")
	}
}

func publishedSurvey(t *testing.T) model.Survey {
	q1 := textQuestion(t)
	q2 := &model.Question{ID: newID(t), Title: "Color", Type: model.Dropdown, Options: []model.QuestionOption{
		{ID: newID(t), Label: "Red"},
		{ID: newID(t), Label: "Blue", OrderIndex: 1},
	}}
	q3 := &model.Question{ID: newID(t), Title: "Secret", Type: model.Paragraph}

	return model.Survey{
		ID:        newID(t),
		Title:     "Conference feedback",
		Published: true,
		Links: []model.QuestionLink{
			{ID: newID(t), QuestionID: q2.ID, Question: q2, OrderIndex: 1},
			{ID: newID(t), QuestionID: q1.ID, Question: q1, OrderIndex: 0},
			{ID: newID(t), QuestionID: q3.ID, Question: q3, OrderIndex: 2, Hidden: true},
		},
	}
}

func TestProjectOrdersAndFiltersHidden(t *testing.T) {
	s := publishedSurvey(t)

	public, err := Project(s)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(public.Questions) != 2 {
		t.Fatalf("expected 2 visible questions, got %d", len(public.Questions))
	}
	if public.Questions[0].Title != "Your name" || public.Questions[1].Title != "Color" {
		t.Errorf("projection must follow order index, got %q then %q",
			public.Questions[0].Title, public.Questions[1].Title)
	}
	for _, q := range public.Questions {
		if q.Title == "Secret" {
			t.Error("hidden link leaked into the public projection")
		}
	}
}

func TestProjectRejectsUnpublishedAndArchived(t *testing.T) {
	s := publishedSurvey(t)

	s.Published = false
	if _, err := Project(s); err == nil {
		t.Error("unpublished survey must not project")
	} else if _, ok := err.(model.NotAvailableError); !ok {
		t.Errorf("want NotAvailableError, got %T", err)
	}

	s.Published = true
	s.Archived = true
	if _, err := Project(s); err == nil {
		t.Error("archived survey must not project")
	}
}

func TestProjectSkipsUnresolvableLinks(t *testing.T) {
	s := publishedSurvey(t)
	s.Links = append(s.Links, model.QuestionLink{ID: newID(t), OrderIndex: 3}) // no question

	public, err := Project(s)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(public.Questions) != 2 {
		t.Errorf("unresolvable link must be excluded, got %d questions", len(public.Questions))
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	s := publishedSurvey(t)

	first, err := Project(s)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	second, err := Project(s)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("projecting twice without mutation must yield identical output")
	}
}
