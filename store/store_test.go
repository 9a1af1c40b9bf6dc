package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/talaatharb/survey-forge/config"
	"github.com/talaatharb/survey-forge/database"
	"github.com/talaatharb/survey-forge/model"
)

// A plain :memory: DSN gives every pooled connection its own database, so the
// tests use a named shared-cache one instead. It lives until the pool closes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := database.Open(config.Config{DBUrl: url})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedQuestion(t *testing.T, db Querier) model.Question {
	t.Helper()
	q := model.Question{
		Title: "Color",
		Type:  model.Dropdown,
		Options: []model.QuestionOption{
			{Label: "Red"},
			{Label: "Blue", OrderIndex: 1},
		},
	}
	if err := InsertQuestion(context.Background(), db, &q); err != nil {
		t.Fatalf("insert question: %v", err)
	}
	return q
}

func seedSurvey(t *testing.T, db Querier, published bool) model.Survey {
	t.Helper()
	s := model.Survey{Title: "Lunch poll", Published: published}
	if err := InsertSurvey(context.Background(), db, &s); err != nil {
		t.Fatalf("insert survey: %v", err)
	}
	return s
}

func TestQuestionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	q := seedQuestion(t, db)

	got, err := GetQuestion(ctx, db, q.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.Title != "Color" || got.Type != model.Dropdown {
		t.Errorf("got %q/%s", got.Title, got.Type)
	}
	if len(got.Options) != 2 || got.Options[0].Label != "Red" || got.Options[1].Label != "Blue" {
		t.Errorf("options must come back in order, got %v", got.Options)
	}

	got.Title = "Colour"
	got.Options = []model.QuestionOption{{Label: "Green"}}
	if err := UpdateQuestion(ctx, db, &got); err != nil {
		t.Fatalf("update question: %v", err)
	}
	got, err = GetQuestion(ctx, db, q.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "Colour" || len(got.Options) != 1 || got.Options[0].Label != "Green" {
		t.Errorf("update must replace fields and options, got %q %v", got.Title, got.Options)
	}
}

func TestArchivedQuestionIsInvisible(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	q := seedQuestion(t, db)
	if err := ArchiveQuestion(ctx, db, q.ID); err != nil {
		t.Fatalf("archive question: %v", err)
	}

	_, err := GetQuestion(ctx, db, q.ID)
	if _, ok := err.(model.NotFoundError); !ok {
		t.Errorf("archived question must read as not found, got %v", err)
	}

	// import reconciliation still sees the id
	known, err := QuestionExists(ctx, db, q.ID)
	if err != nil || !known {
		t.Errorf("archived id must still exist, got %v %v", known, err)
	}

	page, err := ListQuestions(ctx, db, "", 0, 10)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if page.TotalElements != 0 {
		t.Errorf("archived question leaked into the list")
	}
}

func TestListQuestionsSearchAndPaging(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"Favorite color", "Favorite meal", "Age"} {
		q := model.Question{Title: title, Type: model.ShortAnswer}
		if err := InsertQuestion(ctx, db, &q); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}

	page, err := ListQuestions(ctx, db, "Favorite", 0, 1)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if page.TotalElements != 2 || page.TotalPages != 2 || len(page.Content) != 1 {
		t.Errorf("got total=%d pages=%d len=%d, want 2/2/1",
			page.TotalElements, page.TotalPages, len(page.Content))
	}
}

func TestLinksComeBackOrderedAndResolved(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := seedSurvey(t, db, true)
	first := seedQuestion(t, db)
	second := seedQuestion(t, db)

	// insert out of order on purpose
	links := []model.QuestionLink{
		{SurveyID: s.ID, QuestionID: second.ID, OrderIndex: 1},
		{SurveyID: s.ID, QuestionID: first.ID, OrderIndex: 0, LabelOverride: strptr("Pick one")},
	}
	for i := range links {
		if err := InsertLink(ctx, db, &links[i]); err != nil {
			t.Fatalf("insert link: %v", err)
		}
	}

	loaded, err := ListLinks(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 links, got %d", len(loaded))
	}
	if loaded[0].QuestionID != first.ID {
		t.Error("links must come back by order index")
	}
	if loaded[0].LabelOverride == nil || *loaded[0].LabelOverride != "Pick one" {
		t.Error("label override lost on the round trip")
	}
	if loaded[0].Question == nil || len(loaded[0].Question.Options) != 2 {
		t.Error("links must resolve their question with options")
	}

	n, err := CountLinks(ctx, db, s.ID)
	if err != nil || n != 2 {
		t.Errorf("count links = %d %v, want 2", n, err)
	}
}

func TestDuplicateLinkDetection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := seedSurvey(t, db, false)
	q := seedQuestion(t, db)

	link := model.QuestionLink{SurveyID: s.ID, QuestionID: q.ID}
	if err := InsertLink(ctx, db, &link); err != nil {
		t.Fatalf("insert link: %v", err)
	}

	linked, err := LinkExists(ctx, db, s.ID, q.ID)
	if err != nil || !linked {
		t.Errorf("link exists = %v %v, want true", linked, err)
	}

	dup := model.QuestionLink{SurveyID: s.ID, QuestionID: q.ID}
	if err := InsertLink(ctx, db, &dup); err == nil {
		t.Error("the unique index must reject a second link to the same question")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := seedSurvey(t, db, true)
	q := seedQuestion(t, db)

	resp := model.SurveyResponse{
		SurveyID:    s.ID,
		SubmitterID: "anon-1",
		Answers: []model.AnswerDetail{
			{
				QuestionID: q.ID,
				AnswerType: model.AnswerSelection,
				SelectedOptions: []model.SelectedOption{
					{OptionID: q.Options[0].ID, Label: "Red"},
				},
			},
		},
	}
	if err := InsertResponse(ctx, db, &resp); err != nil {
		t.Fatalf("insert response: %v", err)
	}

	all, err := ListResponses(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(all) != 1 || len(all[0].Answers) != 1 {
		t.Fatalf("expected 1 response with 1 answer, got %+v", all)
	}
	sel := all[0].Answers[0].SelectedOptions
	if len(sel) != 1 || sel[0].Label != "Red" {
		t.Errorf("label snapshot lost, got %v", sel)
	}

	got, err := GetResponse(ctx, db, s.ID, resp.ID)
	if err != nil {
		t.Fatalf("get response: %v", err)
	}
	if got.SubmitterID != "anon-1" || len(got.Answers) != 1 {
		t.Errorf("got %+v", got)
	}

	page, err := PageResponses(ctx, db, s.ID, 0, 10)
	if err != nil {
		t.Fatalf("page responses: %v", err)
	}
	if page.TotalElements != 1 || page.Content[0].AnswerCount != 1 {
		t.Errorf("summary = %+v", page)
	}
}

func TestSurveySummaryCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := seedSurvey(t, db, true)
	q := seedQuestion(t, db)
	link := model.QuestionLink{SurveyID: s.ID, QuestionID: q.ID}
	if err := InsertLink(ctx, db, &link); err != nil {
		t.Fatalf("insert link: %v", err)
	}
	resp := model.SurveyResponse{SurveyID: s.ID}
	if err := InsertResponse(ctx, db, &resp); err != nil {
		t.Fatalf("insert response: %v", err)
	}

	page, err := ListSurveys(ctx, db, "", 0, 10)
	if err != nil {
		t.Fatalf("list surveys: %v", err)
	}
	if len(page.Content) != 1 {
		t.Fatalf("expected 1 survey, got %d", len(page.Content))
	}
	summary := page.Content[0]
	if summary.QuestionCount != 1 || summary.ResponseCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", summary.QuestionCount, summary.ResponseCount)
	}
}

func TestArchiveSurveyUnpublishes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s := seedSurvey(t, db, true)
	if err := ArchiveSurvey(ctx, db, s.ID); err != nil {
		t.Fatalf("archive survey: %v", err)
	}

	_, err := GetSurvey(ctx, db, s.ID)
	if _, ok := err.(model.NotFoundError); !ok {
		t.Errorf("archived survey must read as not found, got %v", err)
	}

	var published bool
	err = db.QueryRowContext(ctx, `SELECT published FROM survey WHERE id = ?`, s.ID).Scan(&published)
	if err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if published {
		t.Error("archiving must also unpublish")
	}
}

func strptr(s string) *string { return &s }
