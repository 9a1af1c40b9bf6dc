package survey

import (
	"sort"

	"github.com/gofrs/uuid"

	"github.com/talaatharb/survey-forge/model"
)

// DefaultTextSamples bounds the free-text excerpts returned per question.
const DefaultTextSamples = 10

type DailyCount struct {
	Date  string `json:"date"` // calendar day, 2006-01-02
	Count int    `json:"count"`
}

type OptionCount struct {
	OptionID   uuid.UUID `json:"optionId"`
	Label      string    `json:"label"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
}

type QuestionAnalytics struct {
	QuestionID    uuid.UUID          `json:"questionId"`
	QuestionTitle string             `json:"questionTitle"`
	QuestionType  model.QuestionType `json:"questionType"`
	TotalResponses int               `json:"totalResponses"`

	OptionCounts      []OptionCount `json:"optionCounts,omitempty"`
	ScaleDistribution map[int]int   `json:"scaleDistribution,omitempty"`
	ScaleAverage      *float64      `json:"scaleAverage,omitempty"`
	ScaleMedian       *float64      `json:"scaleMedian,omitempty"`
	TextSamples       []string      `json:"textSamples,omitempty"`
}

type SurveyAnalytics struct {
	SurveyID            uuid.UUID           `json:"surveyId"`
	SurveyTitle         string              `json:"surveyTitle"`
	TotalSubmissions    int                 `json:"totalSubmissions"`
	SubmissionsOverTime []DailyCount        `json:"submissionsOverTime"`
	Questions           []QuestionAnalytics `json:"questionAnalytics"`
}

// Aggregate recomputes the full analytics view from scratch. It is pure: a
// point-in-time snapshot of responses in, statistics out. Hidden links are
// included so questions hidden after publication keep their history visible.
func Aggregate(s model.Survey, responses []model.SurveyResponse, maxTextSamples int) SurveyAnalytics {
	if maxTextSamples <= 0 {
		maxTextSamples = DefaultTextSamples
	}

	analytics := SurveyAnalytics{
		SurveyID:            s.ID,
		SurveyTitle:         s.Title,
		TotalSubmissions:    len(responses),
		SubmissionsOverTime: dailyCounts(responses),
		Questions:           []QuestionAnalytics{},
	}

	byQuestion := make(map[uuid.UUID][]model.AnswerDetail)
	for _, r := range responses {
		for _, d := range r.Answers {
			byQuestion[d.QuestionID] = append(byQuestion[d.QuestionID], d)
		}
	}

	for _, link := range Ordered(s.Links) {
		q := link.Question
		if q == nil {
			continue
		}
		eff, _ := Resolve(link)
		analytics.Questions = append(analytics.Questions,
			questionAnalytics(*q, eff.Title, byQuestion[q.ID], maxTextSamples))
	}

	return analytics
}

func dailyCounts(responses []model.SurveyResponse) []DailyCount {
	perDay := make(map[string]int)
	for _, r := range responses {
		perDay[r.SubmittedAt.Format("2006-01-02")]++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]DailyCount, len(days))
	for i, day := range days {
		series[i] = DailyCount{Date: day, Count: perDay[day]}
	}
	return series
}

func questionAnalytics(q model.Question, title string, details []model.AnswerDetail, maxTextSamples int) QuestionAnalytics {
	qa := QuestionAnalytics{
		QuestionID:     q.ID,
		QuestionTitle:  title,
		QuestionType:   q.Type,
		TotalResponses: len(details),
	}

	switch {
	case q.Type.HasOptions():
		qa.OptionCounts = optionCounts(q, details)

	case q.Type == model.LinearScale:
		scaleStats(&qa, details)

	case q.Type == model.ShortAnswer || q.Type == model.Paragraph:
		qa.TextSamples = textSamples(details, maxTextSamples)
	}

	return qa
}

// optionCounts reports one entry per defined option. Percentages divide by
// the number of respondents who answered this question, not by the survey's
// submission total, and zero respondents yields zero, not NaN.
func optionCounts(q model.Question, details []model.AnswerDetail) []OptionCount {
	counts := make(map[uuid.UUID]int)
	for _, d := range details {
		for _, sel := range d.SelectedOptions {
			counts[sel.OptionID]++
		}
	}

	out := make([]OptionCount, len(q.Options))
	for i, opt := range q.Options {
		oc := OptionCount{OptionID: opt.ID, Label: opt.Label, Count: counts[opt.ID]}
		if len(details) > 0 {
			oc.Percentage = float64(oc.Count) * 100 / float64(len(details))
		}
		out[i] = oc
	}
	return out
}

func scaleStats(qa *QuestionAnalytics, details []model.AnswerDetail) {
	values := []int{}
	for _, d := range details {
		if d.NumericAnswer != nil {
			values = append(values, *d.NumericAnswer)
		}
	}
	if len(values) == 0 {
		return
	}

	distribution := make(map[int]int, len(values))
	sum := 0
	for _, v := range values {
		distribution[v]++
		sum += v
	}
	qa.ScaleDistribution = distribution

	avg := float64(sum) / float64(len(values))
	qa.ScaleAverage = &avg

	sort.Ints(values)
	var median float64
	middle := len(values) / 2
	if len(values)%2 == 0 {
		median = float64(values[middle-1]+values[middle]) / 2
	} else {
		median = float64(values[middle])
	}
	qa.ScaleMedian = &median
}

func textSamples(details []model.AnswerDetail, max int) []string {
	samples := []string{}
	for _, d := range details {
		if d.TextAnswer == "" {
			continue
		}
		samples = append(samples, d.TextAnswer)
		if len(samples) == max {
			break
		}
	}
	return samples
}
