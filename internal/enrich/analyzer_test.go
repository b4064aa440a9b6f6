package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jobpulse/pkg/models"
)

type stubGate struct {
	reply string
	err   error
	last  string
}

func (s *stubGate) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.last = userPrompt
	return s.reply, s.err
}

func strPtr(s string) *string { return &s }

func TestAnalyzeParsesCompleteResponse(t *testing.T) {
	gate := &stubGate{reply: `{
		"salary_min": 100000,
		"salary_max": 130000,
		"salary_currency": "USD",
		"salary_period": "year",
		"is_salary_estimated": false,
		"skill_tags": ["Go", "Kubernetes"],
		"experience_level": "senior",
		"summary": "Builds and operates backend services.",
		"locations": [{"city": "Austin", "state": "TX", "country": "US"}]
	}`}

	analyzer := NewAnalyzer(gate)
	job := &models.Job{
		ID:              "j1",
		Title:           "Senior Backend Engineer",
		FullDescription: "Salary range $100,000-$130,000 ...",
		Location:        "Austin, TX",
		Company:         &models.Company{Name: "Acme"},
	}

	res, err := analyzer.Analyze(context.Background(), job)
	require.NoError(t, err)

	require.Equal(t, 100000.0, *res.SalaryMin)
	require.Equal(t, 130000.0, *res.SalaryMax)
	require.False(t, res.IsSalaryEstimated)
	require.Equal(t, []string{"Go", "Kubernetes"}, res.SkillTags)
	require.Equal(t, models.ExperienceSenior, *res.ExperienceLevel)
	require.Equal(t, models.PeriodYear, *res.SalaryPeriod)
	require.Equal(t, "United States", *res.Locations[0].Country)

	require.Contains(t, gate.last, "Senior Backend Engineer")
	require.Contains(t, gate.last, "Acme")
}

func TestAnalyzeDefaultsEstimationToTrue(t *testing.T) {
	gate := &stubGate{reply: `{"skill_tags": ["SQL"], "experience_level": "ENTRY", "summary": "s"}`}
	analyzer := NewAnalyzer(gate)

	res, err := analyzer.Analyze(context.Background(), &models.Job{ID: "j2"})
	require.NoError(t, err)
	require.True(t, res.IsSalaryEstimated)
}

func TestAnalyzeRejectsOutOfVocabulary(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "experience level", reply: `{"experience_level": "WIZARD", "summary": "s"}`},
		{name: "salary period", reply: `{"salary_period": "FORTNIGHT", "summary": "s"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(&stubGate{reply: tt.reply})
			_, err := analyzer.Analyze(context.Background(), &models.Job{ID: "j3"})
			require.ErrorIs(t, err, ErrOutOfVocabulary)
		})
	}
}

func TestAnalyzeRejectsMalformedJSON(t *testing.T) {
	analyzer := NewAnalyzer(&stubGate{reply: "I could not find any salary information."})
	_, err := analyzer.Analyze(context.Background(), &models.Job{ID: "j4"})
	require.Error(t, err)
}

func TestAnalyzeToleratesMarkdownFences(t *testing.T) {
	analyzer := NewAnalyzer(&stubGate{reply: "```json\n{\"summary\": \"ok\", \"skill_tags\": []}\n```"})
	res, err := analyzer.Analyze(context.Background(), &models.Job{ID: "j5"})
	require.NoError(t, err)
	require.Equal(t, "ok", res.Summary)
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name string
		in   models.Location
		want models.Location
	}{
		{
			name: "remote city cleared keeps country",
			in:   models.Location{City: strPtr("Remote"), Country: strPtr("US")},
			want: models.Location{Country: strPtr("United States")},
		},
		{
			name: "remotely cleared",
			in:   models.Location{City: strPtr("remotely")},
			want: models.Location{},
		},
		{
			name: "usa canonicalized",
			in:   models.Location{City: strPtr("Austin"), Country: strPtr("USA")},
			want: models.Location{City: strPtr("Austin"), Country: strPtr("United States")},
		},
		{
			name: "uk canonicalized",
			in:   models.Location{Country: strPtr("uk")},
			want: models.Location{Country: strPtr("United Kingdom")},
		},
		{
			name: "other strings pass through",
			in:   models.Location{City: strPtr("Berlin"), Country: strPtr("Germany")},
			want: models.Location{City: strPtr("Berlin"), Country: strPtr("Germany")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeLocation(tt.in))
		})
	}
}

func TestResultToAnalysisJoinsSkillTags(t *testing.T) {
	level := models.ExperienceSenior
	res := &Result{
		SkillTags:       []string{"Go", "Kubernetes"},
		ExperienceLevel: &level,
		Summary:         "s",
	}

	analysis := res.ToAnalysis("j1")
	require.Equal(t, models.StatusCompleted, analysis.Status)
	require.Equal(t, "Go, Kubernetes", analysis.SkillTags)
	require.Equal(t, "j1", analysis.JobID)
}
