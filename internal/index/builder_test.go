package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobpulse/pkg/models"
)

func completedAnalysis() *models.Analysis {
	level := models.ExperienceSenior
	period := models.PeriodYear
	min := 120000.0
	max := 160000.0
	currency := "USD"
	return &models.Analysis{
		ID:              "a1",
		JobID:           "j1",
		Status:          models.StatusCompleted,
		SalaryMin:       &min,
		SalaryMax:       &max,
		SalaryCurrency:  &currency,
		SalaryPeriod:    &period,
		SkillTags:       "Go, PostgreSQL, Elasticsearch",
		ExperienceLevel: &level,
		Summary:         "Backend role building search infrastructure.",
	}
}

func sampleJob() *models.Job {
	return &models.Job{
		ID:              "j1",
		Title:           "Senior Backend Engineer",
		URL:             "https://example.com/jobs/j1",
		FullDescription: "Long description",
		PostedDate:      "2026-08-15 09:30:00",
		EmploymentType:  "Full-time",
		Location:        "Berlin, Germany",
		IsRemote:        false,
		CompanyID:       "c1",
		Company:         &models.Company{ID: "c1", Name: "Acme", IconURL: "https://example.com/acme.png"},
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := BuildDocument(sampleJob(), completedAnalysis())
	require.NoError(t, err)

	require.Equal(t, "j1", doc.ID)
	require.Equal(t, "Senior Backend Engineer", doc.Title)
	require.Equal(t, "2026-08-15T09:30:00", doc.PostedDate)
	require.Equal(t, "FULL_TIME", doc.EmploymentType)
	require.Equal(t, []string{"Go", "PostgreSQL", "Elasticsearch"}, doc.SkillTags)
	require.Equal(t, "SENIOR", doc.ExperienceLevel)
	require.Equal(t, models.CompanyBrief{ID: "c1", Name: "Acme", IconURL: "https://example.com/acme.png"}, doc.Company)

	require.NotNil(t, doc.SalaryRange)
	require.Equal(t, 120000.0, *doc.SalaryRange.Min)
	require.Equal(t, 160000.0, *doc.SalaryRange.Max)
	require.Nil(t, doc.SalaryRange.Fixed)
	require.Equal(t, "YEAR", *doc.SalaryRange.Period)
}

func TestBuildDocumentRejectsIncompleteAnalysis(t *testing.T) {
	job := sampleJob()

	_, err := BuildDocument(job, nil)
	require.Error(t, err)

	for _, status := range []models.AnalysisStatus{models.StatusPending, models.StatusProcessing, models.StatusFailed} {
		analysis := completedAnalysis()
		analysis.Status = status
		_, err := BuildDocument(job, analysis)
		require.Error(t, err, "status %s must be rejected", status)
	}
}

func TestBuildDocumentDateHandling(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"storage format", "2026-01-02 15:04:05", "2026-01-02T15:04:05"},
		{"already iso", "2026-01-02T15:04:05", "2026-01-02T15:04:05"},
		{"bare date", "2026-01-02", "2026-01-02T00:00:00"},
		{"garbage dropped", "posted yesterday", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sampleJob()
			job.PostedDate = tt.in
			doc, err := BuildDocument(job, completedAnalysis())
			require.NoError(t, err)
			require.Equal(t, tt.want, doc.PostedDate)
		})
	}
}

func TestBuildDocumentEmptySkillTags(t *testing.T) {
	analysis := completedAnalysis()
	analysis.SkillTags = ""

	doc, err := BuildDocument(sampleJob(), analysis)
	require.NoError(t, err)
	require.NotNil(t, doc.SkillTags)
	require.Empty(t, doc.SkillTags)
}

func TestBuildDocumentOmitsEmptySalaryRange(t *testing.T) {
	analysis := completedAnalysis()
	analysis.SalaryMin = nil
	analysis.SalaryMax = nil
	analysis.SalaryFixed = nil
	analysis.SalaryCurrency = nil
	analysis.SalaryPeriod = nil

	doc, err := BuildDocument(sampleJob(), analysis)
	require.NoError(t, err)
	require.Nil(t, doc.SalaryRange)
}

func TestBuildDocumentWithoutCompanyRecord(t *testing.T) {
	job := sampleJob()
	job.Company = nil

	doc, err := BuildDocument(job, completedAnalysis())
	require.NoError(t, err)
	require.Equal(t, models.CompanyBrief{ID: "c1"}, doc.Company)
}
