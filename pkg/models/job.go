package models

import "time"

// Company represents an employer whose postings are aggregated.
type Company struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

// CompanyBrief is the compact company shape embedded in search documents
// and search results.
type CompanyBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// Job represents a scraped job posting as stored in Postgres. The scraped
// fields are immutable once stored; only expiry and the attached analysis
// change over time.
type Job struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	FullDescription string    `json:"full_description"`
	PostedDate      string    `json:"posted_date"`
	EmploymentType  string    `json:"employment_type"`
	Location        string    `json:"location"`
	IsRemote        bool      `json:"is_remote"`
	Expired         bool      `json:"expired"`
	CompanyID       string    `json:"company_id"`
	Company         *Company  `json:"company,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// JobWithAnalysis pairs a job with its analysis for index rebuilds.
type JobWithAnalysis struct {
	Job      Job
	Analysis *Analysis
}
