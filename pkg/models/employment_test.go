package models

import "testing"

func TestNormalizeEmploymentType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "full time", input: "Full-Time", want: EmploymentFullTime},
		{name: "ft abbreviation", input: "FT", want: EmploymentFullTime},
		{name: "part time", input: "part time", want: EmploymentPartTime},
		{name: "contractor", input: "Contractor", want: EmploymentContract},
		{name: "intern", input: "Summer Intern", want: EmploymentInternship},
		{name: "wfh", input: "WFH", want: EmploymentRemote},
		{name: "hybrid", input: "hybrid / flexible", want: EmploymentHybrid},
		{name: "onsite", input: "On-site", want: EmploymentOnSite},
		{name: "unknown", input: "gig", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmploymentType(tt.input); got != tt.want {
				t.Fatalf("NormalizeEmploymentType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseExperienceLevel(t *testing.T) {
	got, err := ParseExperienceLevel("senior")
	if err != nil {
		t.Fatalf("ParseExperienceLevel(senior): %v", err)
	}
	if got != ExperienceSenior {
		t.Fatalf("got %q, want %q", got, ExperienceSenior)
	}

	if _, err := ParseExperienceLevel("ninja"); err == nil {
		t.Fatal("expected error for out-of-vocabulary level")
	}

	if ExperienceEntry.Rank() >= ExperienceExecutive.Rank() {
		t.Fatal("experience ordering broken")
	}
}

func TestParseSalaryPeriod(t *testing.T) {
	got, err := ParseSalaryPeriod(" year ")
	if err != nil {
		t.Fatalf("ParseSalaryPeriod(year): %v", err)
	}
	if got != PeriodYear {
		t.Fatalf("got %q, want %q", got, PeriodYear)
	}

	if _, err := ParseSalaryPeriod("fortnight"); err == nil {
		t.Fatal("expected error for out-of-vocabulary period")
	}
}
