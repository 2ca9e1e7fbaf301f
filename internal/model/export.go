package model

// Export types for the `studybot export` subcommand: a JSON snapshot of every
// test together with the per-student results accumulated in test_stats.

// CourseExport is the top-level export document.
type CourseExport struct {
	Course string       `json:"course"`
	Date   string       `json:"date"`
	Tests  []TestExport `json:"tests"`
}

// TestExport holds one test and all recorded results for it.
type TestExport struct {
	TestID    int64          `json:"test_id"`
	Name      string         `json:"name"`
	Questions int            `json:"questions"`
	Results   []ResultExport `json:"results"`
}

// ResultExport is one student's last recorded run of a test.
type ResultExport struct {
	Student   string `json:"student"`
	Username  string `json:"username,omitempty"`
	LastScore int    `json:"last_score"`
	Attempts  int    `json:"attempts"`
	LastTime  string `json:"last_time,omitempty"`
}
