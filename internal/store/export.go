package store

import (
	"time"

	"github.com/okunev/studybot/internal/model"
)

// ExportTests builds the export view of every test with its recorded
// per-student results.
func (s *Store) ExportTests() ([]model.TestExport, error) {
	tests, err := s.ListTests()
	if err != nil {
		return nil, err
	}

	var out []model.TestExport
	for _, t := range tests {
		questions, err := s.ListQuestionsByTest(t.ID)
		if err != nil {
			return nil, err
		}
		stats, err := s.ListTestStats(t.ID)
		if err != nil {
			return nil, err
		}

		exp := model.TestExport{
			TestID:    t.ID,
			Name:      t.Name,
			Questions: len(questions),
		}
		for _, st := range stats {
			u, err := s.GetUser(st.UserID)
			if err != nil {
				return nil, err
			}
			res := model.ResultExport{
				Student:   u.DisplayName(),
				Username:  u.Username,
				LastScore: st.LastScore,
				Attempts:  st.Attempts,
			}
			if st.LastSubmission != nil {
				res.LastTime = st.LastSubmission.Format(time.RFC3339)
			}
			exp.Results = append(exp.Results, res)
		}
		out = append(out, exp)
	}
	return out, nil
}
