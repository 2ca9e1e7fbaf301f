package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/okunev/studybot/internal/model"
)

// CreateTest creates a test row.
func (s *Store) CreateTest(name string, lectureID *int64) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO tests (name, lecture_id) VALUES (?, ?)`, name, lectureID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created test", "id", id, "name", name)
	return id, nil
}

// GetTest returns a test by id.
func (s *Store) GetTest(id int64) (model.Test, error) {
	var t model.Test
	err := s.db.QueryRow(
		`SELECT id, name, lecture_id FROM tests WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.LectureID)
	return t, err
}

// ListTests returns all tests ordered by id.
func (s *Store) ListTests() ([]model.Test, error) {
	rows, err := s.db.Query(`SELECT id, name, lecture_id FROM tests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Name, &t.LectureID); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// RenameTest updates a test's name.
func (s *Store) RenameTest(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE tests SET name = ? WHERE id = ?`, name, id)
	return err
}

// DeleteTest removes a test with its questions, answers and stats.
func (s *Store) DeleteTest(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE test_id = ?)`, id,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE test_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM test_stats WHERE test_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tests WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("deleted test", "id", id)
	return nil
}

// CreateQuestion appends a question to a test.
func (s *Store) CreateQuestion(testID int64, text string, maxPoints *int) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO questions (test_id, text, max_points) VALUES (?, ?, ?)`,
		testID, text, maxPoints,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetQuestion returns a question by id.
func (s *Store) GetQuestion(id int64) (model.Question, error) {
	var q model.Question
	err := s.db.QueryRow(
		`SELECT id, test_id, text, max_points FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.TestID, &q.Text, &q.MaxPoints)
	return q, err
}

// ListQuestionsByTest returns a test's questions in insertion order.
func (s *Store) ListQuestionsByTest(testID int64) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, test_id, text, max_points FROM questions WHERE test_id = ? ORDER BY id`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Text, &q.MaxPoints); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpdateQuestionText renames a question.
func (s *Store) UpdateQuestionText(id int64, text string) error {
	_, err := s.db.Exec(`UPDATE questions SET text = ? WHERE id = ?`, text, id)
	return err
}

// DeleteQuestion removes a question and its answers.
func (s *Store) DeleteQuestion(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM answers WHERE question_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateAnswer appends an answer variant to a question.
func (s *Store) CreateAnswer(questionID int64, text string, right bool) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO answers (question_id, text, is_right) VALUES (?, ?, ?)`,
		questionID, text, right,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAnswer returns an answer by id.
func (s *Store) GetAnswer(id int64) (model.Answer, error) {
	var a model.Answer
	err := s.db.QueryRow(
		`SELECT id, question_id, text, is_right FROM answers WHERE id = ?`, id,
	).Scan(&a.ID, &a.QuestionID, &a.Text, &a.Right)
	return a, err
}

// ListAnswersByQuestion returns a question's answers in insertion order.
func (s *Store) ListAnswersByQuestion(questionID int64) ([]model.Answer, error) {
	rows, err := s.db.Query(
		`SELECT id, question_id, text, is_right FROM answers WHERE question_id = ? ORDER BY id`, questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Right); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// UpdateAnswerText updates an answer's text.
func (s *Store) UpdateAnswerText(id int64, text string) error {
	_, err := s.db.Exec(`UPDATE answers SET text = ? WHERE id = ?`, text, id)
	return err
}

// ToggleAnswerRight flips the correctness flag of an answer.
func (s *Store) ToggleAnswerRight(id int64) error {
	_, err := s.db.Exec(`UPDATE answers SET is_right = NOT is_right WHERE id = ?`, id)
	return err
}

// DeleteAnswer removes an answer variant.
func (s *Store) DeleteAnswer(id int64) error {
	_, err := s.db.Exec(`DELETE FROM answers WHERE id = ?`, id)
	return err
}

// UpsertTestStat records a completed run: last score and time are replaced,
// attempts_count is incremented.
func (s *Store) UpsertTestStat(userID, testID int64, score int) error {
	_, err := s.db.Exec(
		`INSERT INTO test_stats (user_id, test_id, last_score, last_submission_time, attempts_count)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(user_id, test_id) DO UPDATE SET
			last_score = excluded.last_score,
			last_submission_time = excluded.last_submission_time,
			attempts_count = attempts_count + 1`,
		userID, testID, score, time.Now(),
	)
	if err != nil {
		slog.Error("failed to upsert test stat", "user_id", userID, "test_id", testID, "error", err)
		return err
	}
	slog.Info("recorded test result", "user_id", userID, "test_id", testID, "score", score)
	return nil
}

// GetTestStat returns the stat row for (user, test), or nil if none exists.
func (s *Store) GetTestStat(userID, testID int64) (*model.TestStat, error) {
	var st model.TestStat
	err := s.db.QueryRow(
		`SELECT id, user_id, test_id, last_score, last_submission_time, attempts_count
		 FROM test_stats WHERE user_id = ? AND test_id = ?`,
		userID, testID,
	).Scan(&st.ID, &st.UserID, &st.TestID, &st.LastScore, &st.LastSubmission, &st.Attempts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListTestStats returns all stat rows for a test ordered by user id.
func (s *Store) ListTestStats(testID int64) ([]model.TestStat, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, test_id, last_score, last_submission_time, attempts_count
		 FROM test_stats WHERE test_id = ? ORDER BY user_id`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []model.TestStat
	for rows.Next() {
		var st model.TestStat
		if err := rows.Scan(&st.ID, &st.UserID, &st.TestID, &st.LastScore, &st.LastSubmission, &st.Attempts); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
