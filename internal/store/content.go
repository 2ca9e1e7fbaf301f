package store

import (
	"log/slog"
	"time"

	"github.com/okunev/studybot/internal/model"
)

// CreateFile stores a file reference and returns its id.
func (s *Store) CreateFile(f model.File) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO files (type, remote_id, path) VALUES (?, ?, ?)`,
		f.Type, f.RemoteID, f.Path,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetFile returns a file reference by id.
func (s *Store) GetFile(id int64) (model.File, error) {
	var f model.File
	err := s.db.QueryRow(
		`SELECT id, type, remote_id, path FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Type, &f.RemoteID, &f.Path)
	return f, err
}

// UpdateFileRemoteID replaces the platform file id of a stored reference.
func (s *Store) UpdateFileRemoteID(id int64, remoteID string) error {
	_, err := s.db.Exec(`UPDATE files SET remote_id = ? WHERE id = ?`, remoteID, id)
	return err
}

// DeleteFile removes a file reference.
func (s *Store) DeleteFile(id int64) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, id)
	return err
}

// CreateLecture creates a lecture row pointing at an existing file.
func (s *Store) CreateLecture(name string, fileID int64) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO lectures (name, file_id) VALUES (?, ?)`, name, fileID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created lecture", "id", id, "name", name)
	return id, nil
}

// GetLecture returns a lecture by id.
func (s *Store) GetLecture(id int64) (model.Lecture, error) {
	var l model.Lecture
	err := s.db.QueryRow(
		`SELECT id, name, file_id FROM lectures WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.FileID)
	return l, err
}

// ListLectures returns all lectures ordered by id.
func (s *Store) ListLectures() ([]model.Lecture, error) {
	rows, err := s.db.Query(`SELECT id, name, file_id FROM lectures ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lectures []model.Lecture
	for rows.Next() {
		var l model.Lecture
		if err := rows.Scan(&l.ID, &l.Name, &l.FileID); err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

// RenameLecture updates a lecture's name.
func (s *Store) RenameLecture(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE lectures SET name = ? WHERE id = ?`, name, id)
	return err
}

// UpdateLectureFile repoints a lecture at a different file.
func (s *Store) UpdateLectureFile(id, fileID int64) error {
	_, err := s.db.Exec(`UPDATE lectures SET file_id = ? WHERE id = ?`, fileID, id)
	return err
}

// DeleteLecture removes a lecture row.
func (s *Store) DeleteLecture(id int64) error {
	_, err := s.db.Exec(`DELETE FROM lectures WHERE id = ?`, id)
	if err == nil {
		slog.Info("deleted lecture", "id", id)
	}
	return err
}

// CreateLabWork creates a lab assignment pointing at an existing file.
func (s *Store) CreateLabWork(l model.LabWork) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO lab_works (file_id, name, description, deadline, allow_late)
		 VALUES (?, ?, ?, ?, ?)`,
		l.FileID, l.Name, l.Description, l.Deadline, l.AllowLate,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created lab work", "id", id, "name", l.Name)
	return id, nil
}

// GetLabWork returns a lab assignment by id.
func (s *Store) GetLabWork(id int64) (model.LabWork, error) {
	var l model.LabWork
	err := s.db.QueryRow(
		`SELECT id, file_id, name, description, deadline, allow_late FROM lab_works WHERE id = ?`, id,
	).Scan(&l.ID, &l.FileID, &l.Name, &l.Description, &l.Deadline, &l.AllowLate)
	return l, err
}

// ListLabWorks returns all lab assignments ordered by id.
func (s *Store) ListLabWorks() ([]model.LabWork, error) {
	rows, err := s.db.Query(
		`SELECT id, file_id, name, description, deadline, allow_late FROM lab_works ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var labs []model.LabWork
	for rows.Next() {
		var l model.LabWork
		if err := rows.Scan(&l.ID, &l.FileID, &l.Name, &l.Description, &l.Deadline, &l.AllowLate); err != nil {
			return nil, err
		}
		labs = append(labs, l)
	}
	return labs, rows.Err()
}

// RenameLabWork updates a lab's name.
func (s *Store) RenameLabWork(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE lab_works SET name = ? WHERE id = ?`, name, id)
	return err
}

// UpdateLabDescription updates a lab's description.
func (s *Store) UpdateLabDescription(id int64, description string) error {
	_, err := s.db.Exec(`UPDATE lab_works SET description = ? WHERE id = ?`, description, id)
	return err
}

// UpdateLabFile repoints a lab at a different file.
func (s *Store) UpdateLabFile(id, fileID int64) error {
	_, err := s.db.Exec(`UPDATE lab_works SET file_id = ? WHERE id = ?`, fileID, id)
	return err
}

// DeleteLabWork removes a lab row.
func (s *Store) DeleteLabWork(id int64) error {
	_, err := s.db.Exec(`DELETE FROM lab_works WHERE id = ?`, id)
	if err == nil {
		slog.Info("deleted lab work", "id", id)
	}
	return err
}

// CreateSubmission records an uploaded lab solution.
func (s *Store) CreateSubmission(sub model.Submission) (int64, error) {
	submittedAt := sub.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	status := sub.Status
	if status == "" {
		status = model.SubmissionUploaded
	}
	res, err := s.db.Exec(
		`INSERT INTO submissions (user_id, lab_id, file_id, submitted_at, is_late, status, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.UserID, sub.LabID, sub.FileID, submittedAt, sub.Late, status, sub.Score,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created submission", "id", id, "user_id", sub.UserID, "lab_id", sub.LabID)
	return id, nil
}

// ListSubmissionsByUser returns all submissions for a user ordered by id.
func (s *Store) ListSubmissionsByUser(userID int64) ([]model.Submission, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, lab_id, file_id, submitted_at, is_late, status, score
		 FROM submissions WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.LabID, &sub.FileID, &sub.SubmittedAt, &sub.Late, &sub.Status, &sub.Score); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GradeSubmission marks a submission graded with the given score.
func (s *Store) GradeSubmission(id int64, score int) error {
	_, err := s.db.Exec(
		`UPDATE submissions SET status = ?, score = ? WHERE id = ?`,
		model.SubmissionGraded, score, id,
	)
	return err
}
