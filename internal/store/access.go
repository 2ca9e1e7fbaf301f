package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/okunev/studybot/internal/model"
)

// CreateAccessRequest records a pending registration request.
func (s *Store) CreateAccessRequest(r model.AccessRequest) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO access_requests (telegram_id, username, name, surname, patronymic, requested_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.TelegramID, r.Username, r.Name, r.Surname, r.Patronymic, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created access request", "id", id, "telegram_id", r.TelegramID)
	return id, nil
}

// GetAccessRequest returns a request by id.
func (s *Store) GetAccessRequest(id int64) (model.AccessRequest, error) {
	var r model.AccessRequest
	err := s.db.QueryRow(
		`SELECT id, telegram_id, username, name, surname, patronymic, requested_at
		 FROM access_requests WHERE id = ?`, id,
	).Scan(&r.ID, &r.TelegramID, &r.Username, &r.Name, &r.Surname, &r.Patronymic, &r.RequestedAt)
	return r, err
}

// GetAccessRequestByTelegramID returns the pending request for a chat user,
// or nil if there is none.
func (s *Store) GetAccessRequestByTelegramID(telegramID int64) (*model.AccessRequest, error) {
	var r model.AccessRequest
	err := s.db.QueryRow(
		`SELECT id, telegram_id, username, name, surname, patronymic, requested_at
		 FROM access_requests WHERE telegram_id = ? ORDER BY id LIMIT 1`, telegramID,
	).Scan(&r.ID, &r.TelegramID, &r.Username, &r.Name, &r.Surname, &r.Patronymic, &r.RequestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListAccessRequests returns all pending requests ordered by id.
func (s *Store) ListAccessRequests() ([]model.AccessRequest, error) {
	rows, err := s.db.Query(
		`SELECT id, telegram_id, username, name, surname, patronymic, requested_at
		 FROM access_requests ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []model.AccessRequest
	for rows.Next() {
		var r model.AccessRequest
		if err := rows.Scan(&r.ID, &r.TelegramID, &r.Username, &r.Name, &r.Surname, &r.Patronymic, &r.RequestedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// DeleteAccessRequest removes a request row.
func (s *Store) DeleteAccessRequest(id int64) error {
	_, err := s.db.Exec(`DELETE FROM access_requests WHERE id = ?`, id)
	return err
}

// ApproveAccessRequest turns a pending request into a user with the given
// role and removes the request, in one transaction.
func (s *Store) ApproveAccessRequest(id int64, role model.UserRole) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var r model.AccessRequest
	err = tx.QueryRow(
		`SELECT telegram_id, username, name, surname, patronymic
		 FROM access_requests WHERE id = ?`, id,
	).Scan(&r.TelegramID, &r.Username, &r.Name, &r.Surname, &r.Patronymic)
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO users (telegram_id, username, name, surname, patronymic, role, active, banned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, 0, ?)
		 ON CONFLICT(telegram_id) DO NOTHING`,
		r.TelegramID, r.Username, r.Name, r.Surname, r.Patronymic, role, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`DELETE FROM access_requests WHERE id = ?`, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Info("approved access request", "request_id", id, "user_id", userID, "role", role)
	return userID, nil
}
