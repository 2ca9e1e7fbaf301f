package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/okunev/studybot/internal/model"
)

// CreateUser inserts a new user.
func (s *Store) CreateUser(u model.User) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (telegram_id, username, name, surname, patronymic, role, active, banned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.TelegramID, u.Username, u.Name, u.Surname, u.Patronymic, u.Role, u.Active, u.Banned, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create user", "telegram_id", u.TelegramID, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "telegram_id", u.TelegramID, "role", u.Role)
	return id, nil
}

// GetUserByTelegramID returns a user by chat-platform id, or nil if unknown.
func (s *Store) GetUserByTelegramID(telegramID int64) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, telegram_id, username, name, surname, patronymic, role, active, banned, created_at
		 FROM users WHERE telegram_id = ?`, telegramID,
	).Scan(&u.ID, &u.TelegramID, &u.Username, &u.Name, &u.Surname, &u.Patronymic, &u.Role, &u.Active, &u.Banned, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user by row id.
func (s *Store) GetUser(id int64) (model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, telegram_id, username, name, surname, patronymic, role, active, banned, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.TelegramID, &u.Username, &u.Name, &u.Surname, &u.Patronymic, &u.Role, &u.Active, &u.Banned, &u.CreatedAt)
	return u, err
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, telegram_id, username, name, surname, patronymic, role, active, banned, created_at
		 FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.Name, &u.Surname, &u.Patronymic, &u.Role, &u.Active, &u.Banned, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(id int64, role model.UserRole) error {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	return err
}

// SetUserBanned sets the banned flag on a user.
func (s *Store) SetUserBanned(id int64, banned bool) error {
	_, err := s.db.Exec(`UPDATE users SET banned = ? WHERE id = ?`, banned, id)
	return err
}

// DeleteUser removes a user row.
func (s *Store) DeleteUser(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err == nil {
		slog.Info("deleted user", "id", id)
	}
	return err
}

// UserCount returns the total number of users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
