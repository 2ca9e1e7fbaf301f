package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the entity store backing the bot: users, course material, tests
// and quiz statistics. It is the only shared mutable resource; callers
// re-fetch collections on every view instead of caching across steps.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		surname TEXT NOT NULL DEFAULT '',
		patronymic TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'student',
		active INTEGER NOT NULL DEFAULT 1,
		banned INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS access_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		surname TEXT NOT NULL DEFAULT '',
		patronymic TEXT NOT NULL DEFAULT '',
		requested_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		remote_id TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS lectures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		file_id INTEGER NOT NULL,
		FOREIGN KEY (file_id) REFERENCES files(id)
	);

	CREATE TABLE IF NOT EXISTS lab_works (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		deadline DATETIME,
		allow_late INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (file_id) REFERENCES files(id)
	);

	CREATE TABLE IF NOT EXISTS tests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		lecture_id INTEGER,
		FOREIGN KEY (lecture_id) REFERENCES lectures(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		test_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		max_points INTEGER,
		FOREIGN KEY (test_id) REFERENCES tests(id)
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		is_right INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS test_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		test_id INTEGER NOT NULL,
		last_score INTEGER NOT NULL DEFAULT 0,
		last_submission_time DATETIME,
		attempts_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, test_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (test_id) REFERENCES tests(id)
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		lab_id INTEGER NOT NULL,
		file_id INTEGER NOT NULL,
		submitted_at DATETIME NOT NULL,
		is_late INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'uploaded',
		score INTEGER,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (lab_id) REFERENCES lab_works(id),
		FOREIGN KEY (file_id) REFERENCES files(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
