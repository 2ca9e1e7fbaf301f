package model

import "time"

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleOwner is the bot owner; owners are seeded from configuration.
	UserRoleOwner UserRole = "owner"
	// UserRoleAdmin is an instructor who can publish material.
	UserRoleAdmin UserRole = "admin"
	// UserRoleStudent is an approved student.
	UserRoleStudent UserRole = "student"
	// UserRoleGuest is anyone not yet approved.
	UserRoleGuest UserRole = "guest"
)

// CanPublish reports whether the role may create or edit course material.
func (r UserRole) CanPublish() bool {
	return r == UserRoleOwner || r == UserRoleAdmin
}

// FileType classifies stored file references.
type FileType string

const (
	FileTypeLecture    FileType = "lecture"
	FileTypeLab        FileType = "lab"
	FileTypeSubmission FileType = "submission"
)

// SubmissionStatus represents the grading state of a lab submission.
type SubmissionStatus string

const (
	SubmissionUploaded SubmissionStatus = "uploaded"
	SubmissionGraded   SubmissionStatus = "graded"
)

// User represents an approved bot user.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Name       string
	Surname    string
	Patronymic string
	Role       UserRole
	Active     bool
	Banned     bool
	CreatedAt  time.Time
}

// DisplayName returns "Surname Name" for lists and reports.
func (u User) DisplayName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Surname + " " + u.Name
}

// AccessRequest is a pending, credential-free registration request.
type AccessRequest struct {
	ID          int64
	TelegramID  int64
	Username    string
	Name        string
	Surname     string
	Patronymic  string
	RequestedAt time.Time
}

// File is a reference to an uploaded document. The payload lives on the chat
// platform; only the platform file id and an optional local path are stored.
type File struct {
	ID       int64
	Type     FileType
	RemoteID string
	Path     string
}

// Lecture is a published lecture backed by a file.
type Lecture struct {
	ID     int64
	Name   string
	FileID int64
}

// LabWork is a published lab assignment.
type LabWork struct {
	ID          int64
	FileID      int64
	Name        string
	Description string
	Deadline    *time.Time
	AllowLate   bool
}

// Test is a quiz; questions reference it by id.
type Test struct {
	ID        int64
	Name      string
	LectureID *int64
}

// Question belongs to a test. MaxPoints is optional and unused by the
// single-choice scoring path.
type Question struct {
	ID        int64
	TestID    int64
	Text      string
	MaxPoints *int
}

// Answer is one selectable variant of a question.
type Answer struct {
	ID         int64
	QuestionID int64
	Text       string
	Right      bool
}

// TestStat is the per-(user, test) record of the last completed run.
type TestStat struct {
	ID             int64
	UserID         int64
	TestID         int64
	LastScore      int
	LastSubmission *time.Time
	Attempts       int
}

// Submission is an uploaded solution for a lab work.
type Submission struct {
	ID          int64
	UserID      int64
	LabID       int64
	FileID      int64
	SubmittedAt time.Time
	Late        bool
	Status      SubmissionStatus
	Score       *int
}
