package store

import (
	"database/sql"
	"testing"

	"github.com/okunev/studybot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, telegramID int64, role model.UserRole) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		TelegramID: telegramID,
		Name:       "Ivan",
		Surname:    "Petrov",
		Role:       role,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func createTestQuiz(t *testing.T, s *Store, name string, questions int) int64 {
	t.Helper()
	testID, err := s.CreateTest(name, nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	for i := 0; i < questions; i++ {
		qID, err := s.CreateQuestion(testID, "question", nil)
		if err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
		if _, err := s.CreateAnswer(qID, "right", true); err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
		if _, err := s.CreateAnswer(qID, "wrong", false); err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
	}
	return testID
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	// Unknown telegram id resolves to nil, not an error.
	u, err := s.GetUserByTelegramID(42)
	if err != nil {
		t.Fatalf("GetUserByTelegramID: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil for unknown user, got %+v", u)
	}

	id := createTestUser(t, s, 42, model.UserRoleStudent)
	u, err = s.GetUserByTelegramID(42)
	if err != nil {
		t.Fatalf("GetUserByTelegramID: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("expected user %d, got %+v", id, u)
	}
	if u.DisplayName() != "Petrov Ivan" {
		t.Errorf("expected display name 'Petrov Ivan', got %q", u.DisplayName())
	}

	if err := s.SetUserBanned(id, true); err != nil {
		t.Fatalf("SetUserBanned: %v", err)
	}
	got, err := s.GetUser(id)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got.Banned {
		t.Error("expected user to be banned")
	}

	if err := s.UpdateUserRole(id, model.UserRoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	got, _ = s.GetUser(id)
	if got.Role != model.UserRoleAdmin {
		t.Errorf("expected role admin, got %q", got.Role)
	}

	if err := s.DeleteUser(id); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.GetUser(id); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestAccessRequestApproval(t *testing.T) {
	s := newTestStore(t)

	reqID, err := s.CreateAccessRequest(model.AccessRequest{
		TelegramID: 100,
		Name:       "Anna",
		Surname:    "Smirnova",
	})
	if err != nil {
		t.Fatalf("CreateAccessRequest: %v", err)
	}

	pending, err := s.GetAccessRequestByTelegramID(100)
	if err != nil {
		t.Fatalf("GetAccessRequestByTelegramID: %v", err)
	}
	if pending == nil || pending.ID != reqID {
		t.Fatalf("expected pending request %d, got %+v", reqID, pending)
	}

	if _, err := s.ApproveAccessRequest(reqID, model.UserRoleStudent); err != nil {
		t.Fatalf("ApproveAccessRequest: %v", err)
	}

	// Request is gone, user exists.
	pending, err = s.GetAccessRequestByTelegramID(100)
	if err != nil {
		t.Fatalf("GetAccessRequestByTelegramID: %v", err)
	}
	if pending != nil {
		t.Errorf("expected request to be removed, got %+v", pending)
	}
	u, err := s.GetUserByTelegramID(100)
	if err != nil {
		t.Fatalf("GetUserByTelegramID: %v", err)
	}
	if u == nil || u.Role != model.UserRoleStudent {
		t.Fatalf("expected approved student, got %+v", u)
	}
	if u.Name != "Anna" || u.Surname != "Smirnova" {
		t.Errorf("expected request fields to carry over, got %+v", u)
	}
}

func TestQuizCRUD(t *testing.T) {
	s := newTestStore(t)
	testID := createTestQuiz(t, s, "Networking basics", 3)

	questions, err := s.ListQuestionsByTest(testID)
	if err != nil {
		t.Fatalf("ListQuestionsByTest: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}

	answers, err := s.ListAnswersByQuestion(questions[0].ID)
	if err != nil {
		t.Fatalf("ListAnswersByQuestion: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if !answers[0].Right || answers[1].Right {
		t.Errorf("unexpected correctness flags: %+v", answers)
	}

	if err := s.ToggleAnswerRight(answers[1].ID); err != nil {
		t.Fatalf("ToggleAnswerRight: %v", err)
	}
	a, err := s.GetAnswer(answers[1].ID)
	if err != nil {
		t.Fatalf("GetAnswer: %v", err)
	}
	if !a.Right {
		t.Error("expected toggled answer to be right")
	}

	if err := s.DeleteQuestion(questions[0].ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	remaining, _ := s.ListQuestionsByTest(testID)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 questions after delete, got %d", len(remaining))
	}
	// Answers of a deleted question go with it.
	orphans, err := s.ListAnswersByQuestion(questions[0].ID)
	if err != nil {
		t.Fatalf("ListAnswersByQuestion: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("expected no orphaned answers, got %d", len(orphans))
	}

	if err := s.DeleteTest(testID); err != nil {
		t.Fatalf("DeleteTest: %v", err)
	}
	tests, _ := s.ListTests()
	if len(tests) != 0 {
		t.Errorf("expected no tests after delete, got %d", len(tests))
	}
}

func TestUpsertTestStat(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, 7, model.UserRoleStudent)
	testID := createTestQuiz(t, s, "Quiz", 2)

	// No stat before the first run.
	st, err := s.GetTestStat(userID, testID)
	if err != nil {
		t.Fatalf("GetTestStat: %v", err)
	}
	if st != nil {
		t.Fatalf("expected no stat, got %+v", st)
	}

	if err := s.UpsertTestStat(userID, testID, 1); err != nil {
		t.Fatalf("UpsertTestStat: %v", err)
	}
	st, err = s.GetTestStat(userID, testID)
	if err != nil {
		t.Fatalf("GetTestStat: %v", err)
	}
	if st == nil || st.LastScore != 1 || st.Attempts != 1 {
		t.Fatalf("expected score 1 attempts 1, got %+v", st)
	}

	// A second run replaces the score and increments attempts on the same row.
	if err := s.UpsertTestStat(userID, testID, 2); err != nil {
		t.Fatalf("UpsertTestStat: %v", err)
	}
	st, _ = s.GetTestStat(userID, testID)
	if st.LastScore != 2 || st.Attempts != 2 {
		t.Fatalf("expected score 2 attempts 2, got %+v", st)
	}

	all, err := s.ListTestStats(testID)
	if err != nil {
		t.Fatalf("ListTestStats: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single stat row, got %d", len(all))
	}
}

func TestLectureAndLabCRUD(t *testing.T) {
	s := newTestStore(t)

	fileID, err := s.CreateFile(model.File{Type: model.FileTypeLecture, RemoteID: "remote-1"})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	lectureID, err := s.CreateLecture("Intro", fileID)
	if err != nil {
		t.Fatalf("CreateLecture: %v", err)
	}
	if err := s.RenameLecture(lectureID, "Introduction"); err != nil {
		t.Fatalf("RenameLecture: %v", err)
	}
	l, err := s.GetLecture(lectureID)
	if err != nil {
		t.Fatalf("GetLecture: %v", err)
	}
	if l.Name != "Introduction" {
		t.Errorf("expected renamed lecture, got %q", l.Name)
	}

	labFile, err := s.CreateFile(model.File{Type: model.FileTypeLab, RemoteID: "remote-2"})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	labID, err := s.CreateLabWork(model.LabWork{FileID: labFile, Name: "Lab 1", Description: "Sockets"})
	if err != nil {
		t.Fatalf("CreateLabWork: %v", err)
	}

	userID := createTestUser(t, s, 9, model.UserRoleStudent)
	subFile, err := s.CreateFile(model.File{Type: model.FileTypeSubmission, RemoteID: "remote-3"})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if _, err := s.CreateSubmission(model.Submission{
		UserID: userID,
		LabID:  labID,
		FileID: subFile,
		Late:   true,
	}); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	subs, err := s.ListSubmissionsByUser(userID)
	if err != nil {
		t.Fatalf("ListSubmissionsByUser: %v", err)
	}
	if len(subs) != 1 || !subs[0].Late || subs[0].Status != model.SubmissionUploaded {
		t.Fatalf("unexpected submission: %+v", subs)
	}
}

func TestExportTests(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, 5, model.UserRoleStudent)
	testID := createTestQuiz(t, s, "Final", 4)
	if err := s.UpsertTestStat(userID, testID, 3); err != nil {
		t.Fatalf("UpsertTestStat: %v", err)
	}

	out, err := s.ExportTests()
	if err != nil {
		t.Fatalf("ExportTests: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 exported test, got %d", len(out))
	}
	exp := out[0]
	if exp.Name != "Final" || exp.Questions != 4 {
		t.Errorf("unexpected export header: %+v", exp)
	}
	if len(exp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(exp.Results))
	}
	if exp.Results[0].Student != "Petrov Ivan" || exp.Results[0].LastScore != 3 || exp.Results[0].Attempts != 1 {
		t.Errorf("unexpected result: %+v", exp.Results[0])
	}
}
