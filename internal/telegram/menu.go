package telegram

import (
	"context"

	"github.com/okunev/studybot/internal/flow"
	"github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
)

// sendMenu shows the role-dependent main menu. Guests can only ask for
// access; students see the course material; instructors additionally get the
// management entries.
func (b *Bot) sendMenu(ctx context.Context, key session.Key, user model.User) error {
	var kb flow.Keyboard

	switch {
	case user.ID == 0:
		kb = flow.Keyboard{
			flow.Row(flow.Button{Label: i18n.T(ctx, "BtnRegister"), Data: "register"}),
		}
	case user.Role.CanPublish():
		kb = flow.Keyboard{
			flow.Row(
				flow.Button{Label: i18n.T(ctx, "BtnAddLecture"), Data: "lecture_add"},
				flow.Button{Label: i18n.T(ctx, "BtnManageLectures"), Data: "lectures_browse"},
			),
			flow.Row(
				flow.Button{Label: i18n.T(ctx, "BtnAddLab"), Data: "lab_add"},
				flow.Button{Label: i18n.T(ctx, "BtnManageLabs"), Data: "labs_browse"},
			),
			flow.Row(
				flow.Button{Label: i18n.T(ctx, "BtnCreateTest"), Data: "test_create"},
				flow.Button{Label: i18n.T(ctx, "BtnManageTests"), Data: "tests_browse"},
			),
			flow.Row(
				flow.Button{Label: i18n.T(ctx, "BtnManageUsers"), Data: "users_browse"},
				flow.Button{Label: i18n.T(ctx, "BtnManageRequests"), Data: "requests_browse"},
			),
			flow.Row(flow.Button{Label: i18n.T(ctx, "BtnTakeTest"), Data: "quiz_list"}),
		}
	default:
		kb = flow.Keyboard{
			flow.Row(flow.Button{Label: i18n.T(ctx, "BtnLectures"), Data: "lectures_list"}),
			flow.Row(flow.Button{Label: i18n.T(ctx, "BtnLabs"), Data: "labs_list"}),
			flow.Row(flow.Button{Label: i18n.T(ctx, "BtnTakeTest"), Data: "quiz_list"}),
		}
	}

	_, err := b.ShowPrompt(ctx, key, i18n.T(ctx, "MenuTitle"), kb)
	return err
}
