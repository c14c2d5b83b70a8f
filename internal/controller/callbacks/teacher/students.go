package teacher

import (
	"context"
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/UrikezZ/52HZSchoolBot/internal/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleStudents список учеников
func HandleStudents(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		students, err := h.UserService.Students(ctx)
		if err != nil {
			hc.Fail("Failed to list students", err)
			return
		}
		hc.Answer("")

		if len(students) == 0 {
			hc.Show("👥 Учеников пока нет.", keyboard.BackToMenu())
			return
		}
		hc.Show(fmt.Sprintf("👥 <b>Ученики (%d)</b>\n\nВыберите ученика:", len(students)), keyboard.StudentList(students))
	})
}

// HandleStudentCard карточка ученика с действиями
func HandleStudentCard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudentID(ctx, b, callback, h, parser(keyboard.StudentCard), func(hc *common.HandlerContext, studentID int64) {
		hc.ClearState()
		hc.Answer("")
		ShowStudentCard(hc, studentID, "")
	})
}

// ShowStudentCard показывает профиль и баланс ученика
func ShowStudentCard(hc *common.HandlerContext, studentID int64, prefix string) {
	text, err := studentCardText(hc, studentID)
	if err != nil {
		hc.Fail("Failed to load student card", err)
		return
	}
	hc.Show(prefix+text, keyboard.StudentActions(studentID))
}

func studentCardText(hc *common.HandlerContext, studentID int64) (string, error) {
	profile, err := hc.Handler.UserService.Profile(hc.Ctx, studentID)
	if err != nil {
		return "", err
	}
	acc, err := hc.Handler.BalanceService.Get(hc.Ctx, studentID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sUser ID: %d\n\n%s",
		formatting.ProfileCard(profile),
		studentID,
		formatting.BalanceCard(profile.DisplayName(), acc),
	), nil
}
