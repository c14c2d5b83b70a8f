package callbacks

import (
	"context"
	"strings"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/callbacktypes"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/student"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/teacher"
	"github.com/UrikezZ/52HZSchoolBot/internal/controller/keyboard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(deps *callbacktypes.Handler) *Handler {
	return &Handler{Handler: deps}
}

// HandleCallbackQuery точка входа для всех нажатий на inline кнопки
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h.Handler)
}

// ========================
// Main Callback Router
// ========================

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	// ===== Common Navigation =====
	case data == keyboard.MainMenu:
		common.WithContext(ctx, b, callback, h, common.HandleMainMenu)
	case data == keyboard.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Student: booking grid =====
	case data == keyboard.BookDays:
		student.HandleBookDays(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.BookDay):
		student.HandleBookDay(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.BookToggle):
		student.HandleBookToggle(ctx, b, callback, h)
	case data == keyboard.BookShow:
		student.HandleBookShow(ctx, b, callback, h)
	case data == keyboard.BookSubmit:
		student.HandleBookSubmit(ctx, b, callback, h)
	case data == keyboard.BookClear:
		student.HandleBookClear(ctx, b, callback, h)

	// ===== Student: own data =====
	case data == keyboard.MyLessons:
		student.HandleMyLessons(ctx, b, callback, h)
	case data == keyboard.MyBalance:
		student.HandleMyBalance(ctx, b, callback, h)
	case data == keyboard.EditProfile:
		student.HandleEditProfile(ctx, b, callback, h)

	// ===== Teacher: review =====
	case strings.HasPrefix(data, keyboard.ReviewToggle):
		teacher.HandleReviewToggle(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.ReviewConfirm):
		teacher.HandleReviewConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.ReviewReject):
		teacher.HandleReviewReject(ctx, b, callback, h)
	case data == keyboard.Requests:
		teacher.HandleRequests(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.OpenRequest):
		teacher.HandleOpenRequest(ctx, b, callback, h)
	case data == keyboard.ClearRequests:
		teacher.HandleClearRequests(ctx, b, callback, h)
	case data == keyboard.ClearRequestsConfirm:
		teacher.HandleClearRequestsConfirm(ctx, b, callback, h)
	case data == keyboard.WeekImage:
		teacher.HandleWeekImage(ctx, b, callback, h)

	// ===== Teacher: students, balance, lessons =====
	case data == keyboard.Students:
		teacher.HandleStudents(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.StudentCard):
		teacher.HandleStudentCard(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.AddLessons):
		teacher.HandleAddLessons(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.AddDeposit):
		teacher.HandleAddDeposit(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.SetPrice):
		teacher.HandleSetPrice(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.SetNotes):
		teacher.HandleSetNotes(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.ChargeLesson):
		teacher.HandleChargeLesson(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.Stats):
		teacher.HandleStats(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.StudentLessons):
		teacher.HandleStudentLessons(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.CancelLesson):
		teacher.HandleCancelLesson(ctx, b, callback, h)
	case strings.HasPrefix(data, keyboard.ManualLesson):
		teacher.HandleManualLesson(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "")
	}
}
