package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Deps зависимости API
type Deps struct {
	Users         *service.UserService
	Requests      *service.RequestService
	Lessons       *service.LessonService
	Balances      *service.BalanceService
	Confirmations *service.ConfirmationService
	Clock         service.Clock
	Location      *time.Location

	// TeacherID от чьего имени выполняются изменения
	TeacherID int64
	Token     string
	Logger    *zap.Logger
}

// Handler обработчики HTTP API
type Handler struct {
	users         *service.UserService
	requests      *service.RequestService
	lessons       *service.LessonService
	balances      *service.BalanceService
	confirmations *service.ConfirmationService
	clock         service.Clock
	location      *time.Location
	teacherID     int64
	token         string
	logger        *zap.Logger
}

func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:         d.Users,
		requests:      d.Requests,
		lessons:       d.Lessons,
		balances:      d.Balances,
		confirmations: d.Confirmations,
		clock:         clock,
		location:      loc,
		teacherID:     d.TeacherID,
		token:         d.Token,
		logger:        logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSlots сетка окна записи с отметкой занятых слотов
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	taken, err := h.lessons.TakenSlots(r.Context())
	if err != nil {
		h.serviceError(w, "Failed to load taken slots", err)
		return
	}

	slots := schedule.AllSlots(h.clock().In(h.location))
	dtos := make([]SlotDTO, 0, len(slots))
	for _, s := range slots {
		studentID, isTaken := taken[s.ID]
		dtos = append(dtos, SlotDTO{
			ID:        s.ID,
			Label:     s.Label,
			StartsAt:  s.StartsAt().Format(time.RFC3339),
			Taken:     isTaken,
			StudentID: studentID,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListLessons все занятия по времени начала
func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessons.ListAll(r.Context())
	if err != nil {
		h.serviceError(w, "Failed to list lessons", err)
		return
	}
	service.SortByStart(lessons, h.location)

	dtos := make([]LessonDTO, 0, len(lessons))
	for _, l := range lessons {
		dtos = append(dtos, toLessonDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRequests все заявки с подписями слотов
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requests, err := h.requests.ListAll(ctx)
	if err != nil {
		h.serviceError(w, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, 0, len(requests))
	for _, req := range requests {
		student, err := h.users.Profile(ctx, req.StudentID)
		if err != nil {
			h.serviceError(w, "Failed to load student", err)
			return
		}
		candidates := h.requests.Candidates(req)
		labels := make([]string, 0, len(candidates))
		for _, c := range candidates {
			labels = append(labels, c.Label)
		}
		dtos = append(dtos, RequestDTO{
			StudentID:   req.StudentID,
			StudentName: student.DisplayName(),
			SlotIDs:     req.SelectedSlots,
			Labels:      labels,
			WeekTag:     req.WeekTag,
			UpdatedAt:   req.UpdatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(w, r)
	if !ok {
		return
	}
	acc, err := h.balances.Get(r.Context(), studentID)
	if err != nil {
		h.serviceError(w, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(acc))
}

func (h *Handler) CreditLessons(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(w, r)
	if !ok {
		return
	}
	var req CreditLessonsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := h.balances.CreditLessons(r.Context(), h.teacherID, studentID, req.Count)
	if err != nil {
		h.serviceError(w, "Failed to credit lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(acc))
}

func (h *Handler) CreditDeposit(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(w, r)
	if !ok {
		return
	}
	var req CreditDepositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	acc, err := h.balances.CreditDeposit(r.Context(), h.teacherID, studentID, req.Amount)
	if err != nil {
		h.serviceError(w, "Failed to credit deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(acc))
}

// ConfirmLessons пакетное подтверждение слотов из заявки ученика, как кнопка «Подтвердить» в боте
func (h *Handler) ConfirmLessons(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(w, r)
	if !ok {
		return
	}
	var req ConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.SlotIDs) == 0 {
		writeError(w, http.StatusBadRequest, "slot_ids is empty", nil)
		return
	}

	result, err := h.confirmations.ConfirmRequested(r.Context(), h.teacherID, studentID, req.SlotIDs)
	if errors.Is(err, service.ErrNothingConfirmed) && result != nil {
		writeJSON(w, http.StatusConflict, toConfirmResponse(result))
		return
	}
	if err != nil {
		h.serviceError(w, "Failed to confirm lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfirmResponse(result))
}

// CancelLesson отменяет занятие без возврата оплаты
func (h *Handler) CancelLesson(w http.ResponseWriter, r *http.Request) {
	studentID, ok := studentIDParam(w, r)
	if !ok {
		return
	}
	slotID := chi.URLParam(r, "slotID")

	lesson, err := h.confirmations.Cancel(r.Context(), h.teacherID, studentID, slotID)
	if err != nil {
		h.serviceError(w, "Failed to cancel lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, toLessonDTO(lesson))
}

func toConfirmResponse(result *service.BatchResult) ConfirmResponse {
	resp := ConfirmResponse{
		Confirmed:    make([]LessonDTO, 0, len(result.Confirmed)),
		Skipped:      make([]string, 0, len(result.Skipped)),
		LessonsSpent: result.LessonsSpent,
		DepositSpent: result.DepositSpent,
		DebtAdded:    result.DebtAdded,
		Balance:      toBalanceDTO(result.After),
	}
	for _, l := range result.Confirmed {
		resp.Confirmed = append(resp.Confirmed, toLessonDTO(l))
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, s.SlotID)
	}
	return resp
}

func studentIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid student id", err)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

// serviceError переводит ошибки сервисов в HTTP статусы
func (h *Handler) serviceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, service.ErrSlotTaken):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
