package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/memory"
	"github.com/UrikezZ/52HZSchoolBot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testToken        = "secret"
	teacherID  int64 = 100
	studentID  int64 = 1
	otherPupil int64 = 2
)

var msk = time.FixedZone("MSK", 3*60*60)

type testServer struct {
	router   http.Handler
	requests *service.RequestService
	balances *service.BalanceService
}

func newTestServer(t *testing.T, actingTeacher int64) *testServer {
	t.Helper()

	store := memory.New()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, msk)
	clock := func() time.Time { return now }
	settings := service.Settings{
		DefaultLessonPrice: model.DefaultLessonPrice,
		SchoolAddress:      "Москва",
		Location:           msk,
		RetentionWeeks:     1,
	}
	auth := service.NewTeacherAllowList([]int64{teacherID})
	logger := zap.NewNop()

	users := service.NewUserService(store, auth, logger)
	requests := service.NewRequestService(store, users, auth, nil, settings, clock, logger)
	lessons := service.NewLessonService(store, settings, clock, logger)
	balances := service.NewBalanceService(store, auth, nil, settings, clock, logger)
	confirmations := service.NewConfirmationService(store, users, auth, nil, settings, clock, logger)

	_, err := users.SaveProfile(context.Background(), studentID, service.ProfileInput{FullName: "Анна Смирнова", Instruments: []string{"Вокал"}})
	require.NoError(t, err)

	h := NewHandler(Deps{
		Users:         users,
		Requests:      requests,
		Lessons:       lessons,
		Balances:      balances,
		Confirmations: confirmations,
		Clock:         clock,
		Location:      msk,
		TeacherID:     actingTeacher,
		Token:         testToken,
		Logger:        logger,
	})
	return &testServer{
		router:   NewRouter(h, nil),
		requests: requests,
		balances: balances,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) request(t *testing.T, student int64, slotIDs ...string) {
	t.Helper()
	_, err := s.requests.Upsert(context.Background(), student, slotIDs)
	require.NoError(t, err)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, teacherID)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t, teacherID)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong token", header: "Bearer nope"},
		{name: "wrong scheme", header: "Basic " + testToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestListSlots_MarksTaken(t *testing.T) {
	s := newTestServer(t, teacherID)

	// GIVEN слот day0_1300 подтверждён
	s.request(t, studentID, "day0_1300")
	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day0_1300"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN запрашивается сетка
	rec = s.do(t, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[[]SlotDTO](t, rec)

	// THEN 45 слотов, занят ровно один
	require.Len(t, slots, 45)
	assert.Equal(t, "day0_1300", slots[0].ID)
	assert.Equal(t, "Ср 21.10.2026 13:00", slots[0].Label)
	assert.True(t, slots[0].Taken)
	assert.Equal(t, studentID, slots[0].StudentID)
	for _, slot := range slots[1:] {
		assert.False(t, slot.Taken, slot.ID)
	}
}

func TestConfirmLessons_DebitsBalanceAndPurgesRequests(t *testing.T) {
	s := newTestServer(t, teacherID)
	ctx := context.Background()

	// GIVEN два ученика хотят один и тот же слот, у первого 2 предоплаченных урока
	_, err := s.requests.Upsert(ctx, studentID, []string{"day0_1300", "day1_1400"})
	require.NoError(t, err)
	_, err = s.requests.Upsert(ctx, otherPupil, []string{"day0_1300"})
	require.NoError(t, err)
	_, err = s.balances.CreditLessons(ctx, teacherID, studentID, 2)
	require.NoError(t, err)

	// WHEN подтверждён day0_1300 и несуществующий слот
	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day0_1300","day9_1300"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ConfirmResponse](t, rec)

	// THEN один урок списан, слот вне заявки пропущен
	require.Len(t, resp.Confirmed, 1)
	assert.Equal(t, "day0_1300", resp.Confirmed[0].SlotID)
	assert.Equal(t, []string{"day9_1300"}, resp.Skipped)
	assert.Equal(t, 1, resp.LessonsSpent)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, 1, resp.Balance.LessonsLeft)

	// AND слот удалён из всех заявок
	rec = s.do(t, http.MethodGet, "/api/requests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	requests := decode[[]RequestDTO](t, rec)
	for _, req := range requests {
		assert.NotContains(t, req.SlotIDs, "day0_1300")
	}
}

func TestConfirmLessons_Conflict(t *testing.T) {
	s := newTestServer(t, teacherID)
	s.request(t, studentID, "day2_1500")
	s.request(t, otherPupil, "day2_1500", "day2_1600")

	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day2_1500"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN второй ученик пытается занять тот же слот
	rec = s.do(t, http.MethodPost, "/api/students/2/lessons/confirm", `{"slot_ids":["day2_1500"]}`)

	// THEN ничего не подтверждено
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ConfirmResponse](t, rec)
	assert.Empty(t, resp.Confirmed)
	assert.Equal(t, []string{"day2_1500"}, resp.Skipped)
}

func TestConfirmLessons_BadInput(t *testing.T) {
	s := newTestServer(t, teacherID)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "empty slots", path: "/api/students/1/lessons/confirm", body: `{"slot_ids":[]}`},
		{name: "broken json", path: "/api/students/1/lessons/confirm", body: `{`},
		{name: "bad id", path: "/api/students/abc/lessons/confirm", body: `{"slot_ids":["day0_1300"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCancelLesson(t *testing.T) {
	s := newTestServer(t, teacherID)
	s.request(t, studentID, "day3_1600")

	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day3_1600"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/students/1/lessons/day3_1600", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lesson := decode[LessonDTO](t, rec)
	assert.Equal(t, "Сб 24.10.2026 16:00", lesson.Label)

	// повторная отмена
	rec = s.do(t, http.MethodDelete, "/api/students/1/lessons/day3_1600", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// оплата не возвращается
	rec = s.do(t, http.MethodGet, "/api/students/1/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-1800), decode[BalanceDTO](t, rec).Balance)
}

func TestBalanceCredits(t *testing.T) {
	s := newTestServer(t, teacherID)

	rec := s.do(t, http.MethodPost, "/api/students/1/balance/lessons", `{"count":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[BalanceDTO](t, rec).LessonsLeft)

	rec = s.do(t, http.MethodPost, "/api/students/1/balance/deposit", `{"amount":5000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5000), decode[BalanceDTO](t, rec).Balance)

	rec = s.do(t, http.MethodPost, "/api/students/1/balance/deposit", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWrites_RequireTeacher(t *testing.T) {
	// токен верный, но действующий id не преподаватель
	s := newTestServer(t, 777)

	rec := s.do(t, http.MethodPost, "/api/students/1/balance/lessons", `{"count":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConfirmLessons_OnlyRequestedSlots(t *testing.T) {
	s := newTestServer(t, teacherID)

	// GIVEN в заявке только day1_1300
	s.request(t, studentID, "day1_1300")

	// WHEN подтверждаются слот из заявки и слот, которого ученик не выбирал
	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day4_2000","day1_1300"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ConfirmResponse](t, rec)

	// THEN записан и оплачен только выбранный учеником слот
	require.Len(t, resp.Confirmed, 1)
	assert.Equal(t, "day1_1300", resp.Confirmed[0].SlotID)
	assert.Equal(t, []string{"day4_2000"}, resp.Skipped)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, int64(-1800), resp.Balance.Balance)

	rec = s.do(t, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, slot := range decode[[]SlotDTO](t, rec) {
		if slot.ID == "day4_2000" {
			assert.False(t, slot.Taken)
		}
	}
}

func TestConfirmLessons_WithoutRequest(t *testing.T) {
	s := newTestServer(t, teacherID)

	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day0_1300"]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ConfirmResponse](t, rec)
	assert.Empty(t, resp.Confirmed)
	assert.Equal(t, []string{"day0_1300"}, resp.Skipped)
	assert.Nil(t, resp.Balance)

	// баланс не тронут
	rec = s.do(t, http.MethodGet, "/api/students/1/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decode[BalanceDTO](t, rec).Balance)
}

func TestConfirmLessons_RequiresTeacher(t *testing.T) {
	s := newTestServer(t, 777)
	s.request(t, studentID, "day0_1300")

	rec := s.do(t, http.MethodPost, "/api/students/1/lessons/confirm", `{"slot_ids":["day0_1300"]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
