package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	teacherID  int64 = 100
	studentA   int64 = 1
	studentB   int64 = 2
	strangerID int64 = 666
)

var msk = time.FixedZone("MSK", 3*60*60)

// суббота, окно записи 21.10.2026 - 25.10.2026
var saturday = time.Date(2026, 10, 17, 12, 0, 0, 0, msk)

type sentMessage struct {
	chatID int64
	text   string
}

type sentReview struct {
	teacherID  int64
	studentID  int64
	candidates []Candidate
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	reviews  []sentReview
	fail     bool
}

func (n *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("telegram is down")
	}
	n.messages = append(n.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (n *fakeNotifier) NotifyReview(_ context.Context, teacherID, studentID int64, _ string, candidates []Candidate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("telegram is down")
	}
	n.reviews = append(n.reviews, sentReview{teacherID: teacherID, studentID: studentID, candidates: candidates})
	return nil
}

func (n *fakeNotifier) to(chatID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var texts []string
	for _, m := range n.messages {
		if m.chatID == chatID {
			texts = append(texts, m.text)
		}
	}
	return texts
}

func (n *fakeNotifier) anyContains(chatID int64, fragment string) bool {
	for _, text := range n.to(chatID) {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}

type fixture struct {
	store    *memory.Store
	notifier *fakeNotifier
	now      time.Time

	users     *UserService
	balances  *BalanceService
	requests  *RequestService
	lessons   *LessonService
	confirm   *ConfirmationService
	reminders *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.New(),
		notifier: &fakeNotifier{},
		now:      saturday,
	}
	clock := func() time.Time { return f.now }
	settings := Settings{
		DefaultLessonPrice: model.DefaultLessonPrice,
		SchoolAddress:      "4-й Сыромятнический переулок, 3/5с3",
		Location:           msk,
		RetentionWeeks:     1,
	}
	auth := NewTeacherAllowList([]int64{teacherID})
	logger := zap.NewNop()

	f.users = NewUserService(f.store, auth, logger)
	f.balances = NewBalanceService(f.store, auth, f.notifier, settings, clock, logger)
	f.requests = NewRequestService(f.store, f.users, auth, f.notifier, settings, clock, logger)
	f.lessons = NewLessonService(f.store, settings, clock, logger)
	f.confirm = NewConfirmationService(f.store, f.users, auth, f.notifier, settings, clock, logger)
	f.reminders = NewReminderService(f.store, auth, f.notifier, settings, clock, logger)

	ctx := context.Background()
	_, err := f.users.SaveProfile(ctx, studentA, ProfileInput{FullName: "Анна Смирнова", Instruments: []string{"Вокал"}})
	require.NoError(t, err)
	_, err = f.users.SaveProfile(ctx, studentB, ProfileInput{FullName: "Борис Петров", Instruments: []string{"Гитара"}})
	require.NoError(t, err)

	return f
}

func (f *fixture) request(t *testing.T, studentID int64, slotIDs ...string) {
	t.Helper()
	_, err := f.requests.Upsert(context.Background(), studentID, slotIDs)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, studentID int64) *model.BalanceAccount {
	t.Helper()
	acc, err := f.balances.Get(context.Background(), studentID)
	require.NoError(t, err)
	return acc
}
