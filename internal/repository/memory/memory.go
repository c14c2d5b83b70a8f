// Package memory хранилище в памяти для тестов и пробных запусков.
// Транзакции сериализуются одним мьютексом и откатываются восстановлением снимка.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
)

type lessonKey struct {
	slotID string
	weekOf time.Time
}

type data struct {
	users         map[int64]*model.User
	balances      map[int64]*model.BalanceAccount
	lessons       map[int64]*model.ConfirmedLesson
	lessonSlots   map[lessonKey]int64
	requests      map[int64]*model.AvailabilityRequest
	nextLessonID  int64
	nextRequestID int64
}

func newData() *data {
	return &data{
		users:       make(map[int64]*model.User),
		balances:    make(map[int64]*model.BalanceAccount),
		lessons:     make(map[int64]*model.ConfirmedLesson),
		lessonSlots: make(map[lessonKey]int64),
		requests:    make(map[int64]*model.AvailabilityRequest),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		u := *v
		u.Instruments = slices.Clone(v.Instruments)
		c.users[k] = &u
	}
	for k, v := range d.balances {
		b := *v
		c.balances[k] = &b
	}
	for k, v := range d.lessons {
		l := *v
		c.lessons[k] = &l
	}
	for k, v := range d.lessonSlots {
		c.lessonSlots[k] = v
	}
	for k, v := range d.requests {
		r := *v
		r.SelectedSlots = slices.Clone(v.SelectedSlots)
		c.requests[k] = &r
	}
	c.nextLessonID = d.nextLessonID
	c.nextRequestID = d.nextRequestID
	return c
}

type state struct {
	mu sync.Mutex
	d  *data
}

// Store реализует repository.Store в памяти
type Store struct {
	st   *state
	inTx bool
	now  func() time.Time
}

// New создаёт пустое хранилище
func New() *Store {
	return &Store{st: &state{d: newData()}, now: time.Now}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.st.mu.Lock()
	return s.st.mu.Unlock
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }
func (s *Store) Balances() repository.BalanceRepository { return &balanceRepo{s: s} }
func (s *Store) Lessons() repository.LessonRepository { return &lessonRepo{s: s} }
func (s *Store) Requests() repository.RequestRepository { return &requestRepo{s: s} }

// WithTx выполняет fn под общим мьютексом. При ошибке данные откатываются.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	snapshot := s.st.d.clone()
	tx := &Store{st: s.st, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		s.st.d = snapshot
		return err
	}
	return nil
}

// ===== users =====

type userRepo struct{ s *Store }

func (r *userRepo) Save(_ context.Context, user *model.User) error {
	defer r.s.lock()()
	now := r.s.now()
	u := *user
	u.Instruments = slices.Clone(user.Instruments)
	if existing, ok := r.s.st.d.users[user.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.s.st.d.users[user.ID] = &u
	user.CreatedAt, user.UpdatedAt = u.CreatedAt, u.UpdatedAt
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	defer r.s.lock()()
	u, ok := r.s.st.d.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	c.Instruments = slices.Clone(u.Instruments)
	return &c, nil
}

func (r *userRepo) List(_ context.Context) ([]*model.User, error) {
	defer r.s.lock()()
	users := make([]*model.User, 0, len(r.s.st.d.users))
	for _, u := range r.s.st.d.users {
		c := *u
		c.Instruments = slices.Clone(u.Instruments)
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].FullName != users[j].FullName {
			return users[i].FullName < users[j].FullName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// ===== balances =====

type balanceRepo struct{ s *Store }

func (r *balanceRepo) Get(_ context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	defer r.s.lock()()
	return r.getLocked(studentID, defaultPrice), nil
}

func (r *balanceRepo) GetForUpdate(ctx context.Context, studentID, defaultPrice int64) (*model.BalanceAccount, error) {
	return r.Get(ctx, studentID, defaultPrice)
}

func (r *balanceRepo) getLocked(studentID, defaultPrice int64) *model.BalanceAccount {
	acc, ok := r.s.st.d.balances[studentID]
	if !ok {
		acc = model.NewBalanceAccount(studentID, defaultPrice)
		acc.CreatedAt = r.s.now()
		acc.UpdatedAt = acc.CreatedAt
		r.s.st.d.balances[studentID] = acc
	}
	c := *acc
	return &c
}

func (r *balanceRepo) Save(_ context.Context, account *model.BalanceAccount) error {
	defer r.s.lock()()
	c := *account
	if existing, ok := r.s.st.d.balances[account.StudentID]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = r.s.now()
	}
	c.UpdatedAt = r.s.now()
	r.s.st.d.balances[account.StudentID] = &c
	account.UpdatedAt = c.UpdatedAt
	return nil
}

// ===== lessons =====

type lessonRepo struct{ s *Store }

func (r *lessonRepo) sorted(filter func(*model.ConfirmedLesson) bool) []*model.ConfirmedLesson {
	lessons := make([]*model.ConfirmedLesson, 0, len(r.s.st.d.lessons))
	for _, l := range r.s.st.d.lessons {
		if filter(l) {
			c := *l
			lessons = append(lessons, &c)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	return lessons
}

func (r *lessonRepo) ListAll(_ context.Context) ([]*model.ConfirmedLesson, error) {
	defer r.s.lock()()
	return r.sorted(func(*model.ConfirmedLesson) bool { return true }), nil
}

func (r *lessonRepo) ListForStudent(_ context.Context, studentID int64) ([]*model.ConfirmedLesson, error) {
	defer r.s.lock()()
	return r.sorted(func(l *model.ConfirmedLesson) bool { return l.StudentID == studentID }), nil
}

func (r *lessonRepo) IsSlotTaken(_ context.Context, slotID string, weekOf time.Time) (bool, error) {
	defer r.s.lock()()
	_, ok := r.s.st.d.lessonSlots[lessonKey{slotID, repository.NormalizeWeekOf(weekOf)}]
	return ok, nil
}

func (r *lessonRepo) Create(_ context.Context, lesson *model.ConfirmedLesson) error {
	defer r.s.lock()()
	d := r.s.st.d
	key := lessonKey{lesson.SlotID, repository.NormalizeWeekOf(lesson.WeekOf)}
	if _, ok := d.lessonSlots[key]; ok {
		return repository.ErrSlotTaken
	}

	d.nextLessonID++
	lesson.ID = d.nextLessonID
	lesson.WeekOf = key.weekOf
	lesson.CreatedAt = r.s.now()

	c := *lesson
	d.lessons[c.ID] = &c
	d.lessonSlots[key] = c.ID
	return nil
}

func (r *lessonRepo) DeleteBySlot(_ context.Context, studentID int64, slotID string) (*model.ConfirmedLesson, error) {
	defer r.s.lock()()
	d := r.s.st.d
	var found *model.ConfirmedLesson
	for _, l := range d.lessons {
		if l.StudentID != studentID || l.SlotID != slotID {
			continue
		}
		// самое свежее занятие с этим slot_id
		if found == nil || l.WeekOf.After(found.WeekOf) {
			found = l
		}
	}
	if found == nil {
		return nil, nil
	}
	delete(d.lessons, found.ID)
	delete(d.lessonSlots, lessonKey{found.SlotID, found.WeekOf})
	c := *found
	return &c, nil
}

func (r *lessonRepo) MarkReminderSent(_ context.Context, lessonID int64) error {
	defer r.s.lock()()
	l, ok := r.s.st.d.lessons[lessonID]
	if !ok {
		return repository.ErrNotFound
	}
	l.ReminderSent = true
	return nil
}

// ===== requests =====

type requestRepo struct{ s *Store }

func copyRequest(r *model.AvailabilityRequest) *model.AvailabilityRequest {
	c := *r
	c.SelectedSlots = slices.Clone(r.SelectedSlots)
	return &c
}

func (r *requestRepo) Get(_ context.Context, studentID int64) (*model.AvailabilityRequest, error) {
	defer r.s.lock()()
	req, ok := r.s.st.d.requests[studentID]
	if !ok {
		return nil, nil
	}
	return copyRequest(req), nil
}

func (r *requestRepo) ListAll(_ context.Context) ([]*model.AvailabilityRequest, error) {
	defer r.s.lock()()
	result := make([]*model.AvailabilityRequest, 0, len(r.s.st.d.requests))
	for _, req := range r.s.st.d.requests {
		result = append(result, copyRequest(req))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *requestRepo) Upsert(_ context.Context, studentID int64, slotIDs []string, weekTag int) (*model.AvailabilityRequest, error) {
	defer r.s.lock()()
	d := r.s.st.d
	now := r.s.now()
	req, ok := d.requests[studentID]
	if !ok {
		d.nextRequestID++
		req = &model.AvailabilityRequest{ID: d.nextRequestID, StudentID: studentID, CreatedAt: now}
		d.requests[studentID] = req
	}
	req.SelectedSlots = model.NormalizeSlots(slotIDs)
	req.WeekTag = weekTag
	req.UpdatedAt = now
	return copyRequest(req), nil
}

func (r *requestRepo) RemoveSlotFromAll(_ context.Context, slotID string) (int, error) {
	defer r.s.lock()()
	changed := 0
	for _, req := range r.s.st.d.requests {
		if idx := slices.Index(req.SelectedSlots, slotID); idx >= 0 {
			req.SelectedSlots = slices.Delete(req.SelectedSlots, idx, idx+1)
			req.UpdatedAt = r.s.now()
			changed++
		}
	}
	return changed, nil
}

func (r *requestRepo) Delete(_ context.Context, studentID int64) error {
	defer r.s.lock()()
	delete(r.s.st.d.requests, studentID)
	return nil
}

func (r *requestRepo) DeleteAll(_ context.Context) (int, error) {
	defer r.s.lock()()
	n := len(r.s.st.d.requests)
	r.s.st.d.requests = make(map[int64]*model.AvailabilityRequest)
	return n, nil
}
