package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
)

// memBookingStore does not re-check overlaps on insert, so tests exercise
// the manager's own admission serialization.
type memBookingStore struct {
	mu       sync.Mutex
	bookings map[uint]models.Booking
	nextID   uint
	countErr error
	// countDelay widens the check-then-insert window.
	countDelay time.Duration
	updateErr  error
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{bookings: make(map[uint]models.Booking)}
}

func (s *memBookingStore) CountOverlapping(_ context.Context, carID uint, pickup, ret time.Time) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	s.mu.Lock()
	var n int64
	for _, b := range s.bookings {
		if b.CarID == carID && b.IsActive() && b.Overlaps(pickup, ret) {
			n++
		}
	}
	s.mu.Unlock()

	if s.countDelay > 0 {
		time.Sleep(s.countDelay)
	}
	return n, nil
}

func (s *memBookingStore) CreateIfAvailable(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Unix(0, 0).Add(time.Duration(s.nextID) * time.Minute)
	stored := *b
	stored.Car = nil
	s.bookings[b.ID] = stored
	return nil
}

func (s *memBookingStore) FindByID(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return &b, nil
}

func (s *memBookingStore) UpdateStatus(_ context.Context, id uint, from, to models.BookingStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return models.ErrStatusConflict
	}
	b.Status = to
	s.bookings[id] = b
	return nil
}

func (s *memBookingStore) list(match func(models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memBookingStore) ListByUser(_ context.Context, userID uint) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (s *memBookingStore) ListByOwner(_ context.Context, ownerID uint) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (s *memBookingStore) put(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID > s.nextID {
		s.nextID = b.ID
	}
	s.bookings[b.ID] = b
}

type memCarStore struct {
	cars    []models.Car
	listErr error
}

func (s *memCarStore) FindByID(_ context.Context, id uint) (*models.Car, error) {
	for _, c := range s.cars {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("car %d: %w", id, models.ErrNotFound)
}

func (s *memCarStore) ListAvailableAt(_ context.Context, location string) ([]models.Car, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Car
	for _, c := range s.cars {
		if c.Location == location && c.IsAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newMemUserStore(users ...models.User) *memUserStore {
	s := &memUserStore{users: make(map[uint]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = uint(len(s.users) + 1)
	s.users[u.ID] = *u
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memUserStore) UpdateFCMToken(_ context.Context, id uint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.FCMToken = token
	s.users[id] = u
	return nil
}

type memPrefStore struct {
	prefs map[uint]models.NotificationPreference
}

func (s *memPrefStore) Get(_ context.Context, userID uint) (*models.NotificationPreference, error) {
	if p, ok := s.prefs[userID]; ok {
		return &p, nil
	}
	return models.DefaultPreferences(userID), nil
}

func (s *memPrefStore) Save(_ context.Context, p *models.NotificationPreference) error {
	if s.prefs == nil {
		s.prefs = make(map[uint]models.NotificationPreference)
	}
	s.prefs[p.UserID] = *p
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(kind string, b models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, fmt.Sprintf("%s:%d", kind, b.ID))
}

func (n *recordingNotifier) NotifyOwnerNewBooking(_ context.Context, b models.Booking) {
	n.record("owner_new", b)
}

func (n *recordingNotifier) NotifyUserBookingReceived(_ context.Context, b models.Booking) {
	n.record("user_received", b)
}

func (n *recordingNotifier) NotifyOwnerBookingCancelled(_ context.Context, b models.Booking) {
	n.record("owner_cancelled", b)
}

func (n *recordingNotifier) NotifyUserStatusChanged(_ context.Context, b models.Booking) {
	n.record("user_status", b)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}
