package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/notify"
	"github.com/okhomenko/plantkeeper/internal/repository"
)

// fakePlantRepo is an in-memory PlantRepository.
type fakePlantRepo struct {
	mu         sync.Mutex
	plants     map[string]*domain.Plant
	candidates []*domain.ReminderCandidate
	failCreate error
}

func newFakePlantRepo() *fakePlantRepo {
	return &fakePlantRepo{plants: make(map[string]*domain.Plant)}
}

func (r *fakePlantRepo) Create(ctx context.Context, plant *domain.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.plants {
		if existing.UserID == plant.UserID && strings.EqualFold(existing.Name, plant.Name) {
			return repository.ErrDuplicatePlantName
		}
	}
	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now
	copied := *plant
	r.plants[plant.ID] = &copied
	return nil
}

func (r *fakePlantRepo) GetByID(ctx context.Context, userID, plantID string) (*domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plant, ok := r.plants[plantID]
	if !ok || plant.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *plant
	return &copied, nil
}

func (r *fakePlantRepo) List(ctx context.Context, userID string, filter repository.PlantFilter) ([]*domain.Plant, int, error) {
	all, _ := r.ListAll(ctx, userID)
	return all, len(all), nil
}

func (r *fakePlantRepo) ListAll(ctx context.Context, userID string) ([]*domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Plant
	for _, plant := range r.plants {
		if plant.UserID == userID {
			copied := *plant
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePlantRepo) Update(ctx context.Context, plant *domain.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.plants[plant.ID]
	if !ok || existing.UserID != plant.UserID {
		return repository.ErrNotFound
	}
	plant.UpdatedAt = time.Now()
	copied := *plant
	r.plants[plant.ID] = &copied
	return nil
}

func (r *fakePlantRepo) Delete(ctx context.Context, userID, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plant, ok := r.plants[plantID]
	if !ok || plant.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plants, plantID)
	return nil
}

func (r *fakePlantRepo) SetLastWatered(ctx context.Context, userID, plantID string, wateredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plant, ok := r.plants[plantID]
	if !ok || plant.UserID != userID {
		return repository.ErrNotFound
	}
	plant.LastWatered = &wateredAt
	plant.UpdatedAt = time.Now()
	return nil
}

func (r *fakePlantRepo) ListReminderCandidates(ctx context.Context) ([]*domain.ReminderCandidate, error) {
	return r.candidates, nil
}

// fakeCareEventRepo is an in-memory CareEventRepository.
type fakeCareEventRepo struct {
	mu     sync.Mutex
	events []*domain.CareEvent
}

func (r *fakeCareEventRepo) Create(ctx context.Context, event *domain.CareEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeCareEventRepo) ListByPlant(ctx context.Context, plantID string, page, limit int) ([]*domain.CareEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.CareEvent
	for _, event := range r.events {
		if event.PlantID == plantID {
			out = append(out, event)
		}
	}
	return out, len(out), nil
}

// fakeNotifier records sends and fails tokens listed in failTokens.
type fakeNotifier struct {
	mu         sync.Mutex
	sent       []sentPush
	failTokens map[string]bool
}

type sentPush struct {
	token string
	msg   notify.Message
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTokens: make(map[string]bool)}
}

func (n *fakeNotifier) Send(ctx context.Context, token string, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failTokens[token] {
		return errors.New("push provider rejected the token")
	}
	n.sent = append(n.sent, sentPush{token: token, msg: msg})
	return nil
}

func (n *fakeNotifier) ValidateToken(token string) error {
	if !strings.HasPrefix(token, "ExponentPushToken[") {
		return errors.New("invalid token format")
	}
	return nil
}

func (n *fakeNotifier) sentTo() []sentPush {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentPush(nil), n.sent...)
}

// fakeStore is an in-memory ObjectStore.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.failPut != nil {
		return "", f.failPut
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "http://storage.test/" + key, nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "http://storage.test/")
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	return nil
}

func (r *fakeUserRepo) SetPushToken(ctx context.Context, userID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PushToken = token
	if token != nil {
		now := time.Now()
		user.PushTokenUpdatedAt = &now
	} else {
		user.PushTokenUpdatedAt = nil
	}
	return nil
}

func (r *fakeUserRepo) SetNotificationsEnabled(ctx context.Context, userID string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.NotificationsEnabled = enabled
	return nil
}

func (r *fakeUserRepo) ListStalePushTokens(ctx context.Context, olderThan time.Time) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.User
	for _, user := range r.users {
		if user.PushToken != nil && user.PushTokenUpdatedAt != nil && user.PushTokenUpdatedAt.Before(olderThan) {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}
