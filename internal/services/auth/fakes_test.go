// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/models"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"codeberg.org/oliverandrich/teamjoin/internal/services/notify"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memStore implements all four stores in memory.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	invitations map[string]*models.Invitation
	teams       map[string]*models.Team
	tokens      []*models.VerificationToken
	nextID      int64

	failExists error
	failCreate error
	failToken  error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		invitations: map[string]*models.Invitation{},
		teams:       map[string]*models.Team{},
	}
}

func (m *memStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failExists != nil {
		return false, m.failExists
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	user.ID = m.nextID
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memStore) MarkEmailVerified(_ context.Context, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerifiedAt = &at
	return nil
}

func (m *memStore) GetInvitationByToken(_ context.Context, token string) (*models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return inv, nil
}

func (m *memStore) GetTeamBySlug(_ context.Context, slug string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (m *memStore) CreateVerificationToken(_ context.Context, token *models.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failToken != nil {
		return m.failToken
	}
	m.nextID++
	token.ID = m.nextID
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *memStore) GetVerificationToken(_ context.Context, tokenHash string) (*models.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteVerificationToken(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

func (m *memStore) DeleteVerificationTokensFor(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.Identifier != identifier {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memStore) user(email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email]
}

func (m *memStore) addTeam(name, slug string) *models.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &models.Team{ID: m.nextID, Name: name, Slug: slug}
	m.teams[slug] = t
	return t
}

func (m *memStore) addInvitation(team *models.Team, token, email string, expiresAt time.Time) *models.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	inv := &models.Invitation{
		ID:        m.nextID,
		Token:     token,
		TeamID:    team.ID,
		ExpiresAt: expiresAt,
		Team:      models.InvitationTeam{Slug: team.Slug, Name: team.Name},
	}
	if email != "" {
		inv.Email = &email
		inv.SentViaEmail = true
	}
	m.invitations[token] = inv
	return inv
}

type fakeHasher struct{ err error }

func (h fakeHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

type fakeBotCheck struct{ err error }

func (b fakeBotCheck) Verify(context.Context, string) error { return b.err }

type sentVerification struct {
	To, Name, Token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentVerification
	err  error
}

func (f *fakeMailer) SendVerification(_ context.Context, toEmail, name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentVerification{To: toEmail, Name: name, Token: token})
	return nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeRecorder) Record(_ context.Context, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, name)
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
	err    error
}

func (f *fakeNotifier) Alert(_ context.Context, alert notify.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
	return f.err
}

var errBoom = errors.New("boom")

type harness struct {
	svc      *Service
	store    *memStore
	mailer   *fakeMailer
	recorder *fakeRecorder
	notifier *fakeNotifier
}

func newHarness(policy Policy, opts ...func(*Deps)) *harness {
	h := &harness{
		store:    newMemStore(),
		mailer:   &fakeMailer{},
		recorder: &fakeRecorder{},
		notifier: &fakeNotifier{},
	}
	deps := Deps{
		Users:       h.store,
		Invitations: h.store,
		Teams:       h.store,
		Tokens:      h.store,
		Hasher:      fakeHasher{},
		BotCheck:    fakeBotCheck{},
		Mailer:      h.mailer,
		Metrics:     h.recorder,
		Notifier:    h.notifier,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.svc = NewService(deps, policy)
	h.svc.now = func() time.Time { return fixedNow }
	return h
}
