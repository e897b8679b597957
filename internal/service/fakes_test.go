package service

import (
	"errors"
	"sync"

	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same lookup and
// atomic-activation semantics as the sqlx implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ByIDAndEmail(id, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.Email != email {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Activate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.IsActive {
		return repository.ErrUserNotFound
	}
	u.IsActive = true
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Deactivate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsActive = false
	r.users[id] = u
	return nil
}

// sentEmail records one dispatched notification.
type sentEmail struct {
	Kind       string
	To         string
	UIDToken   string
	EmailToken string
}

// fakeMailer records sends; fail makes every dispatch error, to test that
// failures propagate.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

var errDispatch = errors.New("smtp said no")

func (m *fakeMailer) SendActivationEmail(email, uidToken, emailToken, name string) error {
	return m.record("activation", email, uidToken, emailToken)
}

func (m *fakeMailer) SendPasswordResetEmail(email, uidToken, emailToken, name string) error {
	return m.record("password_reset", email, uidToken, emailToken)
}

func (m *fakeMailer) SendContactEmail(fromName, fromEmail, message string) error {
	return m.record("contact", fromEmail, "", "")
}

func (m *fakeMailer) record(kind, to, uidToken, emailToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errDispatch
	}
	m.sent = append(m.sent, sentEmail{Kind: kind, To: to, UIDToken: uidToken, EmailToken: emailToken})
	return nil
}

func (m *fakeMailer) sentTo(email string) []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []sentEmail
	for _, s := range m.sent {
		if s.To == email {
			out = append(out, s)
		}
	}
	return out
}
