package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[strings.ToLower(u.Email)] = &cp
	return nil
}

func testAuthUC(users *fakeUserRepo) *AuthUC {
	return &AuthUC{
		Users:  users,
		Secret: []byte("test-secret"),
		Now:    func() time.Time { return time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC) },
	}
}

func seedUser(t *testing.T, users *fakeUserRepo, role domain.Role, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.New(),
		Email:        "kasir@konveksimax.id",
		Name:         "Kasir Satu",
		Role:         role,
		PasswordHash: string(hash),
	}
	require.NoError(t, users.Save(context.Background(), u))
	return u
}

func TestLoginIssuesRoleClaim(t *testing.T) {
	users := newFakeUserRepo()
	uc := testAuthUC(users)
	u := seedUser(t, users, domain.RoleCashier, "rahasia-kasir")

	token, got, err := uc.Login(context.Background(), "KASIR@konveksimax.id", "rahasia-kasir")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	var c authClaims
	_, err = jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(uc.Now))
	require.NoError(t, err)
	assert.Equal(t, "cashier", c.Role)
	assert.Equal(t, u.ID.String(), c.Subject)
}

func TestLoginWrongCredentialsSameError(t *testing.T) {
	users := newFakeUserRepo()
	uc := testAuthUC(users)
	seedUser(t, users, domain.RoleCashier, "rahasia-kasir")

	_, _, errWrongPass := uc.Login(context.Background(), "kasir@konveksimax.id", "salah")
	_, _, errNoUser := uc.Login(context.Background(), "siapa@konveksimax.id", "salah")

	var ve *domain.ValidationError
	require.ErrorAs(t, errWrongPass, &ve)
	require.ErrorAs(t, errNoUser, &ve)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestRegisterCreatesCustomer(t *testing.T) {
	users := newFakeUserRepo()
	uc := testAuthUC(users)

	u, err := uc.Register(context.Background(), "Budi Santoso", "Budi@Example.com", "0812", "passwordkuat")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.Equal(t, "budi@example.com", u.Email)
	assert.NotEqual(t, "passwordkuat", u.PasswordHash)

	// Registering never grants elevated roles, and duplicates are rejected.
	_, err = uc.Register(context.Background(), "Budi Dua", "budi@example.com", "", "passwordkuat")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}

func TestRegisterValidation(t *testing.T) {
	uc := testAuthUC(newFakeUserRepo())
	cases := []struct {
		name, uname, email, pass, field string
	}{
		{"blank name", " ", "a@b.id", "passwordkuat", "name"},
		{"bad email", "Budi", "bukan-email", "passwordkuat", "email"},
		{"short password", "Budi", "a@b.id", "pendek", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tc.uname, tc.email, "", tc.pass)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}
