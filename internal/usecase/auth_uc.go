package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// AuthUC issues the bearer tokens the HTTP layer checks role claims on.
type AuthUC struct {
	Users    domain.UserRepo
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

type authClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login checks credentials and returns a signed token. Wrong email and wrong
// password produce the same error so the endpoint does not leak which
// accounts exist.
func (uc *AuthUC) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.Invalid("credentials", "email atau password salah")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.Invalid("credentials", "email atau password salah")
	}

	now := uc.now()
	ttl := uc.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	claims := authClaims{
		Name: u.Name,
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.Secret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Register creates a customer account. Staff roles are provisioned by an
// admin, never through this endpoint.
func (uc *AuthUC) Register(ctx context.Context, name, email, phone, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, domain.Invalid("name", "wajib diisi")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "tidak valid")
	}
	if len(password) < 8 {
		return nil, domain.Invalid("password", "minimal 8 karakter")
	}
	if _, err := uc.Users.FindByEmail(ctx, email); err == nil {
		return nil, domain.Invalid("email", "sudah terdaftar")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(phone),
		Role:         domain.RoleCustomer,
		PasswordHash: string(hash),
	}
	if err := uc.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *AuthUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
