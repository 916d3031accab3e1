package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

type claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// actorFrom authenticates the request from its Bearer token. An expired
// token maps to ErrAuthExpired so clients redirect to login instead of
// retrying the mutation.
func (s *Server) actorFrom(r *http.Request) (domain.Actor, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return domain.Actor{}, domain.ErrForbidden
	}
	raw := strings.TrimPrefix(h, "Bearer ")

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, domain.ErrAuthExpired
		}
		return domain.Actor{}, domain.ErrForbidden
	}
	return domain.Actor{
		ID:   c.Subject,
		Name: c.Name,
		Role: domain.Role(c.Role),
	}, nil
}

// requireRole authenticates and checks the role predicate, writing the
// error response itself. ok=false means the response is already sent.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, allowed func(domain.Role) bool) (domain.Actor, bool) {
	actor, err := s.actorFrom(r)
	if err != nil {
		writeError(w, err)
		return domain.Actor{}, false
	}
	if !allowed(actor.Role) {
		writeError(w, domain.ErrForbidden)
		return domain.Actor{}, false
	}
	return actor, true
}
