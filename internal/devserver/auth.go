package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/kingrea/leads-admin/internal/session"
)

type claimsKey struct{}

func (s *Server) issueToken(user session.User) (string, error) {
	now := s.now()
	claims := session.Claims{
		OrganisationID: user.OrganisationID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.settings.TokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.settings.Secret))
}

func (s *Server) verifyToken(raw string) (*session.Claims, error) {
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := &session.Claims{}
	parsed, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.settings.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

// requireAuth rejects requests without a valid bearer token and stores the
// claims on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		claims, err := s.verifyToken(strings.TrimSpace(raw))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*session.Claims)
	return claims
}
