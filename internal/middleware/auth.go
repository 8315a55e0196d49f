package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type contextKey string

const actorKey contextKey = "actorID"

// Claims are the JWT claims staff tokens carry.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthMiddleware requires a Bearer token signed with secret and puts the
// staff member's id on the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.WriteError(w, apperrors.New(apperrors.CodeUnauthenticated, "Authorization header required"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				services.WriteError(w, apperrors.New(apperrors.CodeUnauthenticated, "Invalid authorization header format"))
				return
			}

			userID, err := validateToken(parts[1], secret)
			if err != nil {
				services.WriteError(w, apperrors.Wrap(apperrors.CodeUnauthenticated, "Invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), userID)))
		})
	}
}

func validateToken(tokenString string, secret []byte) (int64, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, errors.New("token carries no user")
	}
	return claims.UserID, nil
}

// IssueToken signs an HS256 token for userID that expires after ttl.
func IssueToken(secret []byte, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ActorFromContext returns the authenticated staff id, or 0 when the
// request did not pass through AuthMiddleware.
func ActorFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey).(int64)
	return id
}
