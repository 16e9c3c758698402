package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// TokenVerifier maps a bearer token to a user id. Credential issuance and
// real JWT validation live with the auth collaborator, behind this seam.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// StaticVerifier verifies against a fixed token -> user table, parsed from
// the AUTH_TOKENS env value ("token1:user1,token2:user2").
type StaticVerifier struct {
	tokens map[string]string
}

func NewStaticVerifier(spec string) *StaticVerifier {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, ":")
		if !ok || token == "" || user == "" {
			continue
		}
		tokens[token] = user
	}
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	userID, ok := v.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

type ctxKey int

const userIDKey ctxKey = 0

// BearerAuth extracts and verifies the Authorization bearer token, placing
// the resolved user id on the request context.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			userID, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
