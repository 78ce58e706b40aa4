package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/resplan/resplan-backend/internal/pkg/jwt"
)

type contextKey string

const contextKeyPrincipal = contextKey("principal")

var errCantRetrievePrincipal = errors.New("can't retrieve principal")

func (a *Api) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			a.unauthorizedResponse(w, r, errors.New("no token provided"))
			return
		}

		token = strings.TrimPrefix(token, "Bearer ")

		principal, err := a.jwts.GetPrincipalFromToken(token)
		if err != nil {
			invalidTokenErr := &jwt.InvalidTokenError{}
			switch {
			case errors.As(err, &invalidTokenErr):
				a.unauthorizedResponse(w, r, invalidTokenErr)
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		principalCtx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
		next.ServeHTTP(w, r.WithContext(principalCtx))
	})
}

func principalFrom(r *http.Request) (string, bool) {
	principal, ok := r.Context().Value(contextKeyPrincipal).(string)
	return principal, ok
}
