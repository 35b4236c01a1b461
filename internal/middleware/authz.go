package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/session"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the user's permissions using Casbin based on session data and
// stores the user in the request context.
func Authorizer(e *casbin.Enforcer, sm session.Manager, v Renderer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := &UserInfo{Subject: Anonymous}
			if email := sm.GetString(r.Context(), session.KeyUserEmail); email != "" {
				user = &UserInfo{
					Subject: email,
					Email:   email,
					Name:    sm.GetString(r.Context(), session.KeyUserName),
				}
			}
			if roles, err := e.GetImplicitRolesForUser(user.Subject); err == nil {
				user.Roles = roles
			}
			r = r.WithContext(SetUserInfo(r.Context(), user))

			// Signed-in users without a granted role browse as visitors.
			subject := user.Subject
			if len(user.Roles) == 0 {
				subject = Anonymous
			}
			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "authorization check failed")
				deny(w, r, v, log, http.StatusInternalServerError)
				return
			}
			if !allowed {
				if user.IsAnonymous() && !isAPI(r) && r.Method == http.MethodGet {
					http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
					return
				}
				deny(w, r, v, log, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, v Renderer, log logger.Logger, code int) {
	if isAPI(r) {
		WriteJSONError(w, code, http.StatusText(code))
		return
	}
	RenderError(w, r, v, log, code)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
