package middleware

import (
	"net/http"
	"strings"
	"time"

	"dahabiya-site/internal/content"
	"dahabiya-site/internal/i18n"
	"dahabiya-site/internal/session"
	"dahabiya-site/internal/view"
)

// LanguageCookie remembers the chosen language across sessions.
const LanguageCookie = "lang"

// Settings resolves the per-request view settings. It checks for a
// "basic=true" query parameter, which makes pages work without scripts, and
// picks the language from ?lang=, then the session, then the cookie, then
// Accept-Language. An explicit choice is stored in the session and cookie.
// It must run after the Authorizer so the user is known.
func Settings(catalog *i18n.Catalog, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			lang := strings.ToLower(r.URL.Query().Get("lang"))
			if lang != "" && catalog.Supported(lang) {
				sm.Put(ctx, session.KeyLanguage, lang)
				http.SetCookie(w, &http.Cookie{
					Name:     LanguageCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					SameSite: http.SameSiteLaxMode,
				})
			} else {
				lang = resolveLanguage(r, catalog, sm)
			}

			user := GetUserInfo(ctx)
			s := view.Settings{
				BasicMode: r.URL.Query().Get("basic") == "true",
				Lang:      lang,
				RTL:       catalog.Language(lang).RTL,
				IsAdmin:   user.HasRole("admin"),
			}
			if !user.IsAnonymous() {
				s.User = user.Email
				if user.Name != "" {
					s.User = user.Name
				}
			}
			ctx = view.WithSettings(ctx, s)
			ctx = content.WithMemo(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(r *http.Request, catalog *i18n.Catalog, sm session.Manager) string {
	if lang := sm.GetString(r.Context(), session.KeyLanguage); catalog.Supported(lang) {
		return lang
	}
	if c, err := r.Cookie(LanguageCookie); err == nil && catalog.Supported(c.Value) {
		return c.Value
	}
	return catalog.Match(r.Header.Get("Accept-Language"))
}
