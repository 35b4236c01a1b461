package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"dahabiya-site/internal/config"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyUserSubject = "user_subject"
	KeyUserEmail   = "user_email"
	KeyUserName    = "user_name"
	KeyLanguage    = "lang"
	KeyOAuthState  = "oauth_state"
	KeyReturnTo    = "return_to"
	KeyFlash       = "flash"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
	RenewToken(ctx context.Context) error
}

// New creates a session manager persisting sessions in the application database.
func New(db *sql.DB, driver string, cfg config.SessionConfig, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db)
	default:
		sm.Store = sqlite3store.New(db)
	}
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	sm.Cookie.Name = "dahabiya_session"
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	sm.Cookie.HttpOnly = true
	return sm
}
