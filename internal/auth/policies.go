package auth

import (
	"fmt"
	"strings"

	"dahabiya-site/internal/logger"

	"github.com/casbin/casbin/v2"
)

// Role names.
const (
	RoleAnonymous = "anonymous"
	RoleAdmin     = "admin"
)

const (
	readMethods  = "GET|HEAD"
	adminMethods = "GET|HEAD|POST|PUT|DELETE"
)

// DefaultPolicies are the rules every installation starts with.
var DefaultPolicies = [][]string{
	// Public site.
	{RoleAnonymous, "/", readMethods},
	{RoleAnonymous, "/dahabiyat", readMethods},
	{RoleAnonymous, "/dahabiyat/:slug", readMethods},
	{RoleAnonymous, "/packages", readMethods},
	{RoleAnonymous, "/packages/:slug", readMethods},
	{RoleAnonymous, "/excursions", readMethods},
	{RoleAnonymous, "/destinations", readMethods},
	{RoleAnonymous, "/blog", readMethods},
	{RoleAnonymous, "/blog/:slug", readMethods},
	{RoleAnonymous, "/static/*", readMethods},
	{RoleAnonymous, "/robots.txt", readMethods},
	{RoleAnonymous, "/sitemap.xml", readMethods},
	{RoleAnonymous, "/auth/login", readMethods},
	{RoleAnonymous, "/auth/callback", readMethods},
	{RoleAnonymous, "/auth/logout", "GET|POST"},

	// Public API.
	{RoleAnonymous, "/api/website-content", readMethods},
	{RoleAnonymous, "/api/settings", readMethods},
	{RoleAnonymous, "/api/packages", readMethods},
	{RoleAnonymous, "/api/packages/:slug", readMethods},
	{RoleAnonymous, "/api/dahabiyat", readMethods},
	{RoleAnonymous, "/api/dahabiyat/:slug", readMethods},
	{RoleAnonymous, "/api/destinations", readMethods},
	{RoleAnonymous, "/api/travel-services", readMethods},
	{RoleAnonymous, "/api/navigation", readMethods},
	{RoleAnonymous, "/api/content-updates", readMethods},

	// Admin.
	{RoleAdmin, "/admin", readMethods},
	{RoleAdmin, "/admin/*", adminMethods},
	{RoleAdmin, "/api/website-content", "PUT|DELETE"},
	{RoleAdmin, "/api/admin/*", adminMethods},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start. Each admin email is granted the admin role;
// grants for emails no longer listed are revoked.
func SeedDefaultPolicies(e casbin.IEnforcer, adminEmails []string, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Admins can do everything anonymous users can.
	grant(e, RoleAdmin, RoleAnonymous, log)
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
			grant(e, email, RoleAdmin, log)
		}
	}
	revokeStale(e, admins, log)
	log.Info("Policy seeding complete.")
}

func grant(e casbin.IEnforcer, user, role string, log logger.Logger) {
	if has, _ := e.HasRoleForUser(user, role); has {
		return
	}
	if _, err := e.AddRoleForUser(user, role); err != nil {
		log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", user, role))
	}
}

func revokeStale(e casbin.IEnforcer, admins map[string]bool, log logger.Logger) {
	users, err := e.GetUsersForRole(RoleAdmin)
	if err != nil {
		log.Error(err, "Failed to list admin grants")
		return
	}
	for _, user := range users {
		if admins[user] {
			continue
		}
		if _, err := e.DeleteRoleForUser(user, RoleAdmin); err != nil {
			log.Error(err, fmt.Sprintf("Failed to revoke role '%s' -> '%s'", user, RoleAdmin))
			continue
		}
		log.Warn(fmt.Sprintf("Revoked admin role from %s", user))
	}
}
