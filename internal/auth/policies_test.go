//go:build unit

package auth

import (
	"testing"

	"dahabiya-site/internal/logger"
)

func TestDefaultPolicies(t *testing.T) {
	e, err := NewMemoryEnforcer()
	if err != nil {
		t.Fatalf("NewMemoryEnforcer failed: %v", err)
	}
	SeedDefaultPolicies(e, []string{" Captain@Example.com "}, logger.Nop())
	// Seeding twice must not duplicate rules.
	SeedDefaultPolicies(e, []string{"captain@example.com"}, logger.Nop())

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"anonymous", "/", "GET", true},
		{"anonymous", "/packages/nile-classic", "GET", true},
		{"anonymous", "/api/website-content", "GET", true},
		{"anonymous", "/api/website-content", "PUT", false},
		{"anonymous", "/admin", "GET", false},
		{"anonymous", "/admin/content/homepage", "POST", false},
		{"anonymous", "/api/admin/packages", "POST", false},
		{"captain@example.com", "/admin", "GET", true},
		{"captain@example.com", "/admin/content/homepage", "POST", true},
		{"captain@example.com", "/api/website-content", "PUT", true},
		{"captain@example.com", "/api/admin/dahabiyat/3", "DELETE", true},
		{"captain@example.com", "/blog/hello", "GET", true},
		{"someone@example.com", "/admin", "GET", false},
	}
	for _, tt := range tests {
		got, err := e.Enforce(tt.sub, tt.obj, tt.act)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) failed: %v", tt.sub, tt.obj, tt.act, err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.sub, tt.obj, tt.act, got, tt.want)
		}
	}

	policies, err := e.GetPolicy()
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if n := len(policies); n != len(DefaultPolicies) {
		t.Errorf("expected %d policies after reseeding, got %d", len(DefaultPolicies), n)
	}
}

func TestSeedDefaultPolicies_RevokesRemovedAdmins(t *testing.T) {
	e, err := NewMemoryEnforcer()
	if err != nil {
		t.Fatalf("NewMemoryEnforcer failed: %v", err)
	}
	SeedDefaultPolicies(e, []string{"captain@example.com", "purser@example.com"}, logger.Nop())
	SeedDefaultPolicies(e, []string{"captain@example.com"}, logger.Nop())

	if ok, _ := e.Enforce("purser@example.com", "/admin", "GET"); ok {
		t.Error("purser@example.com kept admin access after removal from the admin list")
	}
	if ok, _ := e.Enforce("captain@example.com", "/admin", "GET"); !ok {
		t.Error("captain@example.com lost admin access")
	}
	if ok, _ := e.HasRoleForUser(RoleAdmin, RoleAnonymous); !ok {
		t.Error("admin role no longer inherits anonymous")
	}
}
