package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceRoleWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/api/orders/:orderId", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("auditor", "/api/orders/OD123", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceRole("AUDITOR", "/api/orders/OD123", "PUT")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	allow, err = svc.EnforceRole("", "/api/orders/OD123", "GET")
	if err != nil || allow {
		t.Fatalf("empty role must be denied, allow=%v err=%v", allow, err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/orders/admin/:orderId/status", want: "/api/orders/admin/:orderId/status"},
		{in: "api/orders/stats", want: "/api/orders/stats"},
		{in: "/api/orders/admin/", want: "/api/orders/admin"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole(" admin ")
	if err != nil || got != "role:ADMIN" {
		t.Fatalf("want role:ADMIN, got %q err=%v", got, err)
	}
	got, err = NormalizeRole("role:service")
	if err != nil || got != "role:SERVICE" {
		t.Fatalf("want role:SERVICE, got %q err=%v", got, err)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("empty role should fail")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap should be repeatable: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0] != "role:ADMIN" || roles[1] != "role:SERVICE" {
		t.Fatalf("unexpected builtin roles: %v", roles)
	}

	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{"ADMIN", "/api/orders/admin", "GET", true},
		{"ADMIN", "/api/orders/admin/:orderId/status", "PUT", true},
		{"ADMIN", "/api/orders/admin/OD42/status", "PUT", true},
		{"ADMIN", "/api/orders/revenue-chart", "GET", true},
		{"ADMIN", "/api/products/reduce-stock", "PUT", true},
		{"SERVICE", "/api/products/restore-stock", "PUT", true},
		{"SERVICE", "/api/orders/stats", "GET", false},
		{"USER", "/api/orders/admin", "GET", false},
		{"USER", "/api/products/reduce-stock", "PUT", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.act, tc.obj, err)
		}
		if allow != tc.allow {
			t.Fatalf("%s %s %s want allow=%v", tc.role, tc.act, tc.obj, tc.allow)
		}
	}

	policies, err := svc.GetRolePolicies("SERVICE")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 2 || policies[0].Object != "/api/products/reduce-stock" {
		t.Fatalf("unexpected service policies: %+v", policies)
	}
}
