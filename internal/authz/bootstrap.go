package authz

import (
	"fmt"

	"github.com/luxdecor-shop/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleService,
			Policies: []Policy{
				{Object: "/api/products/reduce-stock", Action: "PUT"},
				{Object: "/api/products/restore-stock", Action: "PUT"},
			},
		},
		{
			// 管理员可手工修正库存
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleService},
			Policies: []Policy{
				{Object: "/api/orders/admin", Action: "GET"},
				{Object: "/api/orders/admin/:orderId/status", Action: "PUT"},
				{Object: "/api/orders/stats", Action: "GET"},
				{Object: "/api/orders/revenue-chart", Action: "GET"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("create builtin role failed: %w", err)
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
