package testutil

import (
	"context"

	"github.com/facturio/facturio/internal/types"
)

const (
	TestTenantID = "tenant_test"
	TestUserID   = "user_test"
)

// SetupContext returns a context carrying the standard test identity.
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, TestTenantID)
	ctx = types.SetUserID(ctx, TestUserID)
	ctx = types.SetRole(ctx, types.RoleAdmin)
	return ctx
}

// SetupContextWith returns a context for an arbitrary tenant and role.
func SetupContextWith(tenantID, userID string, role types.Role) context.Context {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, tenantID)
	ctx = types.SetUserID(ctx, userID)
	ctx = types.SetRole(ctx, role)
	return ctx
}
