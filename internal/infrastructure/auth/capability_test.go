package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsales "github.com/taller/backend/internal/application/sales"
)

func TestRoleCapabilityChecker_AdminBypassesAllChecks(t *testing.T) {
	checker := NewRoleCapabilityChecker()
	ctx := WithRole(context.Background(), RoleAdmin)

	for _, capability := range []string{
		appsales.CapabilityCreateSale,
		appsales.CapabilityEditSale,
		appsales.CapabilityCancelSale,
		appsales.CapabilityRecordPayment,
	} {
		allowed, err := checker.Can(ctx, uuid.New(), capability)
		require.NoError(t, err)
		assert.True(t, allowed, capability)
	}
}

func TestRoleCapabilityChecker_SellerCannotCancel(t *testing.T) {
	checker := NewRoleCapabilityChecker()
	ctx := WithRole(context.Background(), RoleSeller)

	allowed, err := checker.Can(ctx, uuid.New(), appsales.CapabilityCreateSale)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.Can(ctx, uuid.New(), appsales.CapabilityEditSale)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.Can(ctx, uuid.New(), appsales.CapabilityCancelSale)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRoleCapabilityChecker_TechnicianHasNoSaleCapabilities(t *testing.T) {
	checker := NewRoleCapabilityChecker()
	ctx := WithRole(context.Background(), RoleTechnician)

	allowed, err := checker.Can(ctx, uuid.New(), appsales.CapabilityCreateSale)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRoleCapabilityChecker_UnknownRoleDenied(t *testing.T) {
	checker := NewRoleCapabilityChecker()

	allowed, err := checker.Can(context.Background(), uuid.New(), appsales.CapabilityCreateSale)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRoleFromContext_Empty(t *testing.T) {
	assert.Empty(t, RoleFromContext(context.Background()))
}
