package statemachine

import (
	"testing"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusFollowsChain(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		want models.OrderStatus
		ok   bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusConfirmed, models.StatusPreparing, true},
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusReady, models.StatusPickedUp, true},
		{models.StatusPickedUp, models.StatusDelivered, true},
		{models.StatusDelivered, "", false},
		{models.StatusCancelled, "", false},
	}
	for _, tc := range tests {
		next, ok := NextStatus(tc.from)
		assert.Equal(t, tc.ok, ok, "from %s", tc.from)
		assert.Equal(t, tc.want, next, "from %s", tc.from)
	}
}

func TestCanAdvanceRolePerEdge(t *testing.T) {
	tests := []struct {
		name     string
		from     models.OrderStatus
		role     models.UserRole
		wantNext models.OrderStatus
		wantCode apperrors.Code
	}{
		{"kitchen_confirms", models.StatusPending, models.RoleKitchen, models.StatusConfirmed, ""},
		{"kitchen_prepares", models.StatusConfirmed, models.RoleKitchen, models.StatusPreparing, ""},
		{"kitchen_readies", models.StatusPreparing, models.RoleKitchen, models.StatusReady, ""},
		{"driver_picks_up", models.StatusReady, models.RoleDriver, models.StatusPickedUp, ""},
		{"driver_delivers", models.StatusPickedUp, models.RoleDriver, models.StatusDelivered, ""},
		{"kitchen_cannot_pick_up", models.StatusReady, models.RoleKitchen, "", apperrors.CodeAuthorization},
		{"driver_cannot_confirm", models.StatusPending, models.RoleDriver, "", apperrors.CodeAuthorization},
		{"customer_cannot_advance", models.StatusPending, models.RoleCustomer, "", apperrors.CodeAuthorization},
		{"delivered_is_terminal", models.StatusDelivered, models.RoleDriver, "", apperrors.CodeInvalidTransition},
		{"cancelled_is_terminal", models.StatusCancelled, models.RoleKitchen, "", apperrors.CodeInvalidTransition},
		{"admin_may_drive_any_edge", models.StatusReady, models.RoleAdmin, models.StatusPickedUp, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := CanAdvance(tc.from, tc.role)
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tc.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNext, next)
		})
	}
}

func TestCanTransitionNamesItsTarget(t *testing.T) {
	tests := []struct {
		name     string
		from     models.OrderStatus
		to       models.OrderStatus
		role     models.UserRole
		wantCode apperrors.Code
	}{
		{"driver_picks_up_ready", models.StatusReady, models.StatusPickedUp, models.RoleDriver, ""},
		{"driver_delivers_picked_up", models.StatusPickedUp, models.StatusDelivered, models.RoleDriver, ""},
		{"pickup_of_pending_conflicts", models.StatusPending, models.StatusPickedUp, models.RoleDriver, apperrors.CodeConflict},
		{"pickup_of_picked_up_conflicts", models.StatusPickedUp, models.StatusPickedUp, models.RoleDriver, apperrors.CodeConflict},
		{"deliver_after_delivered_is_terminal", models.StatusDelivered, models.StatusDelivered, models.RoleDriver, apperrors.CodeInvalidTransition},
		{"kitchen_cannot_pick_up", models.StatusReady, models.StatusPickedUp, models.RoleKitchen, apperrors.CodeAuthorization},
		{"admin_may_drive_the_edge", models.StatusReady, models.StatusPickedUp, models.RoleAdmin, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransition(tc.from, tc.to, tc.role)
			if tc.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tc.wantCode))
			if tc.wantCode == apperrors.CodeConflict {
				var appErr *apperrors.Error
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, string(tc.from), appErr.CurrentStatus)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	require.NoError(t, CanCancel(models.StatusPending))

	err := CanCancel(models.StatusPreparing)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCannotCancel))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "preparing", appErr.CurrentStatus)

	err = CanCancel(models.StatusCancelled)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyCancelled))
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t,
		[]models.OrderStatus{models.StatusConfirmed, models.StatusCancelled},
		ValidTransitionsFrom(models.StatusPending))
	assert.Equal(t,
		[]models.OrderStatus{models.StatusPickedUp},
		ValidTransitionsFrom(models.StatusReady))
	assert.Empty(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCancelled))
}

func TestAllTransitionsCoverChainPlusCancel(t *testing.T) {
	all := AllTransitions()
	require.Len(t, all, 6)
	assert.Equal(t, models.StatusCancelled, all[5].To)
}
