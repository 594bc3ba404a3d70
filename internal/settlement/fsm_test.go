package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    Status
		to      Status
		role    Role
		isOwner bool
		want    Kind
	}{
		{"seller ships pending", StatusPending, StatusShipped, RoleSeller, false, KindUnknown},
		{"admin delivers shipped", StatusShipped, StatusDelivered, RoleAdmin, false, KindUnknown},
		{"owner cancels pending", StatusPending, StatusCancelled, RoleBuyer, true, KindUnknown},
		{"non-owner buyer cancels", StatusPending, StatusCancelled, RoleBuyer, false, KindUnauthorized},
		{"buyer ships", StatusPending, StatusShipped, RoleBuyer, true, KindUnauthorized},
		{"seller releases", StatusPending, StatusReleased, RoleSeller, false, KindUnauthorized},
		{"admin releases delivered", StatusDelivered, StatusReleased, RoleAdmin, false, KindUnknown},
		{"released is terminal", StatusReleased, StatusShipped, RoleAdmin, false, KindConflict},
		{"refunded is terminal", StatusRefunded, StatusRefunded, RoleAdmin, false, KindConflict},
		{"cancelled is terminal", StatusCancelled, StatusShipped, RoleAdmin, false, KindConflict},
		{"backwards transition", StatusDelivered, StatusShipped, RoleAdmin, false, KindValidation},
		{"unknown target", StatusPending, Status("archived"), RoleAdmin, false, KindValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := canTransition(tc.from, tc.to, tc.role, tc.isOwner)
			if tc.want == KindUnknown {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Equal(t, tc.want, err.Kind)
			}
		})
	}
}

func TestSettled(t *testing.T) {
	assert.True(t, StatusReleased.Settled())
	assert.True(t, StatusRefunded.Settled())
	assert.True(t, StatusCancelled.Settled())
	assert.False(t, StatusPending.Settled())
	assert.False(t, StatusDelivered.Settled())
}
