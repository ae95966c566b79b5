package machine_test

import (
	"testing"

	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_ParseRoundTrip(t *testing.T) {
	for _, s := range machine.AllStatuses() {
		parsed, err := machine.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		assert.NoError(t, s.Validate())
	}

	_, err := machine.ParseStatus("BROKEN")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Error(t, machine.Unknown.Validate())
	assert.Equal(t, "UNKNOWN", machine.Status(99).String())
}

func TestStatus_LegalEdges(t *testing.T) {
	legal := map[machine.Status][]machine.Status{
		machine.New:              {machine.Standby, machine.InTransit, machine.ReceivedAtCenter, machine.Sold},
		machine.Standby:          {machine.InTransit, machine.ReceivedAtCenter, machine.Sold},
		machine.InTransit:        {machine.ReceivedAtCenter, machine.Standby},
		machine.ReceivedAtCenter: {machine.Assigned, machine.UnderInspection, machine.Returning},
		machine.UnderInspection:  {machine.Assigned, machine.AwaitingApproval, machine.ReadyForReturn},
		machine.Assigned:         {machine.InProgress, machine.ReceivedAtCenter},
		machine.InProgress:       {machine.PendingApproval, machine.ReadyForReturn},
		machine.AwaitingApproval: {machine.RepairApproved, machine.RepairRejected},
		machine.PendingApproval:  {machine.RepairApproved, machine.RepairRejected},
		machine.RepairApproved:   {machine.InProgress, machine.ReadyForReturn},
		machine.RepairRejected:   {machine.PendingApproval, machine.ReadyForReturn, machine.Returning},
		machine.ReadyForReturn:   {machine.Returning, machine.InTransit},
		machine.Returning:        {machine.Standby},
		machine.Sold:             {},
	}

	for _, from := range machine.AllStatuses() {
		for _, to := range machine.AllStatuses() {
			want := false
			for _, l := range legal[from] {
				if l == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_NoSkippingToApproval(t *testing.T) {
	assert.False(t, machine.New.CanTransitionTo(machine.RepairApproved))
	assert.False(t, machine.ReceivedAtCenter.CanTransitionTo(machine.InProgress))
	assert.True(t, machine.Sold.IsTerminal())
	assert.Empty(t, machine.Sold.Successors())
}
