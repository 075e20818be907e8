package control

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nitzanw/switcherctl/internal/discovery"
	"github.com/nitzanw/switcherctl/internal/logging"
)

// State change confirmation. Plugs apply on/off commands asynchronously and
// their command replies carry no acknowledgment, so the only way to know a
// command took effect is to poll the state afterwards. The sequence is fixed:
// wait firstPollDelay, poll, and if the state has not converged wait
// secondPollDelay and poll once more. Two polls total, then give up.

const (
	firstPollDelay  = 500 * time.Millisecond
	secondPollDelay = 1 * time.Second
)

// pollFunc returns the device's current state. Injectable for tests.
type pollFunc func(ctx context.Context) (discovery.DeviceState, error)

// awaitState confirms the device reached want after a control command.
func (c *Controller) awaitState(ctx context.Context, want discovery.DeviceState) error {
	poll := func(ctx context.Context) (discovery.DeviceState, error) {
		status, err := c.GetStatus(ctx)
		if err != nil {
			return discovery.StateUnknown, err
		}
		return status.State, nil
	}
	return confirmState(ctx, want, poll, c.sleep, c.IP)
}

// confirmState runs the two-poll confirmation sequence. Poll errors are not
// fatal: a device that just switched relays sometimes drops the next query,
// so an errored poll counts as "not yet converged" and the sequence proceeds.
func confirmState(ctx context.Context, want discovery.DeviceState, poll pollFunc, sleep func(time.Duration), deviceIP string) error {
	delays := []time.Duration{firstPollDelay, secondPollDelay}

	var last discovery.DeviceState
	for attempt, delay := range delays {
		sleep(delay)
		if err := ctx.Err(); err != nil {
			return NewNotConfirmedError(deviceIP,
				fmt.Sprintf("confirmation interrupted: %v", err))
		}

		state, err := poll(ctx)
		if err != nil {
			logging.Warn("confirmation poll failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			last = discovery.StateUnknown
			continue
		}

		logging.Debug("confirmation poll",
			zap.Int("attempt", attempt+1),
			zap.String("state", string(state)),
			zap.String("want", string(want)),
		)

		if state == want {
			return nil
		}
		last = state
	}

	return NewNotConfirmedError(deviceIP,
		fmt.Sprintf("device reports %q after command, wanted %q", last, want))
}
