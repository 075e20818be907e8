package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nitzanw/switcherctl/internal/discovery"
)

// scriptedPoll returns the given states in order, tracking call count.
func scriptedPoll(states []discovery.DeviceState, errs []error, calls *int) pollFunc {
	return func(ctx context.Context) (discovery.DeviceState, error) {
		i := *calls
		*calls++
		if errs != nil && errs[i] != nil {
			return discovery.StateUnknown, errs[i]
		}
		return states[i], nil
	}
}

func TestConfirmStateImmediateConvergence(t *testing.T) {
	var calls int
	var slept []time.Duration
	poll := scriptedPoll([]discovery.DeviceState{discovery.StateOn}, nil, &calls)
	sleep := func(d time.Duration) { slept = append(slept, d) }

	err := confirmState(context.Background(), discovery.StateOn, poll, sleep, "192.168.1.42")
	if err != nil {
		t.Fatalf("confirmState() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("polls = %d, want 1", calls)
	}
	if len(slept) != 1 || slept[0] != firstPollDelay {
		t.Errorf("sleeps = %v, want [%v]", slept, firstPollDelay)
	}
}

func TestConfirmStateLateConvergence(t *testing.T) {
	var calls int
	var slept []time.Duration
	poll := scriptedPoll([]discovery.DeviceState{discovery.StateOff, discovery.StateOn}, nil, &calls)
	sleep := func(d time.Duration) { slept = append(slept, d) }

	err := confirmState(context.Background(), discovery.StateOn, poll, sleep, "192.168.1.42")
	if err != nil {
		t.Fatalf("confirmState() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("polls = %d, want 2", calls)
	}
	want := []time.Duration{firstPollDelay, secondPollDelay}
	if len(slept) != 2 || slept[0] != want[0] || slept[1] != want[1] {
		t.Errorf("sleeps = %v, want %v", slept, want)
	}
}

func TestConfirmStateNeverConverges(t *testing.T) {
	var calls int
	poll := scriptedPoll([]discovery.DeviceState{discovery.StateOff, discovery.StateOff}, nil, &calls)

	err := confirmState(context.Background(), discovery.StateOn, poll, func(time.Duration) {}, "192.168.1.42")
	if !IsNotConfirmedError(err) {
		t.Fatalf("error = %v, want not-confirmed error", err)
	}
	if calls != 2 {
		t.Errorf("polls = %d, want exactly 2", calls)
	}
}

func TestConfirmStatePollErrorThenConvergence(t *testing.T) {
	var calls int
	poll := scriptedPoll(
		[]discovery.DeviceState{discovery.StateUnknown, discovery.StateOn},
		[]error{errors.New("connection reset"), nil},
		&calls,
	)

	err := confirmState(context.Background(), discovery.StateOn, poll, func(time.Duration) {}, "192.168.1.42")
	if err != nil {
		t.Fatalf("confirmState() error = %v after recoverable poll failure", err)
	}
	if calls != 2 {
		t.Errorf("polls = %d, want 2", calls)
	}
}

func TestConfirmStateBothPollsError(t *testing.T) {
	var calls int
	poll := scriptedPoll(
		[]discovery.DeviceState{discovery.StateUnknown, discovery.StateUnknown},
		[]error{errors.New("reset"), errors.New("reset")},
		&calls,
	)

	err := confirmState(context.Background(), discovery.StateOn, poll, func(time.Duration) {}, "192.168.1.42")
	if !IsNotConfirmedError(err) {
		t.Errorf("error = %v, want not-confirmed error", err)
	}
}

func TestConfirmStateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	poll := scriptedPoll([]discovery.DeviceState{discovery.StateOn}, nil, &calls)

	err := confirmState(ctx, discovery.StateOn, poll, func(time.Duration) {}, "192.168.1.42")
	if !IsNotConfirmedError(err) {
		t.Fatalf("error = %v, want not-confirmed error on cancellation", err)
	}
	if calls != 0 {
		t.Errorf("polls = %d, want 0 after cancellation", calls)
	}
}
