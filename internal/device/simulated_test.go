package device

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulated(opts ...SimulatedOption) *Simulated {
	opts = append([]SimulatedOption{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewSimulated(opts...)
}

func TestSimulated_StatusAdvancesProgress(t *testing.T) {
	sim := newTestSimulated(WithProgressStep(1))
	ctx := context.Background()

	first, err := sim.Status(ctx)
	require.NoError(t, err)
	second, err := sim.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatePrinting, first.State)
	assert.Equal(t, 46, first.Progress)
	assert.Equal(t, 47, second.Progress)
	assert.Equal(t, first.TimeRemaining-1, second.TimeRemaining)
	assert.Equal(t, 100, first.FanSpeed)
	assert.Equal(t, 3600-second.TimeRemaining, second.PrintTime)
}

func TestSimulated_ProgressMonotonicAndFinishesOnce(t *testing.T) {
	sim := newTestSimulated()
	ctx := context.Background()

	last := -1
	finishedFlips := 0
	prevState := StatePrinting
	for range 1000 {
		st, err := sim.Status(ctx)
		require.NoError(t, err)

		if prevState == StatePrinting {
			assert.GreaterOrEqual(t, st.Progress, last)
		}
		if st.State == StateFinished && prevState != StateFinished {
			finishedFlips++
			assert.Equal(t, 100, st.Progress)
		}
		if st.State == StatePrinting {
			assert.Less(t, st.Progress, 100)
		}
		last = st.Progress
		prevState = st.State
	}

	assert.Equal(t, 1, finishedFlips)
	assert.Equal(t, StateFinished, prevState)
	assert.Equal(t, 100, last)
}

func TestSimulated_TemperatureJitterBounds(t *testing.T) {
	sim := newTestSimulated()
	ctx := context.Background()

	for range 200 {
		st, err := sim.Status(ctx)
		require.NoError(t, err)
		assert.InDelta(t, st.TargetNozzle, st.TempNozzle, 0.5+1e-9)
		assert.InDelta(t, st.TargetBed, st.TempBed, 0.2+0.05+1e-9)
		assert.Equal(t, 35.0, st.TempChamber)
	}
}

func TestSimulated_AmbientWhenHeatersOff(t *testing.T) {
	sim := newTestSimulated()
	sim.targetNozzle = 0
	sim.targetBed = 0

	st, err := sim.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 25.0, st.TempNozzle)
	assert.Equal(t, 22.0, st.TempBed)
}

func TestSimulated_Transitions(t *testing.T) {
	ctx := context.Background()
	type command func(*Simulated) (CommandResult, error)
	pause := func(s *Simulated) (CommandResult, error) { return s.Pause(ctx) }
	resume := func(s *Simulated) (CommandResult, error) { return s.Resume(ctx) }
	stop := func(s *Simulated) (CommandResult, error) { return s.Stop(ctx) }

	tests := []struct {
		name      string
		steps     []command
		wantOK    []bool
		wantState State
	}{
		{
			name:      "pause then resume",
			steps:     []command{pause, resume},
			wantOK:    []bool{true, true},
			wantState: StatePrinting,
		},
		{
			name:      "resume while printing is rejected",
			steps:     []command{resume},
			wantOK:    []bool{false},
			wantState: StatePrinting,
		},
		{
			name:      "double pause is rejected",
			steps:     []command{pause, pause},
			wantOK:    []bool{true, false},
			wantState: StatePaused,
		},
		{
			name:      "stop from paused",
			steps:     []command{pause, stop},
			wantOK:    []bool{true, true},
			wantState: StateReady,
		},
		{
			name:      "stop when ready is rejected",
			steps:     []command{stop, stop},
			wantOK:    []bool{true, false},
			wantState: StateReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulated()
			for i, step := range tt.steps {
				res, err := step(sim)
				require.NoError(t, err)
				assert.Equal(t, tt.wantOK[i], res.Succeeded, "step %d: %s", i, res.Message)
			}
			info, err := sim.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, info.State)
		})
	}
}

func TestSimulated_StopResetsProgress(t *testing.T) {
	sim := newTestSimulated()
	ctx := context.Background()

	_, err := sim.Stop(ctx)
	require.NoError(t, err)
	st, err := sim.Status(ctx)

	require.NoError(t, err)
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, 0, st.Progress)
	assert.Equal(t, 0, st.TimeRemaining)
	assert.Equal(t, 0, st.PrintTime)
	assert.Equal(t, 0, st.FanSpeed)
}

func TestSimulated_PausedDoesNotAdvance(t *testing.T) {
	sim := newTestSimulated(WithProgressStep(5))
	ctx := context.Background()

	_, err := sim.Pause(ctx)
	require.NoError(t, err)
	a, _ := sim.Status(ctx)
	b, _ := sim.Status(ctx)

	assert.Equal(t, 45, a.Progress)
	assert.Equal(t, a.Progress, b.Progress)
	assert.Equal(t, StatePaused, b.State)
}

func TestSimulated_UploadFile(t *testing.T) {
	sim := newTestSimulated()

	res, err := sim.UploadFile(context.Background(), "/tmp/out/benchy.gcode")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Contains(t, res.Message, "benchy.gcode")

	res, err = sim.UploadFile(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
}
