package device

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultProgressStep is the progress added per Status call while printing.
	DefaultProgressStep = 0.1

	simulatedJobSeconds = 3600
	ambientNozzle       = 25.0
	ambientBed          = 22.0
	nozzleJitter        = 0.5
	bedJitter           = 0.2
)

// Simulated is an in-memory printer. It is the device, so it owns its state
// and guards it with a mutex.
type Simulated struct {
	mu sync.Mutex

	rng  *rand.Rand
	step float64

	state         State
	progress      float64
	timeRemaining int
	targetNozzle  float64
	targetBed     float64
	tempChamber   float64
}

// SimulatedOption configures a Simulated printer.
type SimulatedOption func(*Simulated)

// WithRand sets the jitter source. Tests pass a seeded generator.
func WithRand(rng *rand.Rand) SimulatedOption {
	return func(s *Simulated) { s.rng = rng }
}

// WithProgressStep overrides DefaultProgressStep.
func WithProgressStep(step float64) SimulatedOption {
	return func(s *Simulated) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithProgress sets the starting progress of the simulated job.
func WithProgress(progress float64) SimulatedOption {
	return func(s *Simulated) { s.progress = math.Max(0, math.Min(100, progress)) }
}

// NewSimulated returns a printer that is mid-job at 45%.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	now := uint64(time.Now().UnixNano())
	s := &Simulated{
		rng:           rand.New(rand.NewPCG(now, now>>1)),
		step:          DefaultProgressStep,
		state:         StatePrinting,
		progress:      45,
		timeRemaining: 1200,
		targetNozzle:  215,
		targetBed:     60,
		tempChamber:   35,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info implements Provider.
func (s *Simulated) Info(ctx context.Context) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		Name:     "Mock Prusa MK4",
		Model:    "MK4",
		Serial:   "SIM-0001",
		Firmware: "5.1.0-mock",
		State:    s.state,
	}, nil
}

// Status implements Provider. Each call while printing advances the job by one step.
func (s *Simulated) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePrinting {
		// Rounded so repeated float steps land exactly on 100.
		s.progress = math.Min(100, math.Round((s.progress+s.step)*1e6)/1e6)
		s.timeRemaining = max(0, s.timeRemaining-1)
		if s.progress >= 100 {
			s.state = StateFinished
			s.timeRemaining = 0
		}
	}

	fan := 0
	if s.state == StatePrinting {
		fan = 100
	}

	printTime := 0
	if s.state != StateReady {
		printTime = simulatedJobSeconds - s.timeRemaining
	}

	return Status{
		State:         s.state,
		TempNozzle:    s.jitter(s.targetNozzle, nozzleJitter, ambientNozzle),
		TargetNozzle:  s.targetNozzle,
		TempBed:       s.jitter(s.targetBed, bedJitter, ambientBed),
		TargetBed:     s.targetBed,
		TempChamber:   round1(s.tempChamber),
		TargetChamber: 0,
		FanSpeed:      fan,
		Progress:      int(s.progress),
		TimeRemaining: s.timeRemaining,
		PrintTime:     printTime,
	}, nil
}

// jitter returns target perturbed by up to ±spread, or ambient when the heater is off.
func (s *Simulated) jitter(target, spread, ambient float64) float64 {
	if target <= 0 {
		return ambient
	}
	return round1(target + (s.rng.Float64()*2-1)*spread)
}

// Pause implements Provider. Only a printing job can be paused.
func (s *Simulated) Pause(ctx context.Context) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePrinting {
		return CommandResult{Message: fmt.Sprintf("cannot pause while %s", s.state)}, nil
	}
	s.state = StatePaused
	return CommandResult{Succeeded: true, Message: "Mock print paused"}, nil
}

// Resume implements Provider. Only a paused job can be resumed.
func (s *Simulated) Resume(ctx context.Context) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return CommandResult{Message: fmt.Sprintf("cannot resume while %s", s.state)}, nil
	}
	s.state = StatePrinting
	return CommandResult{Succeeded: true, Message: "Mock print resumed"}, nil
}

// Stop implements Provider. Stopping discards the job.
func (s *Simulated) Stop(ctx context.Context) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePrinting && s.state != StatePaused {
		return CommandResult{Message: fmt.Sprintf("cannot stop while %s", s.state)}, nil
	}
	s.state = StateReady
	s.progress = 0
	s.timeRemaining = 0
	return CommandResult{Succeeded: true, Message: "Mock print stopped"}, nil
}

// UploadFile implements Provider without touching the file.
func (s *Simulated) UploadFile(ctx context.Context, path string) (CommandResult, error) {
	if path == "" {
		return CommandResult{Message: "no file given"}, nil
	}
	return CommandResult{Succeeded: true, Message: fmt.Sprintf("Simulated upload of %s", filepath.Base(path))}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
