// Package device defines the printer capability consumed by the analysis loop
// and the tool server, with a simulated and a PrusaLink-backed variant.
package device

import "context"

// State is the normalised printer state.
type State string

const (
	StatePrinting State = "Printing"
	StatePaused   State = "Paused"
	StateReady    State = "Ready"
	StateFinished State = "Finished"
	StateUnknown  State = "Unknown"
)

// Info identifies the printer.
type Info struct {
	Name     string `json:"name"`
	Model    string `json:"model"`
	Serial   string `json:"serial,omitempty"`
	Firmware string `json:"firmware"`
	State    State  `json:"state"`
}

// Status is a telemetry snapshot. Missing upstream fields stay at their zero value.
type Status struct {
	State         State   `json:"state"`
	TempNozzle    float64 `json:"temp_nozzle"`
	TargetNozzle  float64 `json:"target_nozzle"`
	TempBed       float64 `json:"temp_bed"`
	TargetBed     float64 `json:"target_bed"`
	TempChamber   float64 `json:"temp_chamber"`
	TargetChamber float64 `json:"target_chamber"`
	FanSpeed      int     `json:"fan_speed"`
	Progress      int     `json:"progress"`
	TimeRemaining int     `json:"time_remaining"`
	PrintTime     int     `json:"print_time"`
}

// CommandResult reports the outcome of a control command or upload.
type CommandResult struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

// Provider is the printer capability. Control commands are fire-and-forget;
// concurrent callers are not serialised against each other.
type Provider interface {
	Info(ctx context.Context) (Info, error)
	Status(ctx context.Context) (Status, error)
	Pause(ctx context.Context) (CommandResult, error)
	Resume(ctx context.Context) (CommandResult, error)
	Stop(ctx context.Context) (CommandResult, error)
	UploadFile(ctx context.Context, path string) (CommandResult, error)
}
