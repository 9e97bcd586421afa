package analysis

import (
	"context"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/tool"
)

// Names of the tools offered to the reasoning service.
const (
	ToolGetDeviceStatus = "get_device_status"
	ToolGetDeviceInfo   = "get_device_info"
	ToolPauseDevice     = "pause_device"
)

// ReadOnlyTools are enabled when a request does not name its tools.
var ReadOnlyTools = []string{ToolGetDeviceStatus, ToolGetDeviceInfo}

type emptyRequest struct{}

// PauseRequest is the argument of pause_device.
type PauseRequest struct {
	Reason string `json:"reason,omitempty"`
}

// NewDeviceTools returns the analysis tools backed by p.
func NewDeviceTools(p device.Provider) []tool.Tool {
	return []tool.Tool{
		tool.NewFunc(
			ToolGetDeviceStatus,
			"Get live printer telemetry: state, nozzle/bed/chamber temperatures and targets, fan speed, progress (0-100), time remaining and print time in seconds.",
			nil,
			func(ctx context.Context, _ emptyRequest) (device.Status, error) {
				return p.Status(ctx)
			},
		),
		tool.NewFunc(
			ToolGetDeviceInfo,
			"Get printer identity: name, model, firmware and current state.",
			nil,
			func(ctx context.Context, _ emptyRequest) (device.Info, error) {
				return p.Info(ctx)
			},
		),
		tool.NewFunc(
			ToolPauseDevice,
			"Pause the running print. Only use when the frame shows a failure that will get worse.",
			&tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"reason": {Type: tool.TypeString, Description: "Why the print is being paused"},
				},
			},
			func(ctx context.Context, _ PauseRequest) (device.CommandResult, error) {
				return p.Pause(ctx)
			},
		),
	}
}
