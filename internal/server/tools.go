package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/tool"
	"github.com/Cyclone1070/genfab/internal/workflow/analysis"
)

// Names of the tools exposed to clients.
const (
	ToolGetPrinterInfo       = "get_printer_info"
	ToolGetPrinterStatus     = "get_printer_status"
	ToolShowPrinterDashboard = "show_printer_dashboard"
	ToolPausePrinter         = "pause_printer"
	ToolResumePrinter        = "resume_printer"
	ToolStopPrinter          = "stop_printer"
	ToolUploadFile           = "upload_file"
	ToolGetCameraFrame       = "get_camera_frame"
	ToolAnalyzePrintFailure  = "analyze_print_failure"
	ToolSliceModel           = "slice_model"
	ToolGenerateModel        = "generate_model"
)

// toolUI links tools to the view that renders their result.
var toolUI = map[string]string{
	ToolShowPrinterDashboard: DashboardURI,
	ToolGetCameraFrame:       SnapshotURI,
	ToolAnalyzePrintFailure:  AnalysisURI,
}

type noArgs struct{}

// UploadRequest is the argument of upload_file.
type UploadRequest struct {
	Path string `json:"path"`
}

func (r *UploadRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// AnalyzeRequest is the argument of analyze_print_failure.
type AnalyzeRequest struct {
	Effort string   `json:"effort"`
	Prompt string   `json:"prompt"`
	Tools  []string `json:"tools"`
}

func (r *AnalyzeRequest) Validate() error {
	if r.Effort == "" {
		return nil
	}
	if !models.Effort(strings.ToUpper(r.Effort)).Valid() {
		return fmt.Errorf("effort must be LOW or HIGH, got %q", r.Effort)
	}
	return nil
}

// SliceRequest is the argument of slice_model.
type SliceRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Intent string `json:"intent"`
}

func (r *SliceRequest) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return errors.New("input is required")
	}
	return nil
}

// GenerateRequest is the argument of generate_model.
type GenerateRequest struct {
	Prompt   string `json:"prompt"`
	Filename string `json:"filename"`
}

func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	return nil
}

type dashboardData struct {
	Name          string  `json:"name"`
	Model         string  `json:"model"`
	Firmware      string  `json:"firmware"`
	State         string  `json:"state"`
	TempNozzle    float64 `json:"temp_nozzle"`
	TargetNozzle  float64 `json:"target_nozzle"`
	TempBed       float64 `json:"temp_bed"`
	TargetBed     float64 `json:"target_bed"`
	TempChamber   float64 `json:"temp_chamber"`
	TargetChamber float64 `json:"target_chamber"`
	Progress      int     `json:"progress"`
	TimeRemaining int     `json:"time_remaining"`
	PrintTime     int     `json:"print_time"`
}

func (s *Server) buildTools() *tool.Registry {
	str := func(desc string) *tool.Schema { return &tool.Schema{Type: tool.TypeString, Description: desc} }

	return tool.NewRegistry(
		tool.NewFunc(ToolGetPrinterInfo,
			"Get basic information about the connected printer (model, serial, firmware).",
			nil, s.printerInfo),
		tool.NewFunc(ToolGetPrinterStatus,
			"Get the current status of the printer including temperatures and progress.",
			nil, s.printerStatus),
		tool.NewFunc(ToolShowPrinterDashboard,
			"Fetch the latest raw printer data for the dashboard.",
			nil, s.dashboard),
		tool.NewFunc(ToolPausePrinter, "Pause the current print job.", nil,
			func(ctx context.Context, _ noArgs) (CallResult, error) { return s.command(ctx, "pause") }),
		tool.NewFunc(ToolResumePrinter, "Resume a paused print job.", nil,
			func(ctx context.Context, _ noArgs) (CallResult, error) { return s.command(ctx, "resume") }),
		tool.NewFunc(ToolStopPrinter, "Stop the current print job.", nil,
			func(ctx context.Context, _ noArgs) (CallResult, error) { return s.command(ctx, "stop") }),
		tool.NewFunc(ToolUploadFile,
			"Upload a G-code file to the printer storage.",
			&tool.Schema{
				Type:       tool.TypeObject,
				Properties: map[string]*tool.Schema{"path": str("Local path of the file to upload")},
				Required:   []string{"path"},
			}, s.upload),
		tool.NewFunc(ToolGetCameraFrame,
			"Take a snapshot from the printer camera.",
			nil, s.cameraFrame),
		tool.NewFunc(ToolAnalyzePrintFailure,
			"Analyze the current printer camera frame for failures (spaghetti, layer shift, warping) and recommend an action.",
			&tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"effort": {Type: tool.TypeString, Description: "Reasoning effort", Enum: []string{string(models.EffortLow), string(models.EffortHigh)}},
					"prompt": str("Override the analysis instructions"),
					"tools": {
						Type:        tool.TypeArray,
						Description: "Device tools the analysis may call; omit for the defaults, empty for none",
						Items:       &tool.Schema{Type: tool.TypeString},
					},
				},
			}, s.analyze),
		tool.NewFunc(ToolSliceModel,
			"Slice an STL/3MF model into G-code. The intent (draft, strong, detail) selects the print profile.",
			&tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"input":  str("Path of the model to slice"),
					"output": str("Path of the G-code to write; defaults next to the input"),
					"intent": str("What the print should optimise for, e.g. 'fast draft' or 'strong bracket'"),
				},
				Required: []string{"input"},
			}, s.slice),
		tool.NewFunc(ToolGenerateModel,
			"Generate a printable 3D model (STL) from a text description.",
			&tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"prompt":   str("Description of the object"),
					"filename": str("Output file name without extension"),
				},
				Required: []string{"prompt"},
			}, s.generate),
	)
}

func (s *Server) printerInfo(ctx context.Context, _ noArgs) (CallResult, error) {
	info, err := s.device.Info(ctx)
	if err != nil {
		return errorResult("Error fetching printer info: " + err.Error()), nil
	}
	return textResult(fmt.Sprintf("Printer: %s (%s)\nFirmware: %s\nState: %s", info.Name, info.Model, info.Firmware, info.State)), nil
}

func (s *Server) printerStatus(ctx context.Context, _ noArgs) (CallResult, error) {
	st, err := s.device.Status(ctx)
	if err != nil {
		return errorResult("Error fetching printer status: " + err.Error()), nil
	}
	return textResult(fmt.Sprintf(
		"State: %s\nNozzle: %.1f°C / %.1f°C\nBed: %.1f°C / %.1f°C\nChamber: %.1f°C / %.1f°C\nProgress: %d%%\nTime Remaining: %d",
		st.State, st.TempNozzle, st.TargetNozzle, st.TempBed, st.TargetBed,
		st.TempChamber, st.TargetChamber, st.Progress, st.TimeRemaining,
	)), nil
}

func (s *Server) dashboard(ctx context.Context, _ noArgs) (CallResult, error) {
	info, err := s.device.Info(ctx)
	if err != nil {
		return jsonErrorResult("Error fetching printer data: "+err.Error(), nil), nil
	}
	st, err := s.device.Status(ctx)
	if err != nil {
		return jsonErrorResult("Error fetching printer data: "+err.Error(), nil), nil
	}
	return jsonResult(dashboardData{
		Name:          info.Name,
		Model:         info.Model,
		Firmware:      info.Firmware,
		State:         string(st.State),
		TempNozzle:    st.TempNozzle,
		TargetNozzle:  st.TargetNozzle,
		TempBed:       st.TempBed,
		TargetBed:     st.TargetBed,
		TempChamber:   st.TempChamber,
		TargetChamber: st.TargetChamber,
		Progress:      st.Progress,
		TimeRemaining: st.TimeRemaining,
		PrintTime:     st.PrintTime,
	}), nil
}

func (s *Server) command(ctx context.Context, action string) (CallResult, error) {
	var (
		res device.CommandResult
		err error
	)
	switch action {
	case "pause":
		res, err = s.device.Pause(ctx)
	case "resume":
		res, err = s.device.Resume(ctx)
	default:
		res, err = s.device.Stop(ctx)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Error sending %s command: %v", action, err)), nil
	}
	out := jsonResult(res)
	out.IsError = !res.Succeeded
	return out, nil
}

func (s *Server) upload(ctx context.Context, req UploadRequest) (CallResult, error) {
	res, err := s.device.UploadFile(ctx, req.Path)
	if err != nil {
		return errorResult("Error uploading file: " + err.Error()), nil
	}
	out := jsonResult(res)
	out.IsError = !res.Succeeded
	return out, nil
}

func (s *Server) cameraFrame(ctx context.Context, _ noArgs) (CallResult, error) {
	if s.camera == nil {
		return errorResult("Camera not configured: set CAMERA_URL."), nil
	}
	frame, err := s.camera.Capture(ctx)
	if err != nil {
		return errorResult("Failed to capture image from camera: " + err.Error()), nil
	}
	return CallResult{Content: []Content{imageContent(frame.Base64(), frame.MIMEType)}}, nil
}

func (s *Server) analyze(ctx context.Context, req AnalyzeRequest) (CallResult, error) {
	a, effort := s.analysisSettings()
	if a == nil {
		return jsonErrorResult(analysis.ErrReasoningNotConfigured.Error(), nil), nil
	}
	if s.camera == nil {
		return jsonErrorResult("camera not configured: CAMERA_URL not set", nil), nil
	}
	frame, err := s.camera.Capture(ctx)
	if err != nil {
		return jsonErrorResult("failed to capture image: "+err.Error(), nil), nil
	}

	if req.Effort != "" {
		effort = models.Effort(strings.ToUpper(req.Effort))
	}

	result := a.Run(ctx, analysis.Request{
		Image:    frame.Data,
		MIMEType: frame.MIMEType,
		Effort:   effort,
		Prompt:   req.Prompt,
		Tools:    req.Tools,
		Events:   s.events,
	})

	switch r := result.(type) {
	case analysis.Success:
		return CallResult{Content: []Content{
			imageContent(frame.Base64(), frame.MIMEType),
			{Type: "text", Text: r.Text, MIMEType: "application/json"},
		}}, nil
	case analysis.Failure:
		return jsonErrorResult("analysis failed: "+r.Reason, map[string]any{"run_id": r.RunID, "calls": r.Calls}), nil
	default:
		return CallResult{}, fmt.Errorf("unexpected analysis result %T", result)
	}
}

func (s *Server) slice(ctx context.Context, req SliceRequest) (CallResult, error) {
	if s.slicer == nil {
		return errorResult("Slicer not configured."), nil
	}
	res, err := s.slicer.Slice(ctx, req.Input, req.Output, req.Intent)
	if err != nil {
		return errorResult("Slicing failed: " + err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) generate(ctx context.Context, req GenerateRequest) (CallResult, error) {
	if s.generator == nil {
		return errorResult("Model generation not configured."), nil
	}
	res, err := s.generator.Generate(ctx, req.Prompt, req.Filename)
	if err != nil {
		return errorResult("Model generation failed: " + err.Error()), nil
	}

	out := jsonResult(map[string]string{"path": res.Path, "filename": res.Filename, "message": res.Message})
	if res.PreviewBase64 != "" {
		out.Content = append(out.Content, imageContent(res.PreviewBase64, "image/png"))
	}
	return out, nil
}
