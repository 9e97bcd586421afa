package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultTimeout bounds every PrusaLink request.
	DefaultTimeout = 5 * time.Second
	// DefaultStorage is the PrusaLink storage uploads are written to.
	DefaultStorage = "usb"

	defaultRatePerSecond = 4
	defaultBurst         = 4
	maxErrorBody         = 512
)

// PrusaLinkConfig configures the live printer client.
type PrusaLinkConfig struct {
	Host          string
	APIKey        string
	Storage       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// PrusaLink talks to a printer over the PrusaLink v1 REST API.
type PrusaLink struct {
	baseURL string
	apiKey  string
	storage string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// PrusaLinkOption configures a PrusaLink client.
type PrusaLinkOption func(*PrusaLink)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) PrusaLinkOption {
	return func(p *PrusaLink) { p.client = client }
}

// WithLogger sets the logger used for tolerated upstream faults.
func WithLogger(logger *slog.Logger) PrusaLinkOption {
	return func(p *PrusaLink) { p.logger = logger }
}

// NewPrusaLink creates a live client. Host may be a bare address or a full URL.
func NewPrusaLink(cfg PrusaLinkConfig, opts ...PrusaLinkOption) (*PrusaLink, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, ErrNotConfigured
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("invalid printer address %q: %w", cfg.Host, err)
	}

	p := &PrusaLink{
		baseURL: strings.TrimRight(host, "/"),
		apiKey:  cfg.APIKey,
		storage: cfg.Storage,
		timeout: cfg.Timeout,
		client:  &http.Client{},
		logger:  slog.Default(),
	}
	if p.storage == "" {
		p.storage = DefaultStorage
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}

	limit, burst := rate.Limit(cfg.RatePerSecond), cfg.Burst
	if limit <= 0 {
		limit = defaultRatePerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	p.limiter = rate.NewLimiter(limit, burst)

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type prusaPrinter struct {
	State         string   `json:"state"`
	TempNozzle    float64  `json:"temp_nozzle"`
	TargetNozzle  float64  `json:"target_nozzle"`
	TempBed       float64  `json:"temp_bed"`
	TargetBed     float64  `json:"target_bed"`
	TempChamber   *float64 `json:"temp_chamber"`
	TargetChamber *float64 `json:"target_chamber"`
	TempCabinet   float64  `json:"temp_cabinet"`
	TargetCabinet float64  `json:"target_cabinet"`
	FanHotend     float64  `json:"fan_hotend"`
}

type prusaStatus struct {
	Printer prusaPrinter `json:"printer"`
}

type prusaJob struct {
	Progress      float64 `json:"progress"`
	TimeRemaining float64 `json:"time_remaining"`
	TimePrinting  float64 `json:"time_printing"`
}

type prusaInfo struct {
	Hostname string `json:"hostname"`
	Serial   string `json:"serial"`
}

type prusaVersion struct {
	Text   string `json:"text"`
	Server string `json:"server"`
}

// Status implements Provider with a status read followed by a job read.
func (p *PrusaLink) Status(ctx context.Context) (Status, error) {
	var status prusaStatus
	if _, err := p.getJSON(ctx, "/api/v1/status", &status); err != nil {
		return Status{}, err
	}

	var job prusaJob
	body, code, err := p.do(ctx, http.MethodGet, "/api/v1/job", nil, nil)
	if err != nil {
		return Status{}, err
	}
	if code != http.StatusNoContent && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &job); err != nil {
			p.logger.Warn("ignoring unparsable job body", "error", err)
			job = prusaJob{}
		}
	}

	printer := status.Printer
	return Status{
		State:         NormalizeState(printer.State),
		TempNozzle:    printer.TempNozzle,
		TargetNozzle:  printer.TargetNozzle,
		TempBed:       printer.TempBed,
		TargetBed:     printer.TargetBed,
		TempChamber:   firstNonZero(printer.TempChamber, printer.TempCabinet),
		TargetChamber: firstNonZero(printer.TargetChamber, printer.TargetCabinet),
		FanSpeed:      int(printer.FanHotend),
		Progress:      clampProgress(job.Progress),
		TimeRemaining: int(job.TimeRemaining),
		PrintTime:     int(job.TimePrinting),
	}, nil
}

// Info implements Provider from the info, version and status endpoints.
func (p *PrusaLink) Info(ctx context.Context) (Info, error) {
	var info prusaInfo
	if _, err := p.getJSON(ctx, "/api/v1/info", &info); err != nil {
		return Info{}, err
	}
	var version prusaVersion
	if _, err := p.getJSON(ctx, "/api/version", &version); err != nil {
		return Info{}, err
	}
	var status prusaStatus
	if _, err := p.getJSON(ctx, "/api/v1/status", &status); err != nil {
		return Info{}, err
	}

	return Info{
		Name:     orDefault(info.Hostname, "Unknown Prusa"),
		Model:    orDefault(version.Text, "Unknown Model"),
		Serial:   orDefault(info.Serial, "Unknown"),
		Firmware: orDefault(version.Server, "Unknown"),
		State:    NormalizeState(status.Printer.State),
	}, nil
}

// Pause implements Provider.
func (p *PrusaLink) Pause(ctx context.Context) (CommandResult, error) {
	return p.jobCommand(ctx, "pause", "Print paused")
}

// Resume implements Provider.
func (p *PrusaLink) Resume(ctx context.Context) (CommandResult, error) {
	return p.jobCommand(ctx, "resume", "Print resumed")
}

// Stop implements Provider.
func (p *PrusaLink) Stop(ctx context.Context) (CommandResult, error) {
	if _, _, err := p.do(ctx, http.MethodDelete, "/api/v1/job", nil, nil); err != nil {
		return CommandResult{Message: err.Error()}, err
	}
	return CommandResult{Succeeded: true, Message: "Print stopped"}, nil
}

func (p *PrusaLink) jobCommand(ctx context.Context, command, okMessage string) (CommandResult, error) {
	payload, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return CommandResult{}, err
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if _, _, err := p.do(ctx, http.MethodPost, "/api/v1/job", bytes.NewReader(payload), headers); err != nil {
		return CommandResult{Message: err.Error()}, err
	}
	return CommandResult{Succeeded: true, Message: okMessage}, nil
}

// UploadFile implements Provider. The file keeps its base name on the printer storage.
func (p *PrusaLink) UploadFile(ctx context.Context, path string) (CommandResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CommandResult{Message: err.Error()}, fmt.Errorf("failed to read upload: %w", err)
	}

	name := filepath.Base(path)
	target := "/api/v1/files/" + url.PathEscape(p.storage) + "/" + url.PathEscape(name)
	headers := map[string]string{
		"Content-Type": "application/octet-stream",
		"Overwrite":    "?1",
	}
	if _, _, err := p.do(ctx, http.MethodPut, target, bytes.NewReader(data), headers); err != nil {
		return CommandResult{Message: err.Error()}, err
	}
	return CommandResult{Succeeded: true, Message: fmt.Sprintf("Uploaded %s to %s", name, p.storage)}, nil
}

func (p *PrusaLink) getJSON(ctx context.Context, path string, out any) (int, error) {
	body, code, err := p.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return code, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return code, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return code, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return code, nil
}

// do performs one rate-limited request bounded by the client timeout.
func (p *PrusaLink) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) ([]byte, int, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, resp.StatusCode, &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: msg}
	}

	return data, resp.StatusCode, nil
}

// NormalizeState maps a raw PrusaLink state onto State.
func NormalizeState(raw string) State {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PRINTING":
		return StatePrinting
	case "PAUSED":
		return StatePaused
	case "IDLE", "READY", "OPERATIONAL", "STOPPED":
		return StateReady
	case "FINISHED":
		return StateFinished
	default:
		return StateUnknown
	}
}

func firstNonZero(primary *float64, fallback float64) float64 {
	if primary != nil && *primary != 0 {
		return *primary
	}
	return fallback
}

func clampProgress(p float64) int {
	return int(max(0, min(100, p)))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
