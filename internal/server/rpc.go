package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/Cyclone1070/genfab/internal/tool"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
)

// ProtocolVersion is the newest protocol revision the server speaks.
const ProtocolVersion = "2025-06-18"

var supportedVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

type rpcRequest struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id,omitempty"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

func (r *rpcRequest) isNotification() bool {
	return len(r.ID) == 0
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  any                 `json:"result,omitempty"`
	Error   *rpcError           `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var nullID = jsoniter.RawMessage("null")

// handleMCP serves one stateless JSON-RPC exchange per POST.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, rpcResponse{
			JSONRPC: "2.0", ID: nullID,
			Error: &rpcError{Code: codeInvalidRequest, Message: "request body too large"},
		})
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, rpcResponse{
			JSONRPC: "2.0", ID: nullID,
			Error: &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()},
		})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		id := req.ID
		if len(id) == 0 {
			id = nullID
		}
		writeJSON(w, http.StatusOK, rpcResponse{
			JSONRPC: "2.0", ID: id,
			Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"},
		})
		return
	}

	result, rpcErr := s.dispatch(r.Context(), &req)
	if req.isNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		s.logger.Debug("rpc error", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
		resp.Error = rpcErr
	} else {
		if result == nil {
			result = struct{}{}
		}
		resp.Result = result
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dispatch(ctx context.Context, req *rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		return s.initialize(req.Params)
	case "notifications/initialized", "notifications/cancelled":
		return nil, nil
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return s.listTools(), nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	case "resources/list":
		return map[string]any{"resources": resources}, nil
	case "resources/read":
		return s.readResource(req.Params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

func decodeParams(raw jsoniter.RawMessage, out any) *rpcError {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

func (s *Server) initialize(raw jsoniter.RawMessage) (any, *rpcError) {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	version := ProtocolVersion
	if supportedVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}

	return map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools":     map[string]any{"listChanged": false},
			"resources": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]string{"name": Name, "version": s.version},
	}, nil
}

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema *tool.Schema   `json:"inputSchema"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

func (s *Server) listTools() map[string]any {
	decls := s.tools.Declarations()
	out := make([]toolInfo, 0, len(decls))
	for _, d := range decls {
		schema := d.Parameters
		if schema == nil {
			schema = &tool.Schema{Type: tool.TypeObject}
		}
		info := toolInfo{Name: d.Name, Description: d.Description, InputSchema: schema}
		if uri, ok := toolUI[d.Name]; ok {
			info.Meta = map[string]any{"ui": map[string]string{"resourceUri": uri}}
		}
		out = append(out, info)
	}
	return map[string]any{"tools": out}
}

func (s *Server) callTool(ctx context.Context, raw jsoniter.RawMessage) (any, *rpcError) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	t, ok := s.tools.Resolve(params.Name)
	if !ok {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("%v: %s", ErrUnknownTool, params.Name)}
	}

	s.logger.Info("tool call", "tool", params.Name)
	out, err := s.execute(ctx, t, params.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
		return errorResult(err.Error()), nil
	}

	if res, ok := out.(CallResult); ok {
		return res, nil
	}
	return jsonResult(out), nil
}

func (s *Server) execute(ctx context.Context, t tool.Tool, args map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panicked", "tool", t.Name(), "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("tool %s panicked: %v", t.Name(), r)
		}
	}()
	return t.Execute(ctx, args)
}

func (s *Server) readResource(raw jsoniter.RawMessage) (any, *rpcError) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	contents, err := readResource(params.URI)
	if errors.Is(err, ErrUnknownResource) {
		return nil, &rpcError{Code: codeResourceNotFound, Message: err.Error()}
	}
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
	}
	return map[string]any{"contents": []ResourceContents{contents}}, nil
}
