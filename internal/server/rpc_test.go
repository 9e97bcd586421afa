package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cyclone1070/genfab/internal/device"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *rpcError           `json:"error"`
}

func newTestServer(deps Deps) *Server {
	if deps.Device == nil {
		deps.Device = device.NewSimulated()
	}
	return New(deps, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func rpc(t *testing.T, h http.Handler, method string, params any) testResponse {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	rec := post(t, h, string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	return resp
}

func TestInitialize(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"supported version echoed", "2025-03-26", "2025-03-26"},
		{"unknown version falls back", "1999-01-01", ProtocolVersion},
		{"missing version", "", ProtocolVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpc(t, h, "initialize", map[string]any{"protocolVersion": tt.requested})
			require.Nil(t, resp.Error)

			var result struct {
				ProtocolVersion string            `json:"protocolVersion"`
				ServerInfo      map[string]string `json:"serverInfo"`
				Capabilities    map[string]any    `json:"capabilities"`
			}
			require.NoError(t, json.Unmarshal(resp.Result, &result))
			assert.Equal(t, tt.want, result.ProtocolVersion)
			assert.Equal(t, Name, result.ServerInfo["name"])
			assert.Contains(t, result.Capabilities, "tools")
			assert.Contains(t, result.Capabilities, "resources")
		})
	}
}

func TestDispatch_Errors(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	t.Run("parse error", func(t *testing.T) {
		rec := post(t, h, `{not json`)
		var resp testResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeParseError, resp.Error.Code)
		assert.Equal(t, "null", string(resp.ID))
	})

	t.Run("invalid request", func(t *testing.T) {
		rec := post(t, h, `{"jsonrpc":"1.0","id":7,"method":"ping"}`)
		var resp testResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeInvalidRequest, resp.Error.Code)
		assert.Equal(t, "7", string(resp.ID))
	})

	t.Run("method not found", func(t *testing.T) {
		resp := rpc(t, h, "prompts/list", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	})

	t.Run("notification is accepted without body", func(t *testing.T) {
		rec := post(t, h, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("ping", func(t *testing.T) {
		resp := rpc(t, h, "ping", nil)
		assert.Nil(t, resp.Error)
		assert.JSONEq(t, `{}`, string(resp.Result))
	})
}

func TestToolsList(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	resp := rpc(t, h, "tools/list", nil)
	require.Nil(t, resp.Error)

	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
			Meta        map[string]any `json:"_meta"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 11)

	byName := map[string]int{}
	for i, tl := range result.Tools {
		byName[tl.Name] = i
		assert.Equal(t, "object", tl.InputSchema["type"], tl.Name)
	}

	for name, uri := range toolUI {
		i, ok := byName[name]
		require.True(t, ok, name)
		ui := result.Tools[i].Meta["ui"].(map[string]any)
		assert.Equal(t, uri, ui["resourceUri"])
	}
	assert.Nil(t, result.Tools[byName[ToolGetPrinterStatus]].Meta)
}

func TestToolsCall_UnknownTool(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	resp := rpc(t, h, "tools/call", map[string]any{"name": "launch_rocket"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "launch_rocket")
}

func TestResources(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	t.Run("list", func(t *testing.T) {
		resp := rpc(t, h, "resources/list", nil)
		require.Nil(t, resp.Error)

		var result struct {
			Resources []Resource `json:"resources"`
		}
		require.NoError(t, json.Unmarshal(resp.Result, &result))
		require.Len(t, result.Resources, 3)
		for _, r := range result.Resources {
			assert.Equal(t, appMIMEType, r.MIMEType)
		}
	})

	t.Run("read", func(t *testing.T) {
		for _, uri := range []string{DashboardURI, SnapshotURI, AnalysisURI} {
			resp := rpc(t, h, "resources/read", map[string]any{"uri": uri})
			require.Nil(t, resp.Error, uri)

			var result struct {
				Contents []ResourceContents `json:"contents"`
			}
			require.NoError(t, json.Unmarshal(resp.Result, &result))
			require.Len(t, result.Contents, 1)
			assert.Equal(t, uri, result.Contents[0].URI)
			assert.Contains(t, result.Contents[0].Text, "<html")
			assert.Contains(t, result.Contents[0].Meta, "ui")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		resp := rpc(t, h, "resources/read", map[string]any{"uri": "ui://nope.html"})
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeResourceNotFound, resp.Error.Code)
	})
}

func TestHTTP_CORSAndHealth(t *testing.T) {
	h := newTestServer(Deps{}).Handler()

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
	})

	t.Run("get on mcp not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
