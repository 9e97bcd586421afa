package server

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed resources/*.html
var resourceFS embed.FS

// UI resource URIs referenced by tool metadata.
const (
	DashboardURI = "ui://printer-dashboard.html"
	SnapshotURI  = "ui://printer-snapshot.html"
	AnalysisURI  = "ui://printer-analysis.html"

	appMIMEType = "text/html;profile=mcp-app"
)

var cspDomains = []string{"https://unpkg.com", "https://fonts.googleapis.com", "https://fonts.gstatic.com"}

// Resource describes an HTML view served to clients.
type Resource struct {
	URI         string         `json:"uri"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	MIMEType    string         `json:"mimeType"`
	Meta        map[string]any `json:"_meta,omitempty"`

	file string
}

// ResourceContents is one entry of a resources/read response.
type ResourceContents struct {
	URI      string         `json:"uri"`
	MIMEType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Meta     map[string]any `json:"_meta,omitempty"`
}

func uiMeta() map[string]any {
	return map[string]any{"ui": map[string]any{"csp": map[string]any{"resourceDomains": cspDomains}}}
}

var resources = []Resource{
	{URI: DashboardURI, Name: "printer_dashboard", Description: "Live printer dashboard", MIMEType: appMIMEType, Meta: uiMeta(), file: "resources/printer-dashboard.html"},
	{URI: SnapshotURI, Name: "printer_snapshot", Description: "Camera snapshot viewer", MIMEType: appMIMEType, Meta: uiMeta(), file: "resources/printer-snapshot.html"},
	{URI: AnalysisURI, Name: "printer_analysis", Description: "Failure analysis report", MIMEType: appMIMEType, Meta: uiMeta(), file: "resources/printer-analysis.html"},
}

func readResource(uri string) (ResourceContents, error) {
	for _, r := range resources {
		if r.URI != uri {
			continue
		}
		data, err := fs.ReadFile(resourceFS, r.file)
		if err != nil {
			return ResourceContents{}, fmt.Errorf("read %s: %w", r.file, err)
		}
		return ResourceContents{URI: r.URI, MIMEType: r.MIMEType, Text: string(data), Meta: r.Meta}, nil
	}
	return ResourceContents{}, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
}
