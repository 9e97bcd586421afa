package services

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type verdict struct {
	Status         string  `json:"status"`
	Summary        string  `json:"summary"`
	Recommendation string  `json:"recommendation"`
	Issues         []issue `json:"issues"`
}

type issue struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

var statusHeadings = map[string]string{
	"ok":      "✅ OK",
	"warning": "⚠️ WARNING",
	"failure": "❌ FAILURE",
}

// FormatVerdict turns the analysis JSON into markdown. Text that is not a
// verdict object is shown verbatim in a code block.
func FormatVerdict(text string) string {
	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil || v.Status == "" {
		return "```\n" + strings.TrimSpace(text) + "\n```"
	}

	heading, ok := statusHeadings[strings.ToLower(v.Status)]
	if !ok {
		heading = strings.ToUpper(v.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", heading)
	if v.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", v.Summary)
	}
	if v.Recommendation != "" {
		fmt.Fprintf(&b, "**Recommendation:** %s\n\n", v.Recommendation)
	}

	sort.SliceStable(v.Issues, func(i, j int) bool {
		return v.Issues[i].Confidence > v.Issues[j].Confidence
	})
	for _, is := range v.Issues {
		fmt.Fprintf(&b, "- **%s** (%.0f%%)", is.Type, is.Confidence*100)
		if is.Description != "" {
			fmt.Fprintf(&b, ": %s", is.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatToolCall describes a tool call for the activity log.
func FormatToolCall(name string, args map[string]any) string {
	if reason, ok := args["reason"].(string); ok && reason != "" {
		return fmt.Sprintf("%s (%s)", name, reason)
	}
	return name
}
