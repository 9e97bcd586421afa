package analysis

import (
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/tool"
)

const promptHeader = `Analyze this 3D printer webcam frame. Detect any print failures:

Look for:
- Spaghetti (filament not adhering, creating tangled mess)
- Layer shifts (horizontal displacement between layers)
- Warping (corners lifting from bed)
- Stringing (thin wisps between parts)
- Bed adhesion failure (part detached from bed)
- Nozzle blob (material stuck to nozzle)

If the image alone is ambiguous, you may call the available device tools to check
temperatures, progress and state before deciding.
`

const fullContract = `
Respond in JSON:
{
    "status": "ok" | "warning" | "failure",
    "issues": [{"type": "...", "confidence": 0.0-1.0, "description": "..."}],
    "recommendation": "continue" | "pause" | "stop"
}`

const reducedContract = `
Respond in JSON:
{
    "status": "ok" | "warning" | "failure",
    "recommendation": "continue" | "pause" | "stop"
}`

// DefaultPrompt returns the analysis prompt for effort. LOW omits issue details.
func DefaultPrompt(effort models.Effort) string {
	if effort == models.EffortHigh {
		return promptHeader + fullContract
	}
	return promptHeader + reducedContract
}

// ResponseSchema returns the structured-output schema matching DefaultPrompt.
func ResponseSchema(effort models.Effort) *tool.Schema {
	zero, one := 0.0, 1.0

	schema := &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"status": {
				Type: tool.TypeString,
				Enum: []string{"ok", "warning", "failure"},
			},
			"recommendation": {
				Type: tool.TypeString,
				Enum: []string{"continue", "pause", "stop"},
			},
		},
		Required: []string{"status", "recommendation"},
	}

	if effort == models.EffortHigh {
		schema.Properties["issues"] = &tool.Schema{
			Type: tool.TypeArray,
			Items: &tool.Schema{
				Type: tool.TypeObject,
				Properties: map[string]*tool.Schema{
					"type":        {Type: tool.TypeString},
					"confidence":  {Type: tool.TypeNumber, Minimum: &zero, Maximum: &one},
					"description": {Type: tool.TypeString},
				},
				Required: []string{"type", "confidence", "description"},
			},
		}
		schema.Required = []string{"status", "issues", "recommendation"}
	}

	return schema
}
