package server

// Content is one item of a tool result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// CallResult is the payload of a tools/call response.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

func textResult(text string) CallResult {
	return CallResult{Content: []Content{{Type: "text", Text: text}}}
}

func jsonResult(v any) CallResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("encode result: " + err.Error())
	}
	return CallResult{Content: []Content{{Type: "text", Text: string(data), MIMEType: "application/json"}}}
}

func errorResult(text string) CallResult {
	return CallResult{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

// jsonErrorResult reports failures the way the analysis view expects: {"error": "..."}.
func jsonErrorResult(msg string, extra map[string]any) CallResult {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	res := jsonResult(body)
	res.IsError = true
	return res
}

func imageContent(data, mimeType string) Content {
	return Content{Type: "image", Data: data, MIMEType: mimeType}
}
