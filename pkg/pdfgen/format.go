package pdfgen

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// formatContent re-indents structured data so the rendered page stays
// readable; anything else passes through untouched. Parse failures fall
// back to the original content.
func formatContent(content, fileType string) string {
	switch fileType {
	case "json":
		return formatJSON(content)
	case "yaml", "yml":
		return formatYAML(content)
	default:
		return content
	}
}

func formatJSON(content string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}

func formatYAML(content string) string {
	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		return content
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return content
	}
	return string(out)
}
