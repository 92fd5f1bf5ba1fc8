package doctor

import (
	"context"
	"os/exec"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// Tool is an external program pl shells out to.
type Tool struct {
	Name     string
	Required bool
	// UsedFor explains what breaks without the tool.
	UsedFor string
}

// DefaultTools are the programs the todo checks invoke.
func DefaultTools(composer string) []Tool {
	if composer == "" {
		composer = "composer"
	}
	return []Tool{
		{Name: "git", Required: true, UsedFor: "uncommitted work check"},
		{Name: composer, UsedFor: "security and version checks"},
		{Name: "crontab", UsedFor: "backup schedule check and todo schedule"},
		{Name: "ddev", UsedFor: "site management"},
		{Name: "df", UsedFor: "disk usage check"},
		{Name: "du", UsedFor: "disk usage check"},
	}
}

// ToolsCheck verifies that external tools are available on $PATH.
type ToolsCheck struct {
	tools []Tool
}

// NewToolsCheck creates a new tools check.
func NewToolsCheck(tools []Tool) *ToolsCheck {
	return &ToolsCheck{tools: tools}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, tool := range c.tools {
		path, err := lookPathFunc(tool.Name)
		if err == nil {
			result.Items = append(result.Items, CheckItem{
				Label:  tool.Name,
				Status: StatusPass,
				Detail: path,
			})
			continue
		}

		status := StatusWarn
		if tool.Required {
			status = StatusFail
		}
		detail := "not found on PATH"
		if tool.UsedFor != "" {
			detail += " (required for " + tool.UsedFor + ")"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  tool.Name,
			Status: status,
			Detail: detail,
		})
	}

	return result
}
