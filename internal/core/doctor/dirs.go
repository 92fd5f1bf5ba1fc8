package doctor

import (
	"context"
	"fmt"
	"os"
)

// Dir is a directory pl reads from, labelled by its setting name.
type Dir struct {
	Label string
	Path  string
}

// DirsCheck verifies that configured directories exist and are accessible.
type DirsCheck struct {
	name string
	dirs []Dir
}

// NewDirsCheck creates a new directories check.
func NewDirsCheck(name string, dirs []Dir) *DirsCheck {
	return &DirsCheck{name: name, dirs: dirs}
}

func (c *DirsCheck) Name() string {
	return c.name
}

func (c *DirsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if len(c.dirs) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "directories",
			Status: StatusPass,
			Detail: "none configured",
		})
		return result
	}

	for _, dir := range c.dirs {
		label := dir.Label
		if label == "" {
			label = dir.Path
		}

		info, err := os.Stat(dir.Path)
		switch {
		case os.IsNotExist(err):
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusWarn,
				Detail: fmt.Sprintf("%s does not exist", dir.Path),
			})
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fmt.Sprintf("inaccessible: %v", err),
			})
		case !info.IsDir():
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fmt.Sprintf("%s is not a directory", dir.Path),
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusPass,
				Detail: dir.Path,
			})
		}
	}

	return result
}
