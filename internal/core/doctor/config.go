package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/pl/internal/core/config"
)

// ConfigCheck reports whether the configuration file exists, is writable
// and loaded without validation errors.
type ConfigCheck struct {
	path    string
	loadErr error
}

// NewConfigCheck creates a config check. loadErr is the error config.Load
// returned for path, if any.
func NewConfigCheck(path string, loadErr error) *ConfigCheck {
	return &ConfigCheck{path: path, loadErr: loadErr}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if err := config.ValidateFile(c.path); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			err = fieldErrs[0].Err
		}

		status := StatusFail
		detail := err.Error()
		if errors.Is(err, config.ErrConfigMissing) {
			detail = fmt.Sprintf("%s not found", c.path)
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: status,
			Detail: detail,
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "config file",
		Status: StatusPass,
		Detail: c.path,
	})

	if c.loadErr != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(c.loadErr, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Items = append(result.Items, CheckItem{
					Label:  fe.Field,
					Status: StatusFail,
					Detail: fe.Err.Error(),
				})
			}
			return result
		}

		result.Items = append(result.Items, CheckItem{
			Label:  "settings",
			Status: StatusFail,
			Detail: c.loadErr.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "settings",
		Status: StatusPass,
		Detail: "valid",
	})
	return result
}
