package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/todo"
)

// Exit codes.
const (
	exitConfig = 1
	exitUsage  = 2
)

// usageError reports bad arguments.
func usageError(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), exitUsage)
}

// onUsageError converts flag parsing failures into usage exits.
func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return cli.Exit(err.Error(), exitUsage)
}

// configError reports an unusable configuration.
func configError(err error) error {
	return cli.Exit(err.Error(), exitConfig)
}

// idArg returns the single item id argument of c.
func idArg(c *cli.Command) (string, error) {
	if c.NArg() != 1 {
		return "", usageError("expected exactly one item id, e.g. %s SEC-001", c.FullName())
	}
	id := todo.NormalizeID(c.Args().First())
	if _, _, err := todo.ParseID(id); err != nil {
		return "", usageError("%v", err)
	}
	return id, nil
}

// mutationError classifies an error from a mutating service call.
func mutationError(err error) error {
	if errors.Is(err, todo.ErrInvalidID) {
		return usageError("%v", err)
	}
	return cli.Exit(err.Error(), exitConfig)
}
