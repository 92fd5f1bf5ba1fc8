package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var errNoJSON = errors.New("no json object in output")

// composerJSON runs composer in dir and returns the JSON object from its
// output. composer exits non-zero when it has findings (audit) so the
// output is parsed regardless of the exit status.
func composerJSON(ctx context.Context, env Env, dir string, args ...string) ([]byte, error) {
	cmd := env.Config.Todo.ComposerCommand
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		fields = []string{"composer"}
	}

	argv := append(fields[1:len(fields):len(fields)], args...)
	out, runErr := env.Exec.RunDir(ctx, dir, fields[0], argv...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	data, err := extractJSONObject(out)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%s %s: %w", cmd, args[0], runErr)
		}
		return nil, fmt.Errorf("%s %s: %w", cmd, args[0], err)
	}
	return data, nil
}

// extractJSONObject trims warnings composer prints around the document.
func extractJSONObject(out []byte) ([]byte, error) {
	start := bytes.IndexByte(out, '{')
	end := bytes.LastIndexByte(out, '}')
	if start < 0 || end < start {
		return nil, errNoJSON
	}
	return out[start : end+1], nil
}

func hasComposerLock(dir string) bool {
	return fileExists(filepath.Join(dir, "composer.lock"))
}
