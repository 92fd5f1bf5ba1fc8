package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCheck_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl.yml")

	result := NewConfigCheck(path, nil).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "not found")
}

func TestConfigCheck_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl.yml")
	require.NoError(t, os.WriteFile(path, []byte("settings: {}\n"), 0o644))

	result := NewConfigCheck(path, nil).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, StatusPass, result.Items[1].Status)
}

func TestConfigCheck_FieldErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl.yml")
	require.NoError(t, os.WriteFile(path, []byte("settings: {}\n"), 0o644))

	var b criterio.FieldErrorsBuilder
	b = b.Append("todo.workers", errors.New("must be at least 1"))
	b = b.Append("todo.schedule.cron", errors.New("expected 5 fields"))

	result := NewConfigCheck(path, b.ToError()).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, "todo.workers", result.Items[1].Label)
	assert.Equal(t, StatusFail, result.Items[1].Status)
	assert.Equal(t, "todo.schedule.cron", result.Items[2].Label)
}

func TestConfigCheck_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl.yml")
	require.NoError(t, os.WriteFile(path, []byte("settings: {}\n"), 0o644))

	result := NewConfigCheck(path, errors.New("parse settings: yaml: line 3")).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, "settings", result.Items[1].Label)
	assert.Equal(t, StatusFail, result.Items[1].Status)
	assert.Contains(t, result.Items[1].Detail, "yaml")
}
