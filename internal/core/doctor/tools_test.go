package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsCheck_AllPresent(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	}

	check := NewToolsCheck(DefaultTools(""))
	result := check.Run(context.Background())

	assert.Equal(t, "Tools", result.Name)
	require.Len(t, result.Items, 6)

	assert.Equal(t, "git", result.Items[0].Label)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "/usr/bin/git", result.Items[0].Detail)

	assert.Equal(t, "composer", result.Items[1].Label)
	assert.Equal(t, StatusPass, result.Items[1].Status)
}

func TestToolsCheck_GitMissing(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		if file == "git" {
			return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
		}
		return "/usr/bin/" + file, nil
	}

	check := NewToolsCheck(DefaultTools("composer"))
	result := check.Run(context.Background())

	require.Len(t, result.Items, 6)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Equal(t, "git", result.Items[0].Label)
	assert.Equal(t, StatusPass, result.Items[1].Status)
}

func TestToolsCheck_OptionalMissing(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		if file == "crontab" {
			return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
		}
		return "/usr/bin/" + file, nil
	}

	check := NewToolsCheck([]Tool{{Name: "git", Required: true}, {Name: "crontab", UsedFor: "backup schedule check"}})
	result := check.Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, StatusWarn, result.Items[1].Status)
	assert.Equal(t, "not found on PATH (required for backup schedule check)", result.Items[1].Detail)
}
