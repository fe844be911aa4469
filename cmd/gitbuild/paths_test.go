package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestPathsCommand(t *testing.T) {
	path, cfg := writeTestConfig(t, nil)
	url := "ssh://scm.example.com/box/www"

	tests := []struct {
		name  string
		args  []string
		want  []string
		avoid []string
	}{
		{
			name: "directories only",
			args: []string{"paths", url},
			want: []string{
				"repo:    " + filepath.Join(cfg.RepoDirectory, "scm.example.com", "box", "www"),
				"timings: " + filepath.Join(cfg.TimingsDirectory, "scm.example.com", "box", "www"),
			},
			avoid: []string{"timing: "},
		},
		{
			name: "timing file for job",
			args: []string{"paths", url, "--job", "QUnit"},
			want: []string{
				"timing:  " + filepath.Join(cfg.TimingsDirectory, "master", "scm.example.com", "box", "www", "QUnit.timing.json"),
			},
		},
		{
			name: "timing file on branch",
			args: []string{"paths", url, "--job", "QUnit", "--branch", "release"},
			want: []string{
				filepath.Join(cfg.TimingsDirectory, "release", "scm.example.com", "box", "www", "QUnit.timing.json"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--config", path, "--env-file", "")
			out, _, err := executeCmd(t, args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, a := range tt.avoid {
				assert.NotContains(t, out, a)
			}
		})
	}
}

func TestPathsCommandRequiresURL(t *testing.T) {
	path, _ := writeTestConfig(t, nil)
	_, _, err := executeCmd(t, "paths", "--config", path, "--env-file", "")
	assert.Error(t, err)
}
