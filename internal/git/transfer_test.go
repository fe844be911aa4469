package git

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/progress"
)

func TestParseTransfer(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   transferStats
		found  bool
	}{
		{
			name:   "no progress",
			output: "Cloning into '/repos/x'...\ndone.\n",
		},
		{
			name: "carriage return updates",
			output: "Cloning into 'www'...\r\n" +
				"remote: Counting objects: 10, done.\r\n" +
				"Receiving objects:  50% (26480/52960), 120.00 MiB | 70.00 MiB/s\r" +
				"Receiving objects: 100% (52960/52960), 298.63 MiB | 81.39 MiB/s, done.\r\n" +
				"Resolving deltas:  10% (41/412)\r" +
				"Resolving deltas: 100% (412/412), done.\r\n",
			want:  transferStats{objects: 52960, objectsTotal: 52960, deltas: 412, deltasTotal: 412},
			found: true,
		},
		{
			name:   "partial transfer",
			output: "Receiving objects:  67% (35484/52960), 236.76 MiB | 78.92 MiB/s",
			want:   transferStats{objects: 35484, objectsTotal: 52960},
			found:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseTransfer(tt.output)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupBuildReportsTransfer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scm.example.com", "box", "www")
	remote, local := newFakes()
	remote.results = map[string]command.CommandResult{
		"git clone": {Output: "Receiving objects: 100% (7/7), done.\r\n"},
	}

	tracker := &progress.DefaultTracker{}
	session, err := NewSession(SessionOptions{
		Spec:           RemoteSpec{URL: "ssh://scm.example.com/box/www"},
		LocalDirectory: dir,
		Remote:         remote,
		Local:          local,
		Progress:       tracker,
	})
	require.NoError(t, err)

	_, err = session.SetupBuild(context.Background())
	require.NoError(t, err)

	var clone *progress.Operation
	for _, op := range tracker.History {
		if op.Name == "clone ssh://scm.example.com/box/www" {
			clone = op
		}
	}
	require.NotNil(t, clone)
	assert.Equal(t, int64(7), clone.LastCurrent)
	assert.Equal(t, int64(7), clone.LastTotal)
}
