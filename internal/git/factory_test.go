package git

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/config"
	"github.com/NicabarNimble/go-buildrepo/internal/progress"
	"github.com/NicabarNimble/go-buildrepo/internal/remote"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		BaseDirectory:     "/base",
		GitShallowClone:   true,
		GitPromptTimeout:  "5s",
		GitCommandTimeout: "2m",
	}
	cfg.MergeDefaults()
	spec := RemoteSpec{URL: "ssh://scm.example.com/box/www"}

	t.Run("defaults", func(t *testing.T) {
		s, err := New(cfg, spec, nil)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join("/base", "repos", "scm.example.com", "box", "www"), s.LocalDirectory())
		assert.Equal(t, filepath.Join("/base", "timings", "master", "scm.example.com", "box", "www", "QUnit.timing.json"), s.TimingFilePath("QUnit"))
		assert.True(t, s.shallow)
		assert.False(t, s.clean)
		assert.IsType(t, &command.ShellExecutor{}, s.local)
		assert.IsType(t, &progress.DefaultTracker{}, s.progress)

		driver, ok := s.remote.(*remote.Driver)
		require.True(t, ok)
		assert.Equal(t, 5*time.Second, driver.PromptTimeout)
		assert.Equal(t, 2*time.Minute, driver.CommandTimeout)
		assert.Same(t, cfg, driver.Policy)
	})

	t.Run("options", func(t *testing.T) {
		_, local := newFakes()
		tracker := &progress.DefaultTracker{}

		s, err := New(cfg, spec, tracker, WithClean(true), WithLocalExecutor(local))
		require.NoError(t, err)

		assert.True(t, s.clean)
		assert.Same(t, local, s.local)
		assert.Same(t, tracker, s.progress)
	})

	t.Run("invalid spec", func(t *testing.T) {
		_, err := New(cfg, RemoteSpec{}, nil)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})
}
