package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referralhub/internal/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "referralhub.log")
	l, err := New(config.LogConfig{
		Level:  "info",
		Format: "json",
		File:   config.LogFileConfig{Path: path, MaxSizeMB: 1},
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("referral code created")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "referral code created"))
	assert.False(t, strings.Contains(string(data), "dropped"))
}
