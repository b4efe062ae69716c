package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_ForwardsToAllHandlers(t *testing.T) {
	var a, b bytes.Buffer
	fan := NewFanout(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	logger := slog.New(fan)
	logger.Info("upload complete", "key", "backups/backup_1.txt")

	assert.Contains(t, a.String(), "upload complete")
	assert.Contains(t, b.String(), "backups/backup_1.txt")
}

func TestFanout_RespectsChildLevels(t *testing.T) {
	var debugOut, infoOut bytes.Buffer
	fan := NewFanout(
		slog.NewTextHandler(&debugOut, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoOut, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	require.True(t, fan.Enabled(context.Background(), slog.LevelDebug))

	slog.New(fan).Debug("part hashed")

	assert.Contains(t, debugOut.String(), "part hashed")
	assert.Empty(t, infoOut.String())
}

func TestFanout_WithAttrs(t *testing.T) {
	var out bytes.Buffer
	fan := NewFanout(slog.NewTextHandler(&out, nil))

	slog.New(fan).With("bucket", "archive").Info("probe")

	assert.Contains(t, out.String(), "bucket=archive")
}
