package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *BotCmd {
	t.Helper()

	cmd := &BotCmd{}
	parser, err := kong.New(cmd,
		kong.Name("lovebot"),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cmd
}

func TestDefaults(t *testing.T) {
	cmd := parse(t, "once")

	assert.Equal(t, 5*time.Minute, cmd.Interval)
	assert.Equal(t, 250*time.Millisecond, cmd.RetryDelay)
	assert.Equal(t, int64(100), cmd.QueueSize)
	assert.Equal(t, 50, cmd.BufferSize)
	assert.Equal(t, 10, cmd.RecentLimit)
	assert.False(t, cmd.DryRun)
}

func TestEnvironmentConfig(t *testing.T) {
	t.Setenv("LOVEBOT_DATABASE_DSN", "user:pass@tcp(db:3306)/lovebot")
	t.Setenv("LOVEBOT_API_TOKEN", "sekrit")
	t.Setenv("LOVEBOT_DRY_RUN", "true")

	cmd := parse(t, "run")

	assert.Equal(t, "user:pass@tcp(db:3306)/lovebot", cmd.DatabaseDSN)
	assert.Equal(t, "sekrit", cmd.APIToken)
	assert.True(t, cmd.DryRun)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("LOVEBOT_API_TOKEN", "from-env")

	cmd := parse(t, "once", "--api-token", "from-flag", "--interval", "30s")

	assert.Equal(t, "from-flag", cmd.APIToken)
	assert.Equal(t, 30*time.Second, cmd.Interval)
}

func TestSchedulerWiring(t *testing.T) {
	cmd := parse(t, "once",
		"--interval", "1m",
		"--retry-delay", "100ms",
		"--queue-size", "7",
		"--buffer-size", "3",
		"--recent-limit", "2",
	)

	s := cmd.scheduler(nil)
	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, 100*time.Millisecond, s.RetryDelay)
	require.NotNil(t, s.Recent)

	s.Recent.Add("a")
	s.Recent.Add("b")
	s.Recent.Add("c")
	assert.Equal(t, 2, s.Recent.Len())
}

func TestStreamTokenFallsBackToAPIToken(t *testing.T) {
	t.Setenv("LOVEBOT_API_TOKEN", "shared")

	cmd := parse(t, "run")
	assert.Empty(t, cmd.StreamToken)
	// scheduler wiring uses the API token for the stream when no
	// dedicated stream token is configured; covered here through the
	// config values rather than by poking at the built clients
	assert.Equal(t, "shared", cmd.APIToken)
}
