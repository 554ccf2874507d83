package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lovepool/lovebot/botdb"
	"github.com/lovepool/lovebot/poster"
	"github.com/lovepool/lovebot/queue"
	"github.com/lovepool/lovebot/recent"
	"github.com/lovepool/lovebot/scheduler"
	"github.com/lovepool/lovebot/stream"
)

// BotCmd is the kong command tree for the lovebot binary. Credentials
// and endpoints come from the environment; timing knobs have the
// defaults the bot has always run with.
type BotCmd struct {
	Run     RunCmd     `cmd:"" help:"Run the love loop continuously"`
	Once    OnceCmd    `cmd:"" help:"Run a single cycle and exit"`
	Setup   SetupCmd   `cmd:"" help:"Create the database schema"`
	Version VersionCmd `cmd:"" help:"Print version and build information"`

	DatabaseDSN string `name:"database-dsn" env:"LOVEBOT_DATABASE_DSN" help:"MySQL DSN for the identity store"`
	APIURL      string `name:"api-url" env:"LOVEBOT_API_URL" help:"Posting API base URL"`
	StreamURL   string `name:"stream-url" env:"LOVEBOT_STREAM_URL" help:"Sample stream base URL"`
	APIToken    string `name:"api-token" env:"LOVEBOT_API_TOKEN" help:"Posting API credential"`
	StreamToken string `name:"stream-token" env:"LOVEBOT_STREAM_TOKEN" help:"Sample stream credential (defaults to the API credential)"`
	DryRun      bool   `name:"dry-run" env:"LOVEBOT_DRY_RUN" help:"Log instead of posting"`

	Interval    time.Duration `name:"interval" default:"5m" help:"Delay between cycles"`
	RetryDelay  time.Duration `name:"retry-delay" default:"250ms" help:"Delay after a duplicate content failure"`
	QueueSize   int64         `name:"queue-size" default:"100" help:"Refill the pool when it is at or below this size"`
	BufferSize  int           `name:"buffer-size" default:"50" help:"Sample events consumed per refill"`
	RecentLimit int           `name:"recent-limit" default:"10" help:"Recently selected identities kept out of selection"`
}

// AfterApply makes the root command's shared configuration available
// to the subcommand Run methods.
func (cmd *BotCmd) AfterApply(kctx *kong.Context) error {
	kctx.Bind(cmd)
	return nil
}

func (cmd *BotCmd) openDB(ctx context.Context) (*sql.DB, error) {
	if len(cmd.DatabaseDSN) == 0 {
		return nil, fmt.Errorf("database DSN is required (LOVEBOT_DATABASE_DSN)")
	}
	return botdb.OpenDB(ctx, cmd.DatabaseDSN)
}

func (cmd *BotCmd) scheduler(db *botdb.Queries) *scheduler.Scheduler {
	streamToken := cmd.StreamToken
	if len(streamToken) == 0 {
		streamToken = cmd.APIToken
	}

	sampler := &stream.Client{
		BaseURL:    cmd.StreamURL,
		Token:      streamToken,
		HTTPClient: stream.NewHTTPClient(),
	}

	q := queue.New(db, sampler)
	q.QueueSize = cmd.QueueSize
	q.BufferSize = cmd.BufferSize

	p := &poster.Client{
		BaseURL: cmd.APIURL,
		Token:   cmd.APIToken,
		DryRun:  cmd.DryRun,
	}

	s := scheduler.New(db, q, p, recent.New(cmd.RecentLimit))
	s.Interval = cmd.Interval
	s.RetryDelay = cmd.RetryDelay
	return s
}
