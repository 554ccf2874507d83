// Package stream consumes the live sample stream and hands every
// observed identity reference to a handler. The stream is effectively
// unbounded; the consumer stops ingestion by cancelling the context
// it passed to Ingest.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lovepool/lovebot/logger"
)

// Handler receives each identity id observed on the stream. It is
// called from the ingestion goroutine, one event at a time.
type Handler func(ctx context.Context, identityID string)

// Sampler is the consumer-side contract; satisfied by *Client and by
// test fakes.
type Sampler interface {
	Ingest(ctx context.Context, h Handler) error
}

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

var _ Sampler = (*Client)(nil)

// sampleEvent is the subset of a stream event we care about. Events
// without an actor id are skipped.
type sampleEvent struct {
	Actor struct {
		ID string `json:"id"`
	} `json:"actor"`
}

// Ingest opens the sample stream and calls h for every event carrying
// an identity reference. It returns nil when ctx is cancelled and a
// wrapped error when the stream itself fails. It never reconnects on
// its own; retrying is the caller's decision.
func (c *Client) Ingest(ctx context.Context, h Handler) error {
	log := logger.FromContext(ctx)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/sample", nil)
	if err != nil {
		return fmt.Errorf("sample stream request: %w", err)
	}
	if len(c.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("sample stream connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sample stream status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev sampleEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Debug("skipping undecodable stream event", "err", err)
			continue
		}
		if len(ev.Actor.ID) == 0 {
			continue
		}

		h(ctx, ev.Actor.ID)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			// consumer told us to stop; the aborted read is expected
			return nil
		}
		return fmt.Errorf("sample stream read: %w", err)
	}

	if ctx.Err() != nil {
		return nil
	}

	log.Warn("sample stream closed by remote")
	return fmt.Errorf("sample stream closed")
}

const maxEventSize = 1024 * 1024
