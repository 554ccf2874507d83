// Package poster sends the outbound love message through the posting
// API and classifies its failures. The API reports structured errors;
// the duplicate-content code gets its own type so the scheduler can
// retry quickly with a different candidate.
package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lovepool/lovebot/logger"
)

// DuplicateContentCode is the posting API's error code for a message
// identical to one posted recently.
const DuplicateContentCode = 187

// DefaultTemplate is the fixed message template; %s is the identity.
const DefaultTemplate = "@%s you are loved"

// APIError is a structured error returned by the posting API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("posting api error %d: %s", e.Code, e.Message)
}

// IsDuplicateContent reports whether err carries the duplicate
// content code.
func IsDuplicateContent(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == DuplicateContentCode
}

// Poster is the scheduler-side contract; satisfied by *Client and by
// test fakes.
type Poster interface {
	SendLove(ctx context.Context, identityID string) error
}

type Client struct {
	BaseURL    string
	Token      string
	Template   string
	DryRun     bool
	HTTPClient *http.Client
}

var _ Poster = (*Client)(nil)

type postRequest struct {
	Identity string `json:"identity"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Errors []APIError `json:"errors"`
}

// SendLove posts the love message addressed to the identity. In dry
// run mode it logs the message and reports success without touching
// the network.
func (c *Client) SendLove(ctx context.Context, identityID string) error {
	log := logger.FromContext(ctx)

	template := c.Template
	if len(template) == 0 {
		template = DefaultTemplate
	}
	message := fmt.Sprintf(template, identityID)

	if c.DryRun {
		log.Info("dry run, not posting", "identity", identityID, "message", message)
		return nil
	}

	body, err := json.Marshal(postRequest{Identity: identityID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(c.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var errResp errorResponse
	if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Errors) > 0 {
		apiErr := errResp.Errors[0]
		return &apiErr
	}

	return fmt.Errorf("posting message: status %d", resp.StatusCode)
}
