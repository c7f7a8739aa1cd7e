// Package streamclient consumes the gateway's event streams. It is used by
// the idea and consult commands and understands the done marker and the
// in-band error event.
package streamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/sse"
	"github.com/papercomputeco/streamgate/pkg/utils"
)

// Visit is the body of a consultation request.
type Visit struct {
	PatientName string `json:"patient_name"`
	DateOfVisit string `json:"date_of_visit"`
	Notes       string `json:"notes"`
}

// Result is a completed stream.
type Result struct {
	// Text is the concatenation of all text events.
	Text string

	// Events counts the text events received.
	Events int
}

type Client struct {
	target     string
	token      string
	httpClient *http.Client
	raw        io.Writer
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRaw copies the raw event stream bytes to w as they arrive.
func WithRaw(w io.Writer) Option {
	return func(c *Client) {
		c.raw = w
	}
}

// New creates a client for the gateway at target (e.g. "http://localhost:8000").
func New(target string, opts ...Option) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing target: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("target must be an http(s) URL, got %q", target)
	}

	c := &Client{
		target:     strings.TrimRight(target, "/"),
		httpClient: http.DefaultClient,
		raw:        io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Idea streams a business idea, writing text to out as it arrives.
func (c *Client) Idea(ctx context.Context, out io.Writer) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target+"/api", nil)
	if err != nil {
		return nil, err
	}

	return c.stream(req, out)
}

// Consultation streams the summary of a visit, writing text to out as it
// arrives. It requires a token.
func (c *Client) Consultation(ctx context.Context, visit Visit, out io.Writer) (*Result, error) {
	body, err := json.Marshal(visit)
	if err != nil {
		return nil, fmt.Errorf("encoding visit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+"/api/consultation", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.stream(req, out)
}

func (c *Client) stream(req *http.Request, out io.Writer) (*Result, error) {
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", utils.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/event-stream" {
		return nil, fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	return consume(sse.NewTeeReader(resp.Body, c.raw), out)
}

// consume reads events until the done marker or an error event.
func consume(reader *sse.TeeReader, out io.Writer) (*Result, error) {
	var (
		text   strings.Builder
		result Result
	)

	for {
		ev, err := reader.Next()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedDisconnect, err)
		}
		if ev == nil {
			return nil, ErrUnexpectedDisconnect
		}

		switch {
		case ev.IsDone():
			result.Text = text.String()
			return &result, nil

		case ev.IsError():
			return nil, &StreamError{Detail: ev.ErrorDetail()}
		}

		text.WriteString(ev.Data)
		result.Events++
		if _, err := io.WriteString(out, ev.Data); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
	}
}

func parseHTTPError(resp *http.Response) error {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return httpErr
	}

	var errResp llm.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		httpErr.Message = errResp.Error
		httpErr.Details = errResp.Details
	} else {
		httpErr.Message = strings.TrimSpace(string(body))
	}

	return httpErr
}
