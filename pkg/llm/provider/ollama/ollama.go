// Package ollama implements a completion client for the Ollama /api/chat
// endpoint.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/utils"
)

const (
	providerName = "ollama"

	// maxErrorBodyLen caps the part of a non-JSON error body kept in
	// APIError.Message.
	maxErrorBodyLen = 512
)

// Client talks to an Ollama server.
type Client struct {
	chatURL string
	client  *http.Client
}

// New creates a client for the Ollama server at baseURL
// (e.g. "http://localhost:11434").
func New(baseURL string, client *http.Client) (*Client, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Client{
		chatURL: baseURL + "/api/chat",
		client:  client,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

// Complete issues a non-streamed chat request.
func (c *Client) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if body.Error != "" {
		return nil, &llm.APIError{Provider: providerName, Message: body.Error}
	}

	result := &llm.ChatResponse{
		Model:      body.Model,
		CreatedAt:  body.CreatedAt,
		Message:    llm.NewMessage(llm.RoleAssistant, body.Message.Content),
		StopReason: body.DoneReason,
	}
	if body.PromptEvalCount > 0 || body.EvalCount > 0 {
		result.Usage = &llm.Usage{
			PromptTokens:     body.PromptEvalCount,
			CompletionTokens: body.EvalCount,
			TotalTokens:      body.PromptEvalCount + body.EvalCount,
		}
	}

	return result, nil
}

// Stream issues a streamed chat request and returns once Ollama has answered
// with a 2xx status.
func (c *Client) Stream(ctx context.Context, req *llm.ChatRequest) (llm.ChunkStream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &chunkStream{
		body:    resp.Body,
		scanner: scanner,
	}, nil
}

func (c *Client) do(ctx context.Context, req *llm.ChatRequest, stream bool) (*http.Response, error) {
	payload := ollamaRequest{
		Model:    req.Model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)),
		Stream:   stream,
	}
	for _, msg := range req.Messages {
		payload.Messages = append(payload.Messages, ollamaMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", utils.UserAgent())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}

	return resp, nil
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	apiErr := &llm.APIError{
		Provider:   providerName,
		StatusCode: resp.StatusCode,
	}

	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
		return apiErr
	}

	// Non-JSON bodies are often HTML error pages from an intermediary.
	apiErr.Message = utils.Truncate(strings.TrimSpace(string(body)), maxErrorBodyLen)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// chunkStream adapts Ollama's NDJSON stream to llm.ChunkStream.
type chunkStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func (s *chunkStream) Next() (*llm.StreamChunk, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var frame ollamaResponse
		if err := json.Unmarshal(line, &frame); err != nil {
			return nil, fmt.Errorf("decode ollama stream chunk: %w", err)
		}

		if frame.Error != "" {
			return nil, &llm.APIError{Provider: providerName, Message: frame.Error}
		}

		choice := llm.StreamChoice{Delta: frame.Message.Content}
		if frame.Done {
			s.done = true
			choice.FinishReason = frame.DoneReason
			if choice.FinishReason == "" {
				choice.FinishReason = "stop"
			}
		}

		return &llm.StreamChunk{
			Model:   frame.Model,
			Choices: []llm.StreamChoice{choice},
		}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ollama stream: %w", err)
	}

	return nil, fmt.Errorf("ollama stream ended before completion: %w", io.ErrUnexpectedEOF)
}

func (s *chunkStream) Close() error {
	s.done = true
	return s.body.Close()
}
