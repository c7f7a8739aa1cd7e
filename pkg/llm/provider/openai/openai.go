// Package openai implements a completion client for OpenAI-compatible chat
// completion APIs, including Azure OpenAI "v1" endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/streamgate/pkg/llm"
	"github.com/papercomputeco/streamgate/pkg/sse"
	"github.com/papercomputeco/streamgate/pkg/utils"
)

const (
	providerName = "openai"

	// maxErrorBodyLen caps the part of a non-JSON error body kept in
	// APIError.Message.
	maxErrorBodyLen = 512
)

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	apiKey  string
	chatURL string
	client  *http.Client
}

// New creates a client for the API rooted at baseURL
// (e.g. "https://api.openai.com/v1").
func New(baseURL, apiKey string, client *http.Client) (*Client, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Client{
		apiKey:  apiKey,
		chatURL: baseURL + "/chat/completions",
		client:  client,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

// Complete issues a non-streamed completion.
func (c *Client) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}

	if len(body.Choices) == 0 {
		return nil, errors.New("openai response contained no choices")
	}

	result := &llm.ChatResponse{
		Model:      body.Model,
		Message:    llm.NewMessage(llm.RoleAssistant, body.Choices[0].Message.Content),
		StopReason: body.Choices[0].FinishReason,
	}
	if body.Created > 0 {
		result.CreatedAt = time.Unix(body.Created, 0)
	}
	if body.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     body.Usage.PromptTokens,
			CompletionTokens: body.Usage.CompletionTokens,
			TotalTokens:      body.Usage.TotalTokens,
		}
	}

	return result, nil
}

// Stream issues a streamed completion. It returns once the upstream has
// answered with a 2xx status, so connection and authentication failures are
// reported here rather than from the returned stream.
func (c *Client) Stream(ctx context.Context, req *llm.ChatRequest) (llm.ChunkStream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return &chunkStream{
		body:   resp.Body,
		reader: sse.NewReader(resp.Body),
	}, nil
}

func (c *Client) do(ctx context.Context, req *llm.ChatRequest, stream bool) (*http.Response, error) {
	payload := openaiRequest{
		Model:    req.Model,
		Messages: make([]openaiMessage, 0, len(req.Messages)),
		Stream:   stream,
	}
	for _, msg := range req.Messages {
		payload.Messages = append(payload.Messages, openaiMessage{
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
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
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

	var parsed openaiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Type = parsed.Error.Type
		apiErr.Message = parsed.Error.Message
		return apiErr
	}

	// Non-JSON bodies are often HTML error pages from an intermediary.
	apiErr.Message = utils.Truncate(strings.TrimSpace(string(body)), maxErrorBodyLen)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// chunkStream adapts an SSE body of chat.completion.chunk frames to
// llm.ChunkStream.
type chunkStream struct {
	body   io.ReadCloser
	reader *sse.TeeReader

	// finished is set once any choice reported a finish_reason. Some
	// compatible servers end the body right after it without "[DONE]".
	finished bool
	done     bool
}

func (s *chunkStream) Next() (*llm.StreamChunk, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		ev, err := s.reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading openai stream: %w", err)
		}

		if ev == nil {
			if s.finished {
				s.done = true
				return nil, io.EOF
			}
			return nil, fmt.Errorf("openai stream ended before completion: %w", io.ErrUnexpectedEOF)
		}

		if ev.IsDone() {
			s.done = true
			return nil, io.EOF
		}

		if strings.TrimSpace(ev.Data) == "" {
			continue
		}

		var frame openaiStreamChunk
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			return nil, fmt.Errorf("decode openai stream chunk: %w", err)
		}

		if frame.Error != nil {
			return nil, &llm.APIError{
				Provider: providerName,
				Type:     frame.Error.Type,
				Message:  frame.Error.Message,
			}
		}

		chunk := &llm.StreamChunk{
			ID:      frame.ID,
			Model:   frame.Model,
			Choices: make([]llm.StreamChoice, 0, len(frame.Choices)),
		}
		for _, choice := range frame.Choices {
			converted := llm.StreamChoice{Index: choice.Index}
			if choice.Delta.Content != nil {
				converted.Delta = *choice.Delta.Content
			}
			if choice.FinishReason != nil && *choice.FinishReason != "" {
				converted.FinishReason = *choice.FinishReason
				s.finished = true
			}
			chunk.Choices = append(chunk.Choices, converted)
		}

		return chunk, nil
	}
}

func (s *chunkStream) Close() error {
	s.done = true
	return s.body.Close()
}
