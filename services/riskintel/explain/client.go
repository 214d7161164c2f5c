// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/LatticeWorksAI/LatticeRisk/services/llm"
)

// ErrUnavailable wraps transport-level failures of the explanation model.
// Callers treat it as recoverable: the pipeline continues on deterministic
// scores and previously persisted explanations.
var ErrUnavailable = errors.New("explanation service unavailable")

const systemInstructions = "You are a risk evaluation assistant that predicts " +
	"category-wise risks based on watchlist data. Always output valid JSON with these keys: " +
	"category_scores (each value is {score: <0-100>, note: <textual reasoning>}), " +
	"category_explanations, and confidence. " +
	"The note field must summarize the reason for each risk score clearly.\n\n"

// Client sends the rendered payload to an LLM backend and parses the
// best-effort structured reply. One retry with a short backoff covers
// transient failures; rate limiting keeps a burst of refresh triggers from
// flooding the model endpoint.
type Client struct {
	llm     llm.LLMClient
	limiter *rate.Limiter
	backoff time.Duration
	timeout time.Duration
}

// NewClient builds a Client around an LLM backend.
func NewClient(backend llm.LLMClient) *Client {
	return &Client{
		llm:     backend,
		limiter: rate.NewLimiter(rate.Every(time.Second), 4),
		backoff: 2 * time.Second,
		timeout: 90 * time.Second,
	}
}

// Explain performs the single batched model round trip for one evaluation.
//
// Transport failures retry once after a short backoff and then surface as
// ErrUnavailable. A reply that is not parseable JSON is NOT an error: it
// degrades to an empty Response and the caller falls back silently.
// Partial category coverage is likewise normal; gap filling is the fusion
// engine's job, not ours.
func (c *Client) Explain(ctx context.Context, p Payload) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, errors.Join(ErrUnavailable, err)
	}

	prompt := systemInstructions + p.Prompt()
	params := llm.GenerationParams{
		Temperature: ptr(float32(0.2)),
		MaxTokens:   ptr(1024),
	}

	raw, err := c.generate(ctx, prompt, params)
	if err != nil {
		slog.Warn("Explanation model call failed, retrying once", "error", err)
		select {
		case <-time.After(c.backoff):
		case <-ctx.Done():
			return Response{}, errors.Join(ErrUnavailable, ctx.Err())
		}
		raw, err = c.generate(ctx, prompt, params)
		if err != nil {
			return Response{}, errors.Join(ErrUnavailable, err)
		}
	}

	resp := ParseModelOutput(raw)
	if resp.Empty() {
		slog.Warn("Explanation model returned no parseable JSON, using fallback explanations only")
	}
	return resp, nil
}

func (c *Client) generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.llm.Generate(callCtx, prompt, params)
}

func ptr[T any](v T) *T { return &v }
