// Copyright 2025 AvaxML
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/avaxML/cite-right/ai"
)

// ClaimExtractor implements ai.ClaimExtractor using OpenAI-compatible chat APIs.
type ClaimExtractor struct {
	client        llms.Model
	minConfidence int
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// claim is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type claim struct {
	Claim      string `json:"claim"`
	Quote      string `json:"quote"`
	Confidence int    `json:"confidence"`
}

// analysis is the wrapper structure for the LLM's JSON response.
type analysis struct {
	Claims []claim `json:"claims"`
}

// newClaimExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newClaimExtractor(config *ai.Config) (*ClaimExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(tokenOrNone(config.APIKey)),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &ClaimExtractor{
		client:        client,
		minConfidence: config.MinConfidence,
		limiter:       limiter,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewClaimExtractor creates a new claim extractor using the provided configuration.
//
// Returns ai.ClaimExtractor interface to enforce abstraction.
func NewClaimExtractor(config *ai.Config) (ai.ClaimExtractor, error) {
	return newClaimExtractor(config)
}

// ExtractClaims breaks an answer into atomic factual claims using an LLM.
// Claims below the minimum confidence are dropped; the rest keep the order
// in which they appear in the answer.
func (e *ClaimExtractor) ExtractClaims(ctx context.Context, answer string) ([]ai.Claim, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return []ai.Claim{}, nil
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(answer),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result analysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := e.wait(ctx); err != nil {
			return nil, err
		}
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.Claim{}, nil
		}

		responseText := repairJSON(stripCodeFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Filter by confidence; answer order is preserved.
	extracted := make([]ai.Claim, 0, len(result.Claims))
	for _, c := range result.Claims {
		if c.Confidence < e.minConfidence {
			continue
		}
		extracted = append(extracted, ai.Claim{
			Text:       c.Claim,
			Quote:      c.Quote,
			Confidence: c.Confidence,
		})
	}

	e.logger.Debug("extracted claims",
		"total", len(result.Claims),
		"filtered", len(extracted))

	return extracted, nil
}

// wait blocks until the rate limiter admits one request.
func (e *ClaimExtractor) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// stripCodeFences removes the markdown fences some models wrap around
// JSON output despite JSON mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
