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


// Package hugot provides a local embedder backed by ONNX
// feature-extraction models. After the model is on disk no network I/O
// happens, which makes it the right choice for offline or air-gapped
// alignment runs.
package hugot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	knights "github.com/knights-analytics/hugot"

	"github.com/avaxML/cite-right/ai"
)

// Config configures the local embedder.
type Config struct {
	// ModelPath points at an ONNX model directory already on disk.
	// When empty, ModelName is downloaded into ModelDir.
	ModelPath string

	// ModelName is the Hugging Face model to fetch when ModelPath is empty.
	// Default: "sentence-transformers/all-MiniLM-L6-v2" (384 dimensions).
	ModelName string

	// ModelDir is where downloaded models are stored. Default: "./models".
	ModelDir string
}

// Embedder implements ai.Embedder with a local feature-extraction
// pipeline. The underlying pipeline is not reentrant, so calls are
// serialized; wrap in an ai.CachedEmbedder when the same texts recur.
type Embedder struct {
	mu      sync.Mutex
	embed   func(texts []string) ([][]float32, error)
	destroy func() error
	logger  *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder loads (downloading if necessary) the configured model and
// builds the extraction pipeline. Call Close to free the session.
func NewEmbedder(cfg Config) (*Embedder, error) {
	modelPath := cfg.ModelPath
	if modelPath == "" {
		var err error
		modelPath, err = prepareModel(cfg.ModelName, cfg.ModelDir)
		if err != nil {
			return nil, err
		}
	}

	session, err := knights.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	pipeline, err := knights.NewPipeline(session, knights.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "cite-right-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create extraction pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create extraction pipeline: %w", err)
	}

	return &Embedder{
		embed: func(texts []string) ([][]float32, error) {
			result, err := pipeline.RunPipeline(texts)
			if err != nil {
				return nil, fmt.Errorf("failed to generate embeddings: %w", err)
			}
			return result.Embeddings, nil
		},
		destroy: session.Destroy,
		logger:  slog.Default().With("component", "hugot-embedder"),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		e.logger.Warn("pipeline returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embed(texts)
}

// Close destroys the underlying session. The Embedder must not be used
// after Close.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroy == nil {
		return nil
	}
	err := e.destroy()
	e.destroy = nil
	e.embed = func([]string) ([][]float32, error) {
		return nil, fmt.Errorf("embedder is closed")
	}
	return err
}
