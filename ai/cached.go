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


package ai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/avaxML/cite-right/core"
)

// CachedEmbedder decorates an Embedder with an in-memory TTL cache so that
// identical texts are embedded once. Overlapping passage windows repeat a
// lot of text across calls, which makes the hit rate high in practice.
//
// The alignment engine never caches on its own; callers opt in by wrapping
// their embedder. Keys are content fingerprints, so the cache survives only
// as long as the process and never touches disk.
type CachedEmbedder struct {
	inner Embedder
	cache *gocache.Cache
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with a cache holding vectors for ttl.
// A non-positive ttl keeps entries for the life of the process.
func NewCachedEmbedder(inner Embedder, ttl time.Duration) *CachedEmbedder {
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &CachedEmbedder{
		inner: inner,
		cache: gocache.New(ttl, cleanup),
	}
}

// EmbedText returns the cached vector for text or embeds and stores it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]float32), nil
	}
	vector, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, vector)
	return vector, nil
}

// EmbedTexts serves what it can from the cache and embeds the rest in one
// batch, preserving input order.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	missing := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if cached, ok := c.cache.Get(cacheKey(text)); ok {
			out[i] = cached.([]float32)
			continue
		}
		missing = append(missing, text)
		positions = append(positions, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(missing))
	}
	for i, vector := range vectors {
		out[positions[i]] = vector
		c.cache.SetDefault(cacheKey(missing[i]), vector)
	}
	return out, nil
}

func cacheKey(text string) string {
	return strconv.FormatUint(uint64(core.ContentIDOf(text)), 16)
}
