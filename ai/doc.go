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


// Package ai provides abstractions for the AI services cite-right uses.
//
// This package defines interfaces for AI operations including text
// embeddings and claim extraction. It follows the dependency inversion
// principle, allowing the alignment engine and business logic to depend on
// abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - ClaimExtractor: Breaks answers into checkable factual claims
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/hugot: Local ONNX embedding pipeline without network I/O
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockClaimExtractor) return CONCRETE types so tests can inject
// behavior and assert call counts.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, passages)
//	claims, err := provider.ClaimExtractor().ExtractClaims(ctx, answer)
//
// Callers that embed the same text repeatedly can wrap any Embedder in a
// CachedEmbedder to memoize vectors in memory:
//
//	embedder := ai.NewCachedEmbedder(provider.Embedder(), 10*time.Minute)
package ai
