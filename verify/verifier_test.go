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


package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/ai/mock"
	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
)

const reportText = "The Acme plant opened in 1998. It produces solar panels. Output doubled in 2004."

func newTestVerifier(t *testing.T, extractor ai.ClaimExtractor, opts ...Option) *Verifier {
	t.Helper()

	aligner, err := cite.New(cite.WithConfig(core.NewConfig(
		core.WithBackend(core.BackendReference),
	)))
	require.NoError(t, err)
	t.Cleanup(aligner.Release)

	verifier, err := New(extractor, aligner, opts...)
	require.NoError(t, err)
	return verifier
}

func claimsExtractor(claims ...ai.Claim) *mock.MockClaimExtractor {
	extractor := mock.NewMockClaimExtractor()
	extractor.ExtractClaimsFunc = func(ctx context.Context, answer string) ([]ai.Claim, error) {
		return claims, nil
	}
	return extractor
}

func TestNew(t *testing.T) {
	t.Run("nil extractor", func(t *testing.T) {
		aligner, err := cite.New()
		require.NoError(t, err)
		defer aligner.Release()

		_, err = New(nil, aligner)
		assert.ErrorIs(t, err, ErrNoExtractor)
	})

	t.Run("nil aligner", func(t *testing.T) {
		_, err := New(mock.NewMockClaimExtractor(), nil)
		assert.ErrorIs(t, err, ErrNoAligner)
	})
}

func TestVerify(t *testing.T) {
	sources := []core.Source{{ID: "acme-report", Text: reportText}}

	t.Run("classifies claims and keeps extraction order", func(t *testing.T) {
		extractor := claimsExtractor(
			ai.Claim{Text: "The Acme plant opened in 1998.", Quote: "opened in 1998", Confidence: 9},
			ai.Claim{Text: "The plant is on Mars.", Quote: "on Mars", Confidence: 7},
			ai.Claim{Text: "Dogs bark loudly.", Quote: "bark loudly", Confidence: 5},
		)
		verifier := newTestVerifier(t, extractor)

		report, err := verifier.Verify(context.Background(), "ignored by the mock", sources)
		require.NoError(t, err)
		require.Len(t, report.Claims, 3)

		first := report.Claims[0]
		assert.Equal(t, "The Acme plant opened in 1998.", first.Claim.Text)
		assert.Equal(t, "opened in 1998", first.Claim.Quote)
		assert.Equal(t, core.StatusSupported, first.Status)
		require.NotEmpty(t, first.Citations)
		assert.Equal(t, "acme-report", first.Citations[0].SourceID)
		assert.Equal(t, "The Acme plant opened in 1998", first.Citations[0].Evidence)

		second := report.Claims[1]
		assert.Equal(t, core.StatusPartial, second.Status)
		require.NotEmpty(t, second.Citations)
		assert.InDelta(t, 0.4, second.Citations[0].Components[core.ComponentAnswerCoverage], 1e-12)

		third := report.Claims[2]
		assert.Equal(t, core.StatusUnsupported, third.Status)
		assert.Empty(t, third.Citations)

		assert.InDelta(t, 1.0/3.0, report.SupportedRatio, 1e-12)
		assert.False(t, report.AllSupported)
	})

	t.Run("all claims supported", func(t *testing.T) {
		extractor := claimsExtractor(
			ai.Claim{Text: "The Acme plant opened in 1998.", Confidence: 9},
		)
		verifier := newTestVerifier(t, extractor)

		report, err := verifier.Verify(context.Background(), "answer", sources)
		require.NoError(t, err)

		assert.Equal(t, 1.0, report.SupportedRatio)
		assert.True(t, report.AllSupported)
	})

	t.Run("order survives concurrent verification", func(t *testing.T) {
		var claims []ai.Claim
		for i := 0; i < 4; i++ {
			claims = append(claims,
				ai.Claim{Text: "The Acme plant opened in 1998."},
				ai.Claim{Text: "Dogs bark loudly."},
			)
		}
		verifier := newTestVerifier(t, claimsExtractor(claims...), WithParallelism(3))

		report, err := verifier.Verify(context.Background(), "answer", sources)
		require.NoError(t, err)
		require.Len(t, report.Claims, 8)

		for i, result := range report.Claims {
			if i%2 == 0 {
				assert.Equal(t, core.StatusSupported, result.Status, "claim %d", i)
			} else {
				assert.Equal(t, core.StatusUnsupported, result.Status, "claim %d", i)
			}
		}
		assert.Equal(t, 0.5, report.SupportedRatio)
	})

	t.Run("serial fallback for zero parallelism", func(t *testing.T) {
		extractor := claimsExtractor(
			ai.Claim{Text: "The Acme plant opened in 1998."},
			ai.Claim{Text: "Dogs bark loudly."},
		)
		verifier := newTestVerifier(t, extractor, WithParallelism(0))

		report, err := verifier.Verify(context.Background(), "answer", sources)
		require.NoError(t, err)
		assert.Equal(t, 0.5, report.SupportedRatio)
	})

	t.Run("default extractor splits sentences", func(t *testing.T) {
		verifier := newTestVerifier(t, mock.NewMockClaimExtractor())

		answer := "The Acme plant opened in 1998. Dogs bark loudly."
		report, err := verifier.Verify(context.Background(), answer, sources)
		require.NoError(t, err)
		require.Len(t, report.Claims, 2)

		assert.Contains(t, report.Claims[0].Claim.Text, "Acme")
		assert.Equal(t, core.StatusSupported, report.Claims[0].Status)
		assert.Equal(t, core.StatusUnsupported, report.Claims[1].Status)
	})

	t.Run("no claims is trivially verified", func(t *testing.T) {
		verifier := newTestVerifier(t, claimsExtractor())

		report, err := verifier.Verify(context.Background(), "", sources)
		require.NoError(t, err)

		assert.Empty(t, report.Claims)
		assert.Equal(t, 1.0, report.SupportedRatio)
		assert.True(t, report.AllSupported)
	})

	t.Run("extractor error aborts", func(t *testing.T) {
		extractor := mock.NewMockClaimExtractor()
		extractor.ExtractClaimsFunc = func(ctx context.Context, answer string) ([]ai.Claim, error) {
			return nil, errors.New("extractor offline")
		}
		verifier := newTestVerifier(t, extractor)

		_, err := verifier.Verify(context.Background(), "answer", sources)
		assert.ErrorContains(t, err, "extractor offline")
	})

	t.Run("alignment error aborts", func(t *testing.T) {
		extractor := claimsExtractor(ai.Claim{Text: "The Acme plant opened in 1998."})
		verifier := newTestVerifier(t, extractor)

		bad := []core.Source{{ID: "bad", Text: reportText, DocCharStart: -1}}
		_, err := verifier.Verify(context.Background(), "answer", bad)
		assert.ErrorIs(t, err, core.ErrNegativeOffset)
	})
}
