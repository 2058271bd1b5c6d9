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


package citeright

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
)

const reportText = "Overview of the year. Acme reported revenue of 5.2 billion dollars in 2020. Growth continued into Q1."

func TestAlignVerbatimAnswer(t *testing.T) {
	answer := "Acme reported revenue of 5.2 billion dollars in 2020."
	sources := []core.Source{{ID: "report", Text: reportText}}

	results, err := Align(context.Background(), answer, sources)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, core.StatusSupported, result.Status)
	require.NotEmpty(t, result.Citations)

	best := result.Citations[0]
	assert.Equal(t, "report", best.SourceID)
	assert.Equal(t, reportText[best.CharStart:best.CharEnd], best.Evidence)
	assert.Contains(t, best.Evidence, "5.2 billion dollars")
}

func TestAlignEmptySources(t *testing.T) {
	results, err := Align(context.Background(), "Two sentences. Here they are.", nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, core.StatusUnsupported, result.Status)
		assert.Empty(t, result.Citations)
	}
}

func TestAlignEmptyAnswer(t *testing.T) {
	results, err := Align(context.Background(), "   ", Sources("Some text."))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSources(t *testing.T) {
	sources := Sources("first", "second")
	require.Len(t, sources, 2)
	assert.Equal(t, "first", sources[0].Text)
	assert.Equal(t, "second", sources[1].Text)
	assert.Empty(t, sources[0].ID)
}

func TestCheckGroundedness(t *testing.T) {
	answer := "Acme reported revenue of 5.2 billion dollars in 2020. The CEO colonized the moon shortly afterwards."
	report, err := CheckGroundedness(context.Background(), answer, Sources(reportText))
	require.NoError(t, err)

	require.Len(t, report.Spans, 2)
	assert.Equal(t, 1, report.Supported)
	assert.Equal(t, 1, report.Unsupported+report.Partial)
	assert.Greater(t, report.Score, 0.0)
	assert.Less(t, report.Score, 1.0)
}

func TestIsGroundedAndHallucinated(t *testing.T) {
	ctx := context.Background()
	sources := Sources(reportText)

	grounded, err := IsGrounded(ctx, "Acme reported revenue of 5.2 billion dollars in 2020.", sources, 0.5)
	require.NoError(t, err)
	assert.True(t, grounded)

	hallucinated, err := IsHallucinated(ctx, "Acme invented a perpetual motion machine.", sources, 0.5)
	require.NoError(t, err)
	assert.True(t, hallucinated)
}

func TestAlignInvalidConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.WindowSentences = 0

	_, err := Align(context.Background(), "A sentence.", Sources("A sentence."),
		cite.WithConfig(cfg))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
