package cite

import (
	"github.com/avaxML/cite-right/align"
	"github.com/avaxML/cite-right/core"
)

// AlignMonitor provides hooks to observe an alignment call.
// Implement this interface to track intermediate stages per answer span.
type AlignMonitor interface {
	Start(spans []core.AnswerSpan, sourceCount int)
	AfterWindowing(passages []core.Passage)
	AfterEmbedding(spanVectors, passageVectors int)
	SpanStart(span core.AnswerSpan)
	AfterSelection(span core.AnswerSpan, candidates []Candidate)
	AfterAlignment(span core.AnswerSpan, alignments []align.Alignment)
	SpanFinish(result core.SpanResult)
	Finish(results []core.SpanResult)
}

// noopMonitor is a no-op implementation of AlignMonitor
type noopMonitor struct{}

var _ AlignMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ []core.AnswerSpan, _ int)                       {}
func (n *noopMonitor) AfterWindowing(_ []core.Passage)                        {}
func (n *noopMonitor) AfterEmbedding(_, _ int)                                {}
func (n *noopMonitor) SpanStart(_ core.AnswerSpan)                            {}
func (n *noopMonitor) AfterSelection(_ core.AnswerSpan, _ []Candidate)        {}
func (n *noopMonitor) AfterAlignment(_ core.AnswerSpan, _ []align.Alignment)  {}
func (n *noopMonitor) SpanFinish(_ core.SpanResult)                           {}
func (n *noopMonitor) Finish(_ []core.SpanResult)                             {}
