// Package text provides the default tokenizer and segmenters for citation
// alignment: a word-level tokenizer with numeric and currency
// normalization, a sentence segmenter with exact offsets, and an answer
// splitter producing paragraph- and sentence-indexed spans.
//
// All three are pluggable: anything satisfying the core.Tokenizer,
// core.Segmenter or core.AnswerSegmenter contract can replace them.
package text
