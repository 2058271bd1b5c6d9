package core

// StrictConfig favors precision: citations must cover most of the answer
// span and weak alignments are rejected outright.
func StrictConfig() Config {
	return NewConfig(
		WithTopK(2),
		WithMinAlignmentScore(0.3),
		WithMinAnswerCoverage(0.4),
		WithSupportedAnswerCoverage(0.75),
		WithAllowEmbeddingOnly(false),
	)
}

// PermissiveConfig favors recall: low thresholds, more citations per span
// and embedding-only evidence when alignment finds nothing.
func PermissiveConfig() Config {
	return NewConfig(
		WithTopK(5),
		WithMinAnswerCoverage(0.1),
		WithSupportedAnswerCoverage(0.5),
		WithAllowEmbeddingOnly(true),
		WithMinEmbeddingSimilarity(0.25),
	)
}

// FastConfig trades recall for latency: small candidate caps and a single
// citation per span.
func FastConfig() Config {
	return NewConfig(
		WithTopK(1),
		WithCandidateCaps(50, 50, 100),
	)
}

// BalancedConfig is an alias for the defaults.
func BalancedConfig() Config {
	return DefaultConfig()
}

// PresetConfig returns the named preset: "strict", "permissive", "fast" or
// "balanced". Unknown names return false.
func PresetConfig(name string) (Config, bool) {
	switch name {
	case "strict":
		return StrictConfig(), true
	case "permissive":
		return PermissiveConfig(), true
	case "fast":
		return FastConfig(), true
	case "balanced", "default":
		return BalancedConfig(), true
	}
	return Config{}, false
}
