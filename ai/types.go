package ai

// Claim is one atomic factual statement extracted from a generated answer.
// Each claim stands alone: it can be checked against reference sources
// without the rest of the answer.
type Claim struct {
	// Text restates the claim as a single standalone sentence.
	// Example: "The Eiffel Tower was completed in 1889."
	Text string

	// Quote is the answer fragment the claim was drawn from, verbatim.
	// Empty when the extractor cannot reproduce the exact fragment.
	Quote string

	// Confidence is a score from 1-10 indicating how clearly the answer
	// commits to this claim. Higher scores = more explicit statements.
	Confidence int
}
