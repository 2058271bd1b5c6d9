package openai

import "fmt"

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "claims": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "claim": {
            "type": "string"
          },
          "quote": {
            "type": "string"
          },
          "confidence": {
            "type": "integer",
            "minimum": 1,
            "maximum": 10
          }
        },
        "required": ["claim", "quote", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["claims"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Break the given answer into atomic factual claims and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- One verifiable fact per claim. Split compound statements into separate claims.
- Each claim must be a standalone sentence: resolve pronouns and implicit subjects so the claim is checkable without the rest of the answer.
- The quote field must be a verbatim fragment of the answer the claim is drawn from. Never paraphrase inside quote.
- Keep claims in the order they appear in the answer.
- Skip opinions, hedges, questions, and instructions; extract only statements of fact.
- Confidence is an integer from 1 (vague or heavily hedged) to 10 (stated outright). Rate how explicitly the answer commits to the claim.
- If the answer contains no checkable facts, return "claims": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "The Eiffel Tower, completed in 1889, is located in Paris."
Output:
{
  "claims": [
    {"claim":"The Eiffel Tower was completed in 1889.","quote":"The Eiffel Tower, completed in 1889","confidence":10},
    {"claim":"The Eiffel Tower is located in Paris.","quote":"is located in Paris","confidence":10}
  ]
}

Example (pronoun resolution):
Input: "Acme was founded in 2004. It employs around 500 people."
Output:
{
  "claims": [
    {"claim":"Acme was founded in 2004.","quote":"Acme was founded in 2004.","confidence":10},
    {"claim":"Acme employs around 500 people.","quote":"It employs around 500 people.","confidence":8}
  ]
}

Example (opinion skipped):
Input: "Go is a great language. It was released by Google in 2009."
Output:
{
  "claims": [
    {"claim":"Go was released by Google in 2009.","quote":"It was released by Google in 2009.","confidence":10}
  ]
}`

// buildSystemPrompt creates the system prompt with the response schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
}
