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


package openai

import "regexp"

var (
	// `{ claim":` or `, confidence":` — key lost its opening quote.
	missingOpenQuoteRE = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z_]*)("\s*:)`)

	// `"claim:` — key lost its closing quote.
	missingCloseQuoteRE = regexp.MustCompile(`([{,]\s*")([A-Za-z_][A-Za-z_]*)(\s*:)`)

	trailingCommaRE = regexp.MustCompile(`,(\s*[}\]])`)
)

// repairJSON attempts to fix the JSON formatting mistakes small models make
// most often: a key missing one of its quotes and trailing commas before a
// closing brace or bracket. Anything it cannot fix is left for the
// unmarshal error and the retry loop.
func repairJSON(s string) string {
	s = missingOpenQuoteRE.ReplaceAllString(s, `$1"$2$3`)
	s = missingCloseQuoteRE.ReplaceAllString(s, `$1$2"$3`)
	s = trailingCommaRE.ReplaceAllString(s, `$1`)
	return s
}
