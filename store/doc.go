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


// Package store defines the corpus persistence contract.
//
// A CorpusStore keeps reference sources and their embedding vectors between
// runs, so repeated alignment calls against the same corpus do not re-read
// or re-embed documents. The alignment engine itself never touches the
// store; the CLI and the reindex pipeline do.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the CorpusStore
// interface to enforce abstraction and keep alternative backends
// swappable:
//
//	corpus, err := badger.Open("/path/to/index")
//
// # Data Model
//
// Sources are stored whole under their ID. Embedding vectors are stored
// separately, keyed by embedding model and a content fingerprint of the
// embedded text, so the same corpus can carry vectors for several models
// at once and switching models never clobbers existing vectors.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple
// goroutines.
package store
