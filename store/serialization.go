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


package store

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/avaxML/cite-right/core"
)

// MarshalSource serializes a Source to bytes.
func MarshalSource(source core.Source) []byte {
	buf := make([]byte, core.SourceMUS.Size(source))
	core.SourceMUS.Marshal(source, buf)
	return buf
}

// UnmarshalSource deserializes a Source from bytes.
func UnmarshalSource(data []byte) (core.Source, error) {
	source, _, err := core.SourceMUS.Unmarshal(data)
	return source, err
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, core.VectorMUS.Size(vector))
	core.VectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := core.VectorMUS.Unmarshal(data)
	return vector, err
}

// MarshalMeta serializes corpus metadata to bytes.
func MarshalMeta(meta *Meta) []byte {
	buf := make([]byte, MetaMUS.Size(*meta))
	MetaMUS.Marshal(*meta, buf)
	return buf
}

// UnmarshalMeta deserializes corpus metadata from bytes.
func UnmarshalMeta(data []byte) (*Meta, error) {
	meta, _, err := MetaMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// MetaMUS serializes Meta records in MUS format. Times are stored as
// microsecond Unix timestamps.
var MetaMUS = metaMUS{}

type metaMUS struct{}

func (metaMUS) Marshal(m Meta, bs []byte) (n int) {
	n = ord.String.Marshal(m.EmbeddingModel, bs)
	n += varint.Int.Marshal(m.EmbeddingDim, bs[n:])
	n += varint.Int64.Marshal(m.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (metaMUS) Unmarshal(bs []byte) (m Meta, n int, err error) {
	m.EmbeddingModel, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	m.EmbeddingDim, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (metaMUS) Size(m Meta) (size int) {
	size = ord.String.Size(m.EmbeddingModel)
	size += varint.Int.Size(m.EmbeddingDim)
	size += varint.Int64.Size(m.UpdatedAt.UnixMicro())
	return size
}

func (metaMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
