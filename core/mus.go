package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// SourceMUS serializes Source records in MUS format for persistence.
// Field order is part of the wire format: ID, Text, DocCharStart,
// DocumentText. Metadata is an in-process adapter concern and is not
// serialized.
var SourceMUS = sourceMUS{}

type sourceMUS struct{}

func (sourceMUS) Marshal(s Source, bs []byte) (n int) {
	n = ord.String.Marshal(s.ID, bs)
	n += ord.String.Marshal(s.Text, bs[n:])
	n += varint.Int.Marshal(s.DocCharStart, bs[n:])
	n += ord.String.Marshal(s.DocumentText, bs[n:])
	return n
}

func (sourceMUS) Unmarshal(bs []byte) (s Source, n int, err error) {
	s.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	s.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.DocCharStart, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.DocumentText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (sourceMUS) Size(s Source) (size int) {
	size = ord.String.Size(s.ID)
	size += ord.String.Size(s.Text)
	size += varint.Int.Size(s.DocCharStart)
	size += ord.String.Size(s.DocumentText)
	return size
}

func (sourceMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

// VectorMUS serializes embedding vectors: a varint element count followed
// by fixed-width float32 values.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func (vectorMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	var n1 int
	for i := 0; i < length; i++ {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
