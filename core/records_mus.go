package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for the records persisted by the storage layer. Field order is
// part of the on-disk format; append new fields at the end only.

var (
	IDMUS    = idMUS{}
	EntryMUS = entryMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type stringsMUS struct{}

func (s stringsMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, str := range v {
		n += ord.String.Marshal(str, bs[n:])
	}
	return
}

func (s stringsMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if length > uint64(len(bs)) {
		return nil, n, ErrCorruptRecord
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	var n1 int
	for i := range v {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s stringsMUS) Size(v []string) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, str := range v {
		size += ord.String.Size(str)
	}
	return
}

type vectorMUS struct{}

func (s vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return
}

func (s vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if length > uint64(len(bs)) {
		return nil, n, ErrCorruptRecord
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	var (
		bits uint32
		n1   int
	)
	for i := range v {
		bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v[i] = math.Float32frombits(bits)
	}
	return
}

func (s vectorMUS) Size(v []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return
}

// Timestamps are stored as Unix microseconds; the zero time round-trips as zero.
type timeMUS struct{}

func (s timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(toMicros(v), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	if micros == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(micros), n, nil
}

func (s timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(toMicros(v))
}

func toMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

var (
	stringSliceMUS = stringsMUS{}
	float32VecMUS  = vectorMUS{}
	timestampMUS   = timeMUS{}
)

type entryMUS struct{}

func (s entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Partition, bs[n:])
	n += ord.String.Marshal(v.Form, bs[n:])
	n += ord.String.Marshal(v.Definition, bs[n:])
	n += ord.String.Marshal(v.EnglishDefinition, bs[n:])
	n += stringSliceMUS.Marshal(v.Usages, bs[n:])
	n += float32VecMUS.Marshal(v.Vector, bs[n:])
	n += timestampMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timestampMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Partition, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Form, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Definition, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EnglishDefinition, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Usages, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = float32VecMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timestampMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entryMUS) Size(v Entry) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Partition)
	size += ord.String.Size(v.Form)
	size += ord.String.Size(v.Definition)
	size += ord.String.Size(v.EnglishDefinition)
	size += stringSliceMUS.Size(v.Usages)
	size += float32VecMUS.Size(v.Vector)
	size += timestampMUS.Size(v.InsertedAt)
	return size + timestampMUS.Size(v.UpdatedAt)
}
