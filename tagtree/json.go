package tagtree

import (
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

const (
	opReadTag = "tagtree.readTag"

	// EncodedStringPrefix marks a JSON string holding base64 of the raw bytes of a tree string.
	EncodedStringPrefix = "base64:"
)

// Marshal returns the JSON projection of c. Field order follows the compound's insertion order.
//
// Strings that are not valid UTF-8, contain a NUL byte, or start with EncodedStringPrefix are written
// as EncodedStringPrefix followed by their base64 encoding, so the output is always valid JSON that
// PostgreSQL accepts as jsonb and every byte survives the round trip.
func Marshal(c *Compound) ([]byte, error) {
	if c == nil {
		return nil, ErrNilTag
	}

	stream := jsoniter.ConfigFastest.BorrowStream(nil)
	defer jsoniter.ConfigFastest.ReturnStream(stream)

	writeTag(stream, c)

	if stream.Error != nil {
		return nil, stream.Error
	}

	// the stream's buffer is reused after ReturnStream
	return append([]byte(nil), stream.Buffer()...), nil
}

// Unmarshal parses the JSON projection of a compound.
//
// Returns ErrInvalidJSON for malformed input and ErrUnsupportedJSON for numbers, booleans, or null,
// which have no counterpart in the tree.
func Unmarshal(data []byte) (*Compound, error) {
	iter := jsoniter.ConfigFastest.BorrowIterator(data)
	defer jsoniter.ConfigFastest.ReturnIterator(iter)

	d := decoder{iter: iter}

	if next := iter.WhatIsNext(); next != jsoniter.ObjectValue {
		if next == jsoniter.InvalidValue {
			return nil, ErrInvalidJSON
		}

		return nil, ErrUnsupportedJSON
	}

	root := d.readCompound()

	if d.err != nil {
		return nil, d.err
	}

	if iter.Error != nil {
		return nil, errors.Join(ErrInvalidJSON, iter.Error)
	}

	// only whitespace may follow the root object
	if iter.WhatIsNext() != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return nil, ErrInvalidJSON
	}

	return root, nil
}

func encodeString(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) && !strings.HasPrefix(s, EncodedStringPrefix) {
		return s
	}

	return EncodedStringPrefix + base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeString(s string) (string, error) {
	encoded, ok := strings.CutPrefix(s, EncodedStringPrefix)
	if !ok {
		return s, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrInvalidJSON, err)
	}

	return string(raw), nil
}

func writeTag(stream *jsoniter.Stream, t Tag) {
	switch v := t.(type) {
	case String:
		stream.WriteString(encodeString(string(v)))

	case *List:
		if v.Len() == 0 {
			stream.WriteEmptyArray()
			return
		}

		stream.WriteArrayStart()
		for i, item := range v.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeTag(stream, item)
		}
		stream.WriteArrayEnd()

	case *Compound:
		if v.Len() == 0 {
			stream.WriteEmptyObject()
			return
		}

		stream.WriteObjectStart()
		for i, name := range v.names {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(encodeString(name))
			writeTag(stream, v.values[name])
		}
		stream.WriteObjectEnd()
	}
}

// decoder keeps the first domain error so it is not masked by the iterator's own error.
type decoder struct {
	iter *jsoniter.Iterator
	err  error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}

	d.iter.ReportError(opReadTag, err.Error())
}

func (d *decoder) readTag() Tag {
	switch d.iter.WhatIsNext() {
	case jsoniter.StringValue:
		str, err := decodeString(d.iter.ReadString())
		if err != nil {
			d.fail(err)
			return nil
		}

		return String(str)

	case jsoniter.ArrayValue:
		return d.readList()

	case jsoniter.ObjectValue:
		return d.readCompound()

	case jsoniter.InvalidValue:
		d.fail(ErrInvalidJSON)
		return nil

	default:
		d.fail(ErrUnsupportedJSON)
		return nil
	}
}

func (d *decoder) readList() *List {
	l := NewList()

	d.iter.ReadArrayCB(func(_ *jsoniter.Iterator) bool {
		t := d.readTag()
		if t == nil {
			return false
		}

		l.Push(t)

		return true
	})

	return l
}

func (d *decoder) readCompound() *Compound {
	c := NewCompound()

	d.iter.ReadObjectCB(func(_ *jsoniter.Iterator, field string) bool {
		name, err := decodeString(field)
		if err != nil {
			d.fail(err)
			return false
		}

		t := d.readTag()
		if t == nil {
			return false
		}

		_ = c.Set(name, t) // t is not nil here

		return true
	})

	return c
}
