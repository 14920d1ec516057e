// This file is part of crobots - https://github.com/db47h/crobots
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
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

package telemetry

import (
	"fmt"
	"io"

	"github.com/db47h/crobots/arena"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("telemetry: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// MarshalSnapshot returns the canonical CBOR encoding of s. Two matches run
// with the same programs and configuration yield identical encodings at every
// interval.
func MarshalSnapshot(s *arena.Snapshot) ([]byte, error) {
	b, err := encMode.Marshal(s)
	return b, errors.Wrap(err, "snapshot encoding failed")
}

// UnmarshalSnapshot decodes a snapshot encoded with MarshalSnapshot.
func UnmarshalSnapshot(b []byte) (*arena.Snapshot, error) {
	var s arena.Snapshot
	if err := cbor.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "snapshot decoding failed")
	}
	return &s, nil
}

// Encoder writes a sequence of CBOR encoded snapshots to an io.Writer.
type Encoder struct {
	enc *cbor.Encoder
	err error
}

// NewEncoder returns a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: encMode.NewEncoder(w)}
}

// Observe encodes s. It has the signature of an arena.Observer. After an
// error, further snapshots are ignored.
func (e *Encoder) Observe(s *arena.Snapshot) {
	if e.err != nil {
		return
	}
	e.err = errors.Wrap(e.enc.Encode(s), "snapshot encoding failed")
}

// Err returns the first encoding error, if any.
func (e *Encoder) Err() error { return e.err }

// Decoder reads a sequence of snapshots written by an Encoder.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns a new Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: cbor.NewDecoder(r)}
}

// Next returns the next snapshot in the stream, or io.EOF at the end of the
// stream.
func (d *Decoder) Next() (*arena.Snapshot, error) {
	var s arena.Snapshot
	if err := d.dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrap(err, "snapshot decoding failed")
	}
	return &s, nil
}
