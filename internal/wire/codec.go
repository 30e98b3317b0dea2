// internal/wire/codec.go
package wire

import (
	"encoding/binary"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// lengthPrefixSize is the fixed size of the big-endian frame header.
	lengthPrefixSize = 4
	// MaxFrameSize bounds a declared frame length. A peer announcing more is
	// treated as a framing error, not trusted.
	MaxFrameSize = 1 << 20
)

// ErrFrameTooLarge is returned when a length prefix exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("wire: declared frame length exceeds limit")

// Send encodes payload, wraps it in an envelope of the given type and writes
// one length-prefixed frame. A nil payload produces an empty envelope body.
func Send(w io.Writer, t Type, payload interface{}) error {
	env := Envelope{Type: t}
	if payload != nil {
		raw, err := codec.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "wire: marshal %s payload", t)
		}
		env.Payload = raw
	}
	body, err := codec.Marshal(&env)
	if err != nil {
		return errors.Wrapf(err, "wire: marshal %s envelope", t)
	}
	frame := make([]byte, lengthPrefixSize+len(body))
	binary.BigEndian.PutUint32(frame[:lengthPrefixSize], uint32(len(body)))
	copy(frame[lengthPrefixSize:], body)
	if _, err := w.Write(frame); err != nil {
		return errors.Wrapf(err, "wire: send %s", t)
	}
	return nil
}

// Receive reads exactly one frame and decodes its envelope. Any short read is
// a hard connection error for the caller to act on.
func Receive(r io.Reader) (*Envelope, error) {
	var header [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "wire: read frame header")
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "wire: read frame body")
	}
	var env Envelope
	if err := codec.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "wire: decode envelope")
	}
	if !env.Type.Valid() {
		return nil, errors.Errorf("wire: unknown message type %d", env.Type)
	}
	return &env, nil
}

// Expect reads one frame and fails unless it carries the wanted type.
func Expect(r io.Reader, want Type) (*Envelope, error) {
	env, err := Receive(r)
	if err != nil {
		return nil, err
	}
	if env.Type != want {
		return nil, errors.Errorf("wire: expected %s, got %s", want, env.Type)
	}
	return env, nil
}

// ExpectDecode reads one frame of the wanted type and decodes its payload
// into v.
func ExpectDecode(r io.Reader, want Type, v interface{}) error {
	env, err := Expect(r, want)
	if err != nil {
		return err
	}
	return env.Decode(v)
}

// Decode unpacks the envelope's payload into v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 {
		return errors.Errorf("wire: %s message carries no payload", e.Type)
	}
	if err := codec.Unmarshal(e.Payload, v); err != nil {
		return errors.Wrapf(err, "wire: decode %s payload", e.Type)
	}
	return nil
}
