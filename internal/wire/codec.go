// Package wire encodes save predictions as the fixed 17-byte frame observers
// read from the server:
//
//	offset 0   bool     is saving
//	offset 1   uint32   predicted next save start, Unix seconds
//	offset 5   uint32   predicted save end, Unix seconds
//	offset 9   float32  autosave interval, seconds
//	offset 13  float32  last save duration, seconds
//
// All fields are little-endian. There is no length prefix.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

const MessageSize = 17

type Status struct {
	IsSaving                bool
	PredictedNextSaveStart  time.Time
	PredictedSaveEnd        time.Time
	AutosaveIntervalSeconds float64
	LastSaveDurationSeconds float64
}

func Encode(s Status) [MessageSize]byte {
	var buf [MessageSize]byte
	if s.IsSaving {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], unixSeconds(s.PredictedNextSaveStart))
	binary.LittleEndian.PutUint32(buf[5:9], unixSeconds(s.PredictedSaveEnd))
	binary.LittleEndian.PutUint32(buf[9:13], math.Float32bits(float32(s.AutosaveIntervalSeconds)))
	binary.LittleEndian.PutUint32(buf[13:17], math.Float32bits(float32(s.LastSaveDurationSeconds)))
	return buf
}

func Decode(b []byte) (Status, error) {
	if len(b) != MessageSize {
		return Status{}, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidFrame, len(b), MessageSize)
	}
	return Status{
		IsSaving:                b[0] != 0,
		PredictedNextSaveStart:  time.Unix(int64(binary.LittleEndian.Uint32(b[1:5])), 0).UTC(),
		PredictedSaveEnd:        time.Unix(int64(binary.LittleEndian.Uint32(b[5:9])), 0).UTC(),
		AutosaveIntervalSeconds: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[9:13]))),
		LastSaveDurationSeconds: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[13:17]))),
	}, nil
}

// ReadStatus reads exactly one frame. A stream that ends before a full frame
// arrives, including mid-frame, reports ErrConnectionLost.
func ReadStatus(r io.Reader) (Status, error) {
	var buf [MessageSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Status{}, ErrConnectionLost
		}
		return Status{}, fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return Decode(buf[:])
}

// WriteStatus writes one frame in a single call.
func WriteStatus(w io.Writer, s Status) error {
	buf := Encode(s)
	_, err := w.Write(buf[:])
	return err
}

func unixSeconds(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix()
	switch {
	case sec < 0:
		return 0
	case sec > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(sec)
}
