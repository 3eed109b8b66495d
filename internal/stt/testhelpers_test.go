package stt

import (
	"bytes"
	"context"
	"encoding/binary"
)

// wavBytes builds a mono 16-bit PCM WAV file with dataLen bytes of silence.
func wavBytes(sampleRate uint32, dataLen int) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+dataLen))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, le, uint32(16))
	_ = binary.Write(&b, le, uint16(1)) // PCM
	_ = binary.Write(&b, le, uint16(1)) // mono
	_ = binary.Write(&b, le, sampleRate)
	_ = binary.Write(&b, le, sampleRate*2) // byte rate
	_ = binary.Write(&b, le, uint16(2))    // block align
	_ = binary.Write(&b, le, uint16(16))   // bits per sample
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(dataLen))
	b.Write(make([]byte, dataLen))
	return b.Bytes()
}

func floatPtr(v float64) *float64 { return &v }

type fakeProvider struct {
	name     string
	strategy Strategy
	attempt  *Attempt
	err      error
	calls    int
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) Strategy() Strategy { return f.strategy }

func (f *fakeProvider) Transcribe(_ context.Context, _ Audio, _ string) (*Attempt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a := *f.attempt
	return &a, nil
}

type fakeCleaner struct {
	out   string
	err   error
	calls int
	got   string
}

func (f *fakeCleaner) CleanTranscript(_ context.Context, transcript, _ string) (string, error) {
	f.calls++
	f.got = transcript
	return f.out, f.err
}
