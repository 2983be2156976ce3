package livetest

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	wav := EncodeWAV(pcm, SampleRate)

	require.Len(t, wav, wavHeaderSize+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVEfmt ", string(wav[8:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(SampleRate*2), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestPCMRecordingPump(t *testing.T) {
	pr, pw := io.Pipe()
	rec := newPCMRecording(pr)
	killed, drainedBeforeWait := false, false
	rec.kill = func() error {
		killed = true
		return pw.Close()
	}
	rec.wait = func() error {
		select {
		case <-rec.done:
			drainedBeforeWait = true
		default:
		}
		return nil
	}

	var raw bytes.Buffer
	for i := 0; i < FFTSize+10; i++ {
		_ = binary.Write(&raw, binary.LittleEndian, int16(16384))
	}
	// odd split exercises the carried byte
	data := raw.Bytes()
	_, err := pw.Write(data[:3])
	require.NoError(t, err)
	_, err = pw.Write(data[3:])
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(rec.Samples()) == FFTSize }, time.Second, 5*time.Millisecond)
	for _, s := range rec.Samples() {
		assert.InDelta(t, 0.5, s, 1e-9)
	}

	wav, err := rec.Stop()
	require.NoError(t, err)
	assert.True(t, killed)
	assert.True(t, drainedBeforeWait, "wait runs only after the pump hit EOF")
	assert.Equal(t, data, wav[wavHeaderSize:])

	again, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, wav, again)
}

func TestMissingCommands(t *testing.T) {
	r := NewCommandRecorder(nil)
	r.Command = "sahayak-no-such-recorder"
	assert.False(t, r.Available())
	_, err := r.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoMicrophone)

	s := NewCommandSpeaker()
	s.Command = "sahayak-no-such-speaker"
	assert.Error(t, s.Speak(context.Background(), "hello", language.English))
}

func TestVoice(t *testing.T) {
	assert.Equal(t, "en-us", Voice(language.AmericanEnglish))
	assert.Equal(t, "kn", Voice(language.MustParse("kn-IN")))
	assert.Equal(t, "hi", Voice(language.MustParse("hi-IN")))
}
