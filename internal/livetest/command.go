package livetest

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

const (
	DefaultRecordCommand = "arecord"
	DefaultSpeakCommand  = "espeak-ng"
	DefaultSpeakRate     = 140
)

// CommandRecorder captures the microphone through an external recorder
// that writes raw 16 kHz mono S16_LE samples to stdout.
type CommandRecorder struct {
	Command string
	Log     *slog.Logger
}

func NewCommandRecorder(log *slog.Logger) *CommandRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &CommandRecorder{Command: DefaultRecordCommand, Log: log}
}

// Available reports whether the recorder binary is on PATH.
func (r *CommandRecorder) Available() bool {
	_, err := exec.LookPath(r.Command)
	return err == nil
}

func (r *CommandRecorder) Start(ctx context.Context) (Recording, error) {
	path, err := exec.LookPath(r.Command)
	if err != nil {
		return nil, ErrNoMicrophone
	}
	cmd := exec.CommandContext(ctx, path,
		"-q", "-f", "S16_LE", "-r", strconv.Itoa(SampleRate), "-c", "1", "-t", "raw")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "recorder stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(ErrNoMicrophone, err.Error())
	}
	r.Log.Debug("recording started", "command", path)

	rec := newPCMRecording(out)
	rec.kill = func() error {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return nil
	}
	// Wait closes stdout, so it only runs once the pump has drained it.
	rec.wait = func() error {
		// killed on purpose; the exit status carries nothing useful
		_ = cmd.Wait()
		return nil
	}
	return rec, nil
}

// pcmRecording pumps raw PCM from a reader, keeping every byte for the
// final WAV and the newest FFTSize samples for the level meter.
type pcmRecording struct {
	mu     sync.Mutex
	pcm    []byte
	recent []float64
	done   chan struct{}
	err    error

	// kill ends the source so the pump sees EOF; wait reaps it after.
	kill func() error
	wait func() error
	once sync.Once
}

func newPCMRecording(r io.Reader) *pcmRecording {
	rec := &pcmRecording{
		recent: make([]float64, 0, FFTSize),
		done:   make(chan struct{}),
	}
	go rec.pump(r)
	return rec
}

func (p *pcmRecording) pump(r io.Reader) {
	defer close(p.done)
	buf := make([]byte, 4096)
	var carry []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			whole := len(chunk) &^ 1
			p.write(chunk[:whole])
			carry = append([]byte(nil), chunk[whole:]...)
		}
		if err != nil {
			if err != io.EOF {
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
			}
			return
		}
	}
}

func (p *pcmRecording) write(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pcm = append(p.pcm, b...)
	for i := 0; i+1 < len(b); i += 2 {
		s := int16(binary.LittleEndian.Uint16(b[i:]))
		p.recent = append(p.recent, float64(s)/32768)
	}
	if over := len(p.recent) - FFTSize; over > 0 {
		p.recent = append(p.recent[:0], p.recent[over:]...)
	}
}

func (p *pcmRecording) Samples() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.recent))
	copy(out, p.recent)
	return out
}

func (p *pcmRecording) Stop() ([]byte, error) {
	var stopErr error
	p.once.Do(func() {
		if p.kill != nil {
			stopErr = p.kill()
		}
		<-p.done
		if p.wait != nil {
			if err := p.wait(); err != nil && stopErr == nil {
				stopErr = err
			}
		}
	})
	<-p.done
	if stopErr != nil {
		return nil, stopErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil && len(p.pcm) == 0 {
		return nil, errors.Wrap(p.err, "read audio")
	}
	return EncodeWAV(p.pcm, SampleRate), nil
}

// CommandSpeaker reads text aloud through an external synthesizer.
type CommandSpeaker struct {
	Command string
	Rate    int
}

func NewCommandSpeaker() *CommandSpeaker {
	return &CommandSpeaker{Command: DefaultSpeakCommand, Rate: DefaultSpeakRate}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string, tag language.Tag) error {
	path, err := exec.LookPath(s.Command)
	if err != nil {
		return errors.Wrap(err, "speech synthesis unavailable")
	}
	cmd := exec.CommandContext(ctx, path, "-v", Voice(tag), "-s", strconv.Itoa(s.Rate), text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "speak: %s", out)
	}
	return nil
}

// Voice maps a language tag onto an espeak voice name.
func Voice(tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "en" {
		return "en-us"
	}
	return base.String()
}
