package livetest

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	FFTSize     = 256
	Smoothing   = 0.8
	MinDecibels = -100.0
	MaxDecibels = -30.0
)

// Meter turns microphone samples into a 0 to 100 loudness level. Each call
// analyses the newest FFTSize samples through a Blackman window, smooths
// the bin magnitudes over time and maps them from decibels onto a byte
// scale before averaging.
type Meter struct {
	fft      *fourier.FFT
	window   []float64
	buf      []float64
	coeff    []complex128
	smoothed []float64
}

func NewMeter() *Meter {
	ones := make([]float64, FFTSize)
	for i := range ones {
		ones[i] = 1
	}
	return &Meter{
		fft:      fourier.NewFFT(FFTSize),
		window:   window.Blackman(ones),
		buf:      make([]float64, FFTSize),
		coeff:    make([]complex128, FFTSize/2+1),
		smoothed: make([]float64, FFTSize/2),
	}
}

// Reset forgets the smoothing history.
func (m *Meter) Reset() {
	clear(m.smoothed)
}

// Level returns the loudness of samples, which are mono values in [-1, 1].
// Fewer than FFTSize samples are padded with silence.
func (m *Meter) Level(samples []float64) float64 {
	if len(samples) > FFTSize {
		samples = samples[len(samples)-FFTSize:]
	}
	pad := FFTSize - len(samples)
	for i := range m.buf {
		if i < pad {
			m.buf[i] = 0
			continue
		}
		m.buf[i] = samples[i-pad] * m.window[i]
	}
	m.coeff = m.fft.Coefficients(m.coeff, m.buf)

	var sum float64
	for k := range m.smoothed {
		mag := cmplx.Abs(m.coeff[k]) / FFTSize
		m.smoothed[k] = Smoothing*m.smoothed[k] + (1-Smoothing)*mag
		sum += toByte(m.smoothed[k])
	}
	avg := sum / float64(len(m.smoothed))
	return math.Min(100, avg/255*100)
}

func toByte(mag float64) float64 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor(255 * (db - MinDecibels) / (MaxDecibels - MinDecibels))
	return math.Max(0, math.Min(255, v))
}
