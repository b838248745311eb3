package media

// Clip is a mono PCM audio clip.
type Clip struct {
	// SampleRate is the sampling frequency in Hz.
	SampleRate int

	// Samples holds normalized amplitudes in [-1, 1].
	Samples []float64
}

// Empty reports whether the clip carries no usable audio.
func (c *Clip) Empty() bool {
	return c == nil || c.SampleRate <= 0 || len(c.Samples) == 0
}

// Duration returns the clip length in seconds, or 0 when empty.
func (c *Clip) Duration() float64 {
	if c.Empty() {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Media bundles the inputs of one analysis: the frame sequence and the
// optional audio track. Path is retained for reporting and provenance.
type Media struct {
	// Path is the original input location, empty for in-memory media.
	Path string

	// Frames is the extracted frame sequence, in presentation order.
	Frames []Frame

	// Audio is the extracted audio track; nil when the input has none.
	Audio *Clip
}

// HasAudio reports whether a non-empty audio track is present.
func (m *Media) HasAudio() bool {
	return m != nil && !m.Audio.Empty()
}
