package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG frame decoding
	_ "image/png"  // PNG frame decoding
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Errors returned by the ingest helpers.
var (
	// ErrNoFrames is returned when an input yields no decodable frames.
	ErrNoFrames = errors.New("no frames could be decoded from input")

	// ErrUnsupportedInput is returned for inputs that are neither an
	// image file, a WAV file, nor a directory of those.
	ErrUnsupportedInput = errors.New("unsupported input type")
)

// imageExtensions are the frame file types the ingest layer decodes.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Load ingests a media input from the filesystem.
//
// Accepted inputs:
//   - a single image file → one-frame sequence
//   - a WAV file → audio-only media
//   - a directory → all image files (sorted by name) as the frame
//     sequence, plus the first WAV file found as the audio track
//
// Container video files are not decoded here; frame extraction from MP4
// and friends belongs to an external extractor whose output (a frame
// directory) this function ingests.
func Load(path string) (*Media, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	if info.IsDir() {
		return loadDir(path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		frame, err := loadFrame(path)
		if err != nil {
			return nil, err
		}
		return &Media{Path: path, Frames: []Frame{frame}}, nil
	case ext == ".wav":
		clip, err := LoadWAV(path)
		if err != nil {
			return nil, err
		}
		return &Media{Path: path, Audio: clip}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, ext)
	}
}

// loadDir ingests a directory of frame images and an optional WAV track.
func loadDir(dir string) (*Media, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var framePaths []string
	var wavPath string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case imageExtensions[ext]:
			framePaths = append(framePaths, filepath.Join(dir, e.Name()))
		case ext == ".wav" && wavPath == "":
			wavPath = filepath.Join(dir, e.Name())
		}
	}
	sort.Strings(framePaths)

	m := &Media{Path: dir}
	for _, p := range framePaths {
		frame, err := loadFrame(p)
		if err != nil {
			// A single unreadable frame should not sink the sequence.
			continue
		}
		m.Frames = append(m.Frames, frame)
	}
	if len(m.Frames) == 0 && wavPath == "" {
		return nil, ErrNoFrames
	}

	if wavPath != "" {
		clip, err := LoadWAV(wavPath)
		if err == nil {
			m.Audio = clip
		}
	}
	return m, nil
}

// loadFrame decodes a single image file into a grayscale frame.
func loadFrame(path string) (Frame, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided media path is intentional
	if err != nil {
		return Frame{}, fmt.Errorf("failed to open frame file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// LoadWAV reads a PCM16 RIFF WAV file into a mono Clip.
// Stereo input is downmixed by channel averaging. Only uncompressed
// 16-bit PCM is supported; anything else is rejected.
func LoadWAV(path string) (*Clip, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided media path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV parses PCM16 RIFF WAV bytes into a mono Clip.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF WAVE file")
	}

	var sampleRate int
	var channels int
	var bitsPerSample int
	var pcm []byte

	// Walk the chunk list; fmt must precede data per the RIFF spec.
	off := 12
	for off+8 <= len(data) {
		chunkID := string(data[off : off+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, errors.New("malformed fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 { // PCM
				return nil, fmt.Errorf("unsupported WAV format code %d (PCM only)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		off = body + chunkSize
		if chunkSize%2 == 1 {
			off++
		}
	}

	if sampleRate <= 0 || channels <= 0 || pcm == nil {
		return nil, errors.New("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (16-bit PCM only)", bitsPerSample)
	}

	frameBytes := 2 * channels
	n := len(pcm) / frameBytes
	samples := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			v := int16(binary.LittleEndian.Uint16(pcm[i*frameBytes+ch*2 : i*frameBytes+ch*2+2])) //nolint:gosec // intentional 16-bit reinterpretation
			sum += float64(v) / 32768.0
		}
		samples = append(samples, sum/float64(channels))
	}

	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}
