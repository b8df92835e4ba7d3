// Package audio wraps raw speech output in a playable container.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"mime"
	"strconv"
	"strings"
)

// MIMEType is the content type of encoded audio.
const MIMEType = "audio/wav"

// PCMFormat describes little-endian signed PCM samples.
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultPCMFormat is what the speech models return: 24 kHz mono 16-bit.
var DefaultPCMFormat = PCMFormat{SampleRate: 24000, Channels: 1, BitDepth: 16}

// ParsePCMFormat reads the rate and channel parameters of a raw PCM content
// type such as "audio/L16;codec=pcm;rate=24000". Missing parameters keep the
// defaults.
func ParsePCMFormat(mimeType string) (PCMFormat, error) {
	f := DefaultPCMFormat
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return f, fmt.Errorf("parse audio type %q: %w", mimeType, err)
	}
	switch strings.ToLower(mediaType) {
	case "audio/l16", "audio/pcm":
	default:
		return f, fmt.Errorf("unsupported audio type %q", mediaType)
	}

	if v, ok := params["rate"]; ok {
		if f.SampleRate, err = positive(v); err != nil {
			return f, fmt.Errorf("audio rate: %w", err)
		}
	}
	if v, ok := params["channels"]; ok {
		if f.Channels, err = positive(v); err != nil {
			return f, fmt.Errorf("audio channels: %w", err)
		}
	}
	return f, nil
}

func positive(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// EncodeWAV prepends a RIFF/WAVE header to pcm.
func EncodeWAV(pcm []byte, f PCMFormat) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("audio data cannot be empty")
	}
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitDepth <= 0 || f.BitDepth%8 != 0 {
		return nil, fmt.Errorf("invalid pcm format %+v", f)
	}

	blockAlign := f.Channels * f.BitDepth / 8
	byteRate := f.SampleRate * blockAlign
	dataLen := len(pcm) - len(pcm)%blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	write(&buf, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(&buf, uint32(16))
	write(&buf, uint16(1)) // PCM
	write(&buf, uint16(f.Channels))
	write(&buf, uint32(f.SampleRate))
	write(&buf, uint32(byteRate))
	write(&buf, uint16(blockAlign))
	write(&buf, uint16(f.BitDepth))

	buf.WriteString("data")
	write(&buf, uint32(dataLen))
	buf.Write(pcm[:dataLen])
	return buf.Bytes(), nil
}

func write(buf *bytes.Buffer, v any) {
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, v)
}
