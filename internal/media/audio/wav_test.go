package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}

	wav, err := EncodeWAV(pcm, DefaultPCMFormat)
	require.NoError(t, err)
	require.Len(t, wav, 44+len(pcm))

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "pcm")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "channels")
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]), "sample rate")
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bit depth")
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestEncodeWAV_DropsPartialFrame(t *testing.T) {
	wav, err := EncodeWAV([]byte{1, 0, 2}, DefaultPCMFormat)
	require.NoError(t, err)
	assert.Len(t, wav, 46)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestEncodeWAV_Rejects(t *testing.T) {
	_, err := EncodeWAV(nil, DefaultPCMFormat)
	assert.Error(t, err)

	_, err = EncodeWAV([]byte{1, 2}, PCMFormat{SampleRate: 24000, Channels: 1, BitDepth: 12})
	assert.Error(t, err)
}

func TestParsePCMFormat(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     PCMFormat
		wantErr  bool
	}{
		{"gemini default", "audio/L16;codec=pcm;rate=24000", DefaultPCMFormat, false},
		{"other rate", "audio/L16;rate=16000", PCMFormat{SampleRate: 16000, Channels: 1, BitDepth: 16}, false},
		{"stereo", "audio/pcm; rate=48000; channels=2", PCMFormat{SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"no parameters", "audio/L16", DefaultPCMFormat, false},
		{"bad rate", "audio/L16;rate=fast", PCMFormat{}, true},
		{"zero rate", "audio/L16;rate=0", PCMFormat{}, true},
		{"compressed", "audio/mpeg", PCMFormat{}, true},
		{"garbage", ";;", PCMFormat{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePCMFormat(tt.mimeType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
