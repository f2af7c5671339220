package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var ErrUnsupportedWAV = errors.New("only mono 16-bit pcm wav is supported")

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// WAV wraps mono PCM16 samples in a RIFF container.
func WAV(pcm []byte, sampleRate int) []byte {
	const headerLen = 44
	var buf bytes.Buffer
	buf.Grow(headerLen + len(pcm))

	byteRate := uint32(sampleRate * bytesPerSample)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, byteRate)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bytesPerSample))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// DecodeWAV extracts the PCM16 samples and sample rate of a mono RIFF file.
func DecodeWAV(data []byte) ([]byte, int, error) {
	if !IsWAV(data) {
		return nil, 0, ErrUnsupportedWAV
	}
	var sampleRate int
	var sawFormat bool
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			if id == "data" {
				size = len(data) - body
			} else {
				return nil, 0, ErrUnsupportedWAV
			}
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, ErrUnsupportedWAV
			}
			format := binary.LittleEndian.Uint16(data[body:])
			channels := binary.LittleEndian.Uint16(data[body+2:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 1 || channels != 1 || bits != 16 {
				return nil, 0, ErrUnsupportedWAV
			}
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			sawFormat = true
		case "data":
			if !sawFormat {
				return nil, 0, ErrUnsupportedWAV
			}
			pcm := data[body : body+size-size%bytesPerSample]
			return pcm, sampleRate, nil
		}
		off = body + size + size%2
	}
	return nil, 0, ErrUnsupportedWAV
}
