package audio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 kHz keeps the arithmetic readable: one millisecond is two bytes.
func testFormat() audio.Format {
	return audio.NewFormat(1000)
}

func chunkOf(seq uint64, fill byte, ms int) audio.Chunk {
	return audio.Chunk{Seq: seq, Data: bytes.Repeat([]byte{fill}, ms*2)}
}

func TestFrameBuffer_CommitReturnsConcatenationInOrder(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)

	var want []byte
	for i := 1; i <= 10; i++ {
		c := chunkOf(uint64(i), byte(i), 20)
		require.NoError(t, buf.Append(c))
		want = append(want, c.Data...)
	}

	snap, err := buf.Commit()
	require.NoError(t, err)
	assert.Equal(t, want, snap.Data)
	assert.Equal(t, uint64(1), snap.FirstSeq)
	assert.Equal(t, uint64(10), snap.LastSeq)
	assert.Equal(t, 200, snap.DurationMs)
	assert.True(t, buf.Empty())
	assert.Equal(t, 0, buf.Len())
}

func TestFrameBuffer_SnapshotIsDetached(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)
	c := chunkOf(1, 7, 20)
	require.NoError(t, buf.Append(c))
	c.Data[0] = 99

	snap, err := buf.Commit()
	require.NoError(t, err)
	assert.Equal(t, byte(7), snap.Data[0])

	require.NoError(t, buf.Append(chunkOf(2, 8, 20)))
	assert.Equal(t, byte(7), snap.Data[0])
}

func TestFrameBuffer_CommitOnEmptyBuffer(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)

	snap, err := buf.Commit()
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, audio.ErrEmptyBuffer)
	assert.Equal(t, domain.CodeEmptyBuffer, domain.CodeOf(err))

	require.NoError(t, buf.Append(chunkOf(1, 1, 20)))
	_, err = buf.Commit()
	require.NoError(t, err)

	_, err = buf.Commit()
	assert.ErrorIs(t, err, audio.ErrEmptyBuffer)
	assert.Equal(t, uint64(1), buf.LastSeq())
	assert.True(t, buf.Empty())
}

func TestFrameBuffer_Append(t *testing.T) {
	tests := []struct {
		name    string
		setup   []audio.Chunk
		chunk   audio.Chunk
		wantErr error
		wantLen int
	}{
		{
			name:    "accepts first chunk",
			chunk:   chunkOf(5, 1, 20),
			wantLen: 40,
		},
		{
			name:    "rejects repeated sequence",
			setup:   []audio.Chunk{chunkOf(1, 1, 20)},
			chunk:   chunkOf(1, 1, 20),
			wantErr: audio.ErrOutOfOrderChunk,
			wantLen: 40,
		},
		{
			name:    "rejects older sequence",
			setup:   []audio.Chunk{chunkOf(3, 1, 20)},
			chunk:   chunkOf(2, 1, 20),
			wantErr: audio.ErrOutOfOrderChunk,
			wantLen: 40,
		},
		{
			name:    "rejects overflow and keeps state",
			setup:   []audio.Chunk{chunkOf(1, 1, 90)},
			chunk:   chunkOf(2, 1, 20),
			wantErr: audio.ErrBufferOverflow,
			wantLen: 180,
		},
		{
			name:    "accepts chunk that fills exactly",
			setup:   []audio.Chunk{chunkOf(1, 1, 80)},
			chunk:   chunkOf(2, 1, 20),
			wantLen: 200,
		},
		{
			name:    "rejects odd length",
			chunk:   audio.Chunk{Seq: 1, Data: []byte{1, 2, 3}},
			wantErr: audio.ErrInvalidChunk,
		},
		{
			name:    "rejects empty chunk",
			chunk:   audio.Chunk{Seq: 1},
			wantErr: audio.ErrInvalidChunk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := audio.NewFrameBuffer(testFormat(), 100)
			for _, c := range tt.setup {
				require.NoError(t, buf.Append(c))
			}
			err := buf.Append(tt.chunk)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLen, buf.Len())
		})
	}
}

func TestFrameBuffer_SequenceSurvivesCommit(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)
	require.NoError(t, buf.Append(chunkOf(4, 1, 20)))
	_, err := buf.Commit()
	require.NoError(t, err)

	assert.ErrorIs(t, buf.Append(chunkOf(4, 1, 20)), audio.ErrOutOfOrderChunk)
	assert.NoError(t, buf.Append(chunkOf(5, 1, 20)))
}

func TestFrameBuffer_PeekWindow(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)
	require.NoError(t, buf.Append(chunkOf(1, 1, 20)))
	require.NoError(t, buf.Append(chunkOf(2, 2, 20)))
	require.NoError(t, buf.Append(chunkOf(3, 3, 20)))

	window := buf.PeekWindow(30)
	want := append(bytes.Repeat([]byte{2}, 20), bytes.Repeat([]byte{3}, 40)...)
	assert.Equal(t, want, window)

	assert.Len(t, buf.PeekWindow(500), 120)
	assert.Nil(t, buf.PeekWindow(0))
	assert.Equal(t, 120, buf.Len())

	window[0] = 42
	assert.Equal(t, byte(2), buf.PeekWindow(30)[0])
}

func TestFrameBuffer_Truncate(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)
	for i := 1; i <= 4; i++ {
		require.NoError(t, buf.Append(chunkOf(uint64(i), byte(i), 10)))
	}

	buf.Truncate(3)
	assert.Equal(t, 40, buf.Len())

	snap, err := buf.Commit()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), snap.FirstSeq)
	assert.Equal(t, uint64(4), snap.LastSeq)

	require.NoError(t, buf.Append(chunkOf(5, 5, 10)))
	buf.Truncate(100)
	_, err = buf.Commit()
	assert.ErrorIs(t, err, audio.ErrEmptyBuffer)
}

func TestRMSEnergy(t *testing.T) {
	assert.Equal(t, 0.0, audio.RMSEnergy(nil))
	assert.Equal(t, 0.0, audio.RMSEnergy(make([]byte, 64)))

	pcm := make([]byte, 64)
	for i := 0; i < 32; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(16384))
	}
	assert.InDelta(t, 0.5, audio.RMSEnergy(pcm), 1e-9)
}

func TestFormat_Durations(t *testing.T) {
	f := audio.NewFormat(24000)
	assert.Equal(t, 960, f.BytesForDuration(20))
	assert.Equal(t, 20, f.DurationOf(960))
	assert.Equal(t, 0, f.BytesForDuration(-5))
	assert.Equal(t, audio.DefaultSampleRate, audio.NewFormat(0).SampleRate)
}

func TestWAV_Header(t *testing.T) {
	pcm := make([]byte, 480)
	out := audio.WAV(pcm, 24000)

	require.Len(t, out, 44+len(pcm))
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, "data", string(out[36:40]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(out[24:28]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(out[40:44]))
}

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	out, rate, err := audio.DecodeWAV(audio.WAV(pcm, 16000))
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, pcm, out)

	stereo := audio.WAV(pcm, 16000)
	binary.LittleEndian.PutUint16(stereo[22:24], 2)
	_, _, err = audio.DecodeWAV(stereo)
	assert.ErrorIs(t, err, audio.ErrUnsupportedWAV)

	_, _, err = audio.DecodeWAV(pcm)
	assert.ErrorIs(t, err, audio.ErrUnsupportedWAV)
	assert.False(t, audio.IsWAV(pcm))
}

func TestFrameBuffer_KeepLast(t *testing.T) {
	buf := audio.NewFrameBuffer(testFormat(), 1000)
	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, buf.Append(chunkOf(seq, byte(seq), 20)))
	}

	buf.KeepLast(50)
	assert.Equal(t, 60, buf.DurationMs())

	snap, err := buf.Commit()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), snap.FirstSeq)

	buf.KeepLast(50)
	assert.True(t, buf.Empty())
}
