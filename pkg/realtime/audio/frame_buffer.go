package audio

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
)

var (
	ErrBufferOverflow  = domain.NewError(domain.CodeBufferOverflow, "maximum turn duration exceeded")
	ErrOutOfOrderChunk = domain.NewError(domain.CodeOutOfOrderChunk, "audio chunk received out of order")
	ErrEmptyBuffer     = domain.NewError(domain.CodeEmptyBuffer, "input audio buffer is empty")
	ErrInvalidChunk    = domain.NewError(domain.CodeProtocol, "audio chunk must be non-empty pcm16")
)

// Chunk is one client audio frame with its arrival sequence.
type Chunk struct {
	Seq  uint64
	Data []byte
}

// Snapshot is the immutable span detached from the buffer on commit.
type Snapshot struct {
	Data       []byte
	FirstSeq   uint64
	LastSeq    uint64
	DurationMs int
	Format     Format
}

// FrameBuffer accumulates the audio of one open turn. It is owned by a single
// session worker and is not safe for concurrent use.
type FrameBuffer struct {
	format   Format
	maxBytes int
	chunks   []Chunk
	size     int
	lastSeq  uint64
	seen     bool
}

func NewFrameBuffer(format Format, maxTurnDurationMs int) *FrameBuffer {
	return &FrameBuffer{
		format:   format,
		maxBytes: format.BytesForDuration(maxTurnDurationMs),
	}
}

// Append adds chunk to the open turn. The buffer is left unchanged on error.
func (b *FrameBuffer) Append(chunk Chunk) error {
	if len(chunk.Data) == 0 || len(chunk.Data)%bytesPerSample != 0 {
		return ErrInvalidChunk
	}
	if b.seen && chunk.Seq <= b.lastSeq {
		return ErrOutOfOrderChunk
	}
	if b.maxBytes > 0 && b.size+len(chunk.Data) > b.maxBytes {
		return ErrBufferOverflow
	}
	data := make([]byte, len(chunk.Data))
	copy(data, chunk.Data)
	b.chunks = append(b.chunks, Chunk{Seq: chunk.Seq, Data: data})
	b.size += len(data)
	b.lastSeq = chunk.Seq
	b.seen = true
	return nil
}

// PeekWindow returns a copy of the most recent ms of audio.
func (b *FrameBuffer) PeekWindow(ms int) []byte {
	want := b.format.BytesForDuration(ms)
	if want > b.size {
		want = b.size
	}
	if want <= 0 {
		return nil
	}
	out := make([]byte, want)
	pos := want
	for i := len(b.chunks) - 1; i >= 0 && pos > 0; i-- {
		data := b.chunks[i].Data
		if len(data) >= pos {
			copy(out[:pos], data[len(data)-pos:])
			pos = 0
			break
		}
		copy(out[pos-len(data):pos], data)
		pos -= len(data)
	}
	return out
}

// Commit detaches the accumulated span and resets the buffer.
func (b *FrameBuffer) Commit() (*Snapshot, error) {
	if len(b.chunks) == 0 {
		return nil, ErrEmptyBuffer
	}
	data := make([]byte, 0, b.size)
	for _, c := range b.chunks {
		data = append(data, c.Data...)
	}
	snap := &Snapshot{
		Data:       data,
		FirstSeq:   b.chunks[0].Seq,
		LastSeq:    b.chunks[len(b.chunks)-1].Seq,
		DurationMs: b.format.DurationOf(len(data)),
		Format:     b.format,
	}
	b.chunks = nil
	b.size = 0
	return snap, nil
}

// Truncate discards every chunk with a sequence strictly before uptoSeq.
func (b *FrameBuffer) Truncate(uptoSeq uint64) {
	i := 0
	for i < len(b.chunks) && b.chunks[i].Seq < uptoSeq {
		b.size -= len(b.chunks[i].Data)
		i++
	}
	b.chunks = append([]Chunk(nil), b.chunks[i:]...)
}

// KeepLast drops whole chunks from the front while at least ms of audio
// would remain. It bounds the pre-speech padding kept while nobody talks.
func (b *FrameBuffer) KeepLast(ms int) {
	keep := b.format.BytesForDuration(ms)
	i := 0
	for i < len(b.chunks) && b.size-len(b.chunks[i].Data) >= keep {
		b.size -= len(b.chunks[i].Data)
		i++
	}
	if i > 0 {
		b.chunks = append([]Chunk(nil), b.chunks[i:]...)
	}
}

// Clear discards all buffered audio. The sequence position is kept.
func (b *FrameBuffer) Clear() {
	b.chunks = nil
	b.size = 0
}

func (b *FrameBuffer) Len() int {
	return b.size
}

func (b *FrameBuffer) DurationMs() int {
	return b.format.DurationOf(b.size)
}

func (b *FrameBuffer) LastSeq() uint64 {
	return b.lastSeq
}

func (b *FrameBuffer) Format() Format {
	return b.format
}

func (b *FrameBuffer) Empty() bool {
	return len(b.chunks) == 0
}
