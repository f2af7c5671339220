package providers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
)

type cachedSynthesizer struct {
	next  Synthesizer
	cache *cache.TTLMap
}

// NewCachedSynthesizer replays audio for sentences synthesized recently with
// the same voice and model.
func NewCachedSynthesizer(next Synthesizer, ttlMap *cache.TTLMap) Synthesizer {
	return &cachedSynthesizer{next: next, cache: ttlMap}
}

func (c *cachedSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest, onAudio func([]byte) error) error {
	key := synthesisKey(req)
	if v, ok := c.cache.Get(key); ok {
		if audio, ok := v.([]byte); ok {
			return onAudio(audio)
		}
	}

	var buf bytes.Buffer
	err := c.next.Synthesize(ctx, req, func(chunk []byte) error {
		buf.Write(chunk)
		return onAudio(chunk)
	})
	if err != nil {
		return err
	}
	if buf.Len() > 0 {
		c.cache.Set(key, buf.Bytes())
	}
	return nil
}

func synthesisKey(req SynthesisRequest) string {
	h := sha256.New()
	for _, part := range []string{req.Model, req.Voice, req.Format, req.Text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
