package http

import (
	"bytes"
	"strings"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	maxSpeechInput = 4096

	speechFormatWAV = "wav"
	speechFormatPCM = "pcm"
)

type speechHandler struct {
	logger       *logrus.Logger
	synthesizer  providers.Synthesizer
	defaultVoice string
	sampleRate   int
}

func NewSpeechHandler(logger *logrus.Logger, synthesizer providers.Synthesizer, defaultVoice string, sampleRate int) Handler {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &speechHandler{
		logger:       logger,
		synthesizer:  synthesizer,
		defaultVoice: defaultVoice,
		sampleRate:   sampleRate,
	}
}

// Handle @Summary Synthesize speech
// @Description Synthesizes input with the configured speech backend and returns the audio as a wav file or raw pcm16
// @Tags Voice
// @Produce audio/wav
// @Param input query string true "Text to speak"
// @Param voice query string false "Voice name"
// @Param response_format query string false "wav (default) or pcm"
// @Success 200 {file} binary "Audio"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Synthesis backend failed"
// @Router /v1/speech [get]
func (h *speechHandler) Handle(c *fiber.Ctx) error {
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "input is required"})
	}
	if len(input) > maxSpeechInput {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "input is too long"})
	}
	voice := c.Query("voice", h.defaultVoice)
	if len(voice) > session.MaxVoiceLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "voice name too long"})
	}
	format := c.Query("response_format", speechFormatWAV)
	if format != speechFormatWAV && format != speechFormatPCM {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "response_format must be wav or pcm"})
	}

	var buf bytes.Buffer
	err := h.synthesizer.Synthesize(c.Context(), providers.SynthesisRequest{
		Text:   input,
		Voice:  voice,
		Format: speechFormatPCM,
	}, func(chunk []byte) error {
		buf.Write(chunk)
		return nil
	})
	if err != nil {
		h.logger.WithError(err).WithField("voice", voice).Error("speech synthesis failed")
		return c.Status(backendStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	body := buf.Bytes()
	contentType := "audio/pcm"
	if format == speechFormatWAV {
		body = audio.WAV(body, h.sampleRate)
		contentType = "audio/wav"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=speech."+format)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Status(fiber.StatusOK).Send(body)
}
