package http

import (
	"context"
	"io"
	"strconv"

	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type transcribeHandler struct {
	logger      *logrus.Logger
	transcriber providers.Transcriber
	sampleRate  int
}

func NewTranscribeHandler(logger *logrus.Logger, transcriber providers.Transcriber, sampleRate int) Handler {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &transcribeHandler{
		logger:      logger,
		transcriber: transcriber,
		sampleRate:  sampleRate,
	}
}

// Handle @Summary Transcribe an audio file
// @Description Transcribes a mono 16-bit wav file or raw pcm16 audio. With stream=true partial transcripts are sent as server-sent events
// @Tags Voice
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file"
// @Param language query string false "Spoken language"
// @Param sample_rate query int false "Sample rate of raw pcm16 uploads"
// @Param stream query bool false "Stream partial transcripts"
// @Success 200 {object} response.TranscriptionOutput "Transcript"
// @Failure 400 {object} map[string]interface{} "Invalid audio"
// @Failure 502 {object} map[string]interface{} "Transcription backend failed"
// @Router /v1/transcribe [post]
func (h *transcribeHandler) Handle(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Error("failed to open uploaded audio")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file"})
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.WithError(err).Error("failed to read uploaded audio")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file"})
	}

	pcm, sampleRate, err := h.decode(c, data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req := providers.TranscriptionRequest{
		Audio:      pcm,
		SampleRate: sampleRate,
		Language:   c.Query("language"),
	}
	durationMs := audio.NewFormat(sampleRate).DurationOf(len(pcm))

	if c.QueryBool("stream") {
		return streamEvents(c, h.logger, func(ctx context.Context, send func(v interface{}) error) error {
			text, err := h.transcriber.Transcribe(ctx, req, func(delta string) error {
				return send(response.TranscriptionOutput{Text: delta})
			})
			if err != nil {
				return err
			}
			return send(response.TranscriptionOutput{Text: text, DurationMs: durationMs, Done: true})
		})
	}

	text, err := h.transcriber.Transcribe(c.Context(), req, func(string) error { return nil })
	if err != nil {
		h.logger.WithError(err).WithField("file", fileHeader.Filename).Error("transcription failed")
		return c.Status(backendStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(response.TranscriptionOutput{Text: text, DurationMs: durationMs, Done: true})
}

func (h *transcribeHandler) decode(c *fiber.Ctx, data []byte) ([]byte, int, error) {
	if audio.IsWAV(data) {
		pcm, rate, err := audio.DecodeWAV(data)
		if err != nil {
			return nil, 0, err
		}
		if len(pcm) == 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "audio is empty")
		}
		return pcm, rate, nil
	}
	if len(data) == 0 || len(data)%2 != 0 {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "audio must be wav or non-empty pcm16")
	}
	rate := h.sampleRate
	if raw := c.Query("sample_rate"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "sample_rate must be a positive integer")
		}
		rate = v
	}
	return data, rate, nil
}
