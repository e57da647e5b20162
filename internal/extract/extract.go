// Package extract turns a receipt image and splitting instructions into a raw
// bill payload by asking a vision model.
//
// The payload is only decoded here, not repaired; callers pass it to the
// normalize package. A failed extraction never produces a bill.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/mmynk/fairshare/internal/schema"
)

var (
	// ErrMissingCredentials means no model API key is configured.
	ErrMissingCredentials = errors.New("extraction credentials not configured")

	// ErrEmptyRequest means neither an image nor instructions were supplied.
	ErrEmptyRequest = errors.New("image or instructions required")

	// ErrInvalidImage means the image is too large or not a supported format.
	ErrInvalidImage = errors.New("invalid receipt image")

	// ErrUpstream means the model API call failed.
	ErrUpstream = errors.New("extraction service unavailable")

	// ErrMalformedResponse means the model answered with an unusable payload.
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// Defaults for Config fields left at zero.
const (
	DefaultModel         = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens     = 4096
	DefaultRatePerMinute = 30
	DefaultMaxImageBytes = 5 << 20
)

var supportedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Extractor produces a raw bill from a request.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*schema.RawBill, error)
}

// Request is one receipt to extract.
type Request struct {
	Image []byte

	// MediaType is sniffed from Image when empty.
	MediaType string

	// Instructions describe in natural language who had what.
	Instructions string
}

// Config tunes the extraction service.
type Config struct {
	Model         string
	MaxTokens     int64
	RatePerMinute int
	MaxImageBytes int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.RatePerMinute <= 0 {
		c.RatePerMinute = DefaultRatePerMinute
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
	return c
}

// Service implements Extractor on top of a model Client.
type Service struct {
	client  Client
	cfg     Config
	limiter *rate.Limiter
}

// NewService creates a Service. A nil client makes every call fail with
// ErrMissingCredentials.
func NewService(client Client, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute),
	}
}

// Extract sends the request to the model and decodes its answer.
func (s *Service) Extract(ctx context.Context, req Request) (*schema.RawBill, error) {
	if s.client == nil {
		return nil, eris.Wrap(ErrMissingCredentials, "extract")
	}

	mediaType, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: wait for rate limiter")
	}

	start := time.Now()
	resp, err := s.client.CreateMessage(ctx, MessageRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    SystemPrompt,
		Image:     req.Image,
		MediaType: mediaType,
		Text:      userText(req.Instructions, len(req.Image) > 0),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, eris.Wrap(ctxErr, "extract: create message")
		}
		return nil, eris.Wrapf(ErrUpstream, "extract: %v", err)
	}

	slog.Info("Extraction complete",
		"model", resp.Model,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start),
	)

	raw, err := decodeResponse(resp)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "extract: %v", err)
	}
	return raw, nil
}

func (s *Service) validate(req Request) (string, error) {
	if len(req.Image) == 0 && strings.TrimSpace(req.Instructions) == "" {
		return "", eris.Wrap(ErrEmptyRequest, "extract")
	}
	if len(req.Image) == 0 {
		return "", nil
	}
	if len(req.Image) > s.cfg.MaxImageBytes {
		return "", eris.Wrapf(ErrInvalidImage, "extract: image is %d bytes, limit %d", len(req.Image), s.cfg.MaxImageBytes)
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = http.DetectContentType(req.Image)
	}
	if !supportedMediaTypes[mediaType] {
		return "", eris.Wrapf(ErrInvalidImage, "extract: unsupported media type %q", mediaType)
	}
	return mediaType, nil
}

func decodeResponse(resp *MessageResponse) (*schema.RawBill, error) {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	obj, err := schema.ExtractObject([]byte(text.String()))
	if err != nil {
		return nil, err
	}
	return schema.Decode(obj)
}
