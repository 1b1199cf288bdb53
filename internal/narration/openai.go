package narration

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const maxRetries = 3

// OpenAI speaks through the OpenAI text-to-speech endpoint.
type OpenAI struct {
	client openai.Client
	model  string
	voice  string
	speed  float64
}

// NewOpenAI needs an API key; without one the engine is unavailable.
func NewOpenAI(opts Options) (*OpenAI, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrUnavailable)
	}

	model := opts.Model
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}
	voice := opts.Voice
	if voice == "" {
		voice = "alloy"
	}

	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(key)),
		model:  model,
		voice:  voice,
		speed:  speedFor(opts.Rate),
	}, nil
}

// speedFor maps words per minute onto the API speed multiplier, where 1.0
// corresponds to DefaultRate.
func speedFor(wpm int) float64 {
	if wpm <= 0 {
		return 1.0
	}
	s := float64(wpm) / DefaultRate
	if s < 0.25 {
		s = 0.25
	}
	if s > 4.0 {
		s = 4.0
	}
	return s
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, text, base string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		Speed:          openai.Float(o.speed),
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		path, err := o.request(ctx, params, base+".mp3")
		if err == nil {
			return path, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		}
	}
	return "", fmt.Errorf("openai speech: %w", lastErr)
}

func (o *OpenAI) request(ctx context.Context, params openai.AudioSpeechNewParams, path string) (string, error) {
	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

func isRetryable(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "500") ||
		strings.Contains(s, "server_error")
}
