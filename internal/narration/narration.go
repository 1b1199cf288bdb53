// Package narration synthesizes speech for annotations. Engines are
// constructed explicitly and owned by one generation job.
package narration

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
)

// ErrUnavailable is returned when a speech engine cannot be used on this machine.
var ErrUnavailable = errors.New("speech synthesizer unavailable")

// DefaultRate is the speaking rate in words per minute.
const DefaultRate = 150

// minClip is the shortest estimated narration in seconds.
const minClip = 2.0

// Synthesizer writes speech for text into a file whose name starts with
// base and returns the full path. An empty path means nothing was produced.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, base string) (string, error)
}

// EstimateDuration predicts how long text takes to speak at wpm words per minute.
func EstimateDuration(text string, wpm int) float64 {
	if wpm <= 0 {
		wpm = DefaultRate
	}
	words := len(strings.Fields(text))
	return math.Max(float64(words)*60/float64(wpm), minClip)
}

// Options selects and tunes an engine.
type Options struct {
	// Engine is "openai", "system", "none" or "auto".
	Engine string
	Rate   int
	APIKey string
	Voice  string
	Model  string
}

// New builds the requested engine. An engine that is unavailable degrades
// to Nop with a warning instead of failing the run.
func New(opts Options) Synthesizer {
	var (
		s   Synthesizer
		err error
	)
	switch strings.ToLower(opts.Engine) {
	case "none", "":
		return Nop{}
	case "openai":
		s, err = NewOpenAI(opts)
	case "system":
		s, err = NewCommand(opts.Rate)
	default:
		s, err = NewOpenAI(opts)
		if err != nil {
			s, err = NewCommand(opts.Rate)
		}
	}
	if err != nil {
		log.Printf("[!] Озвучка отключена: %v", err)
		return Nop{}
	}
	return s
}

// Nop produces no audio.
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Synthesize(context.Context, string, string) (string, error) { return "", nil }
