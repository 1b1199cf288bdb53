package narration

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Command speaks through a local text-to-speech program.
type Command struct {
	binary string
	rate   int
}

// speakers are tried in order; the first one found in PATH is used.
var speakers = []string{"espeak-ng", "espeak", "say"}

// NewCommand picks the first installed local speech program.
func NewCommand(rate int) (*Command, error) {
	if rate <= 0 {
		rate = DefaultRate
	}
	for _, name := range speakers {
		if path, err := exec.LookPath(name); err == nil {
			return &Command{binary: path, rate: rate}, nil
		}
	}
	return nil, fmt.Errorf("%w: none of %s found in PATH", ErrUnavailable, strings.Join(speakers, ", "))
}

func (c *Command) Name() string { return "system" }

func (c *Command) Synthesize(ctx context.Context, text, base string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	path, args := commandArgs(c.binary, c.rate, text, base)
	if out, err := exec.CommandContext(ctx, c.binary, args...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %v: %s", c.binary, err, out)
	}
	return path, nil
}

// commandArgs returns the output file and arguments for the given program.
func commandArgs(binary string, rate int, text, base string) (string, []string) {
	if strings.HasSuffix(binary, "say") {
		path := base + ".aiff"
		return path, []string{"-r", strconv.Itoa(rate), "-o", path, text}
	}
	path := base + ".wav"
	return path, []string{"-s", strconv.Itoa(rate), "-w", path, text}
}
