package acoustid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"mediasort/internal/services"
)

// Fingerprint is the Chromaprint output for one audio file.
type Fingerprint struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// Seconds returns the duration rounded to whole seconds as AcoustID expects.
func (f Fingerprint) Seconds() int {
	return int(math.Round(f.Duration))
}

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Fingerprinter runs fpcalc against audio files.
type Fingerprinter struct {
	binary string
	exec   Executor
}

// NewFingerprinter creates a fingerprinter for the given fpcalc binary.
func NewFingerprinter(binary string, exec Executor) *Fingerprinter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "fpcalc"
	}
	if exec == nil {
		exec = commandExecutor{}
	}
	return &Fingerprinter{binary: binary, exec: exec}
}

// Compute fingerprints path.
func (f *Fingerprinter) Compute(ctx context.Context, path string) (Fingerprint, error) {
	out, err := f.exec.Output(ctx, f.binary, []string{"-json", path})
	if err != nil {
		return Fingerprint{}, services.Wrap(services.ErrExternalTool, "acoustid", "fpcalc", "fingerprint failed", err)
	}
	var fp Fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return Fingerprint{}, services.Wrap(services.ErrExternalTool, "acoustid", "fpcalc", "decode output", err)
	}
	if strings.TrimSpace(fp.Fingerprint) == "" {
		return Fingerprint{}, services.Wrap(services.ErrExternalTool, "acoustid", "fpcalc", "empty fingerprint", errors.New(path))
	}
	return fp, nil
}
