package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"mediasort/internal/config"
)

// Requirement defines an external dependency mediasort relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the external binaries used with cfg. fpcalc is optional:
// without it music falls back to tags and MusicBrainz.
func Requirements(cfg *config.Config) []Requirement {
	binary := "fpcalc"
	if cfg != nil && strings.TrimSpace(cfg.AcoustID.FpcalcBinary) != "" {
		binary = cfg.AcoustID.FpcalcBinary
	}
	return []Requirement{{
		Name:        "Chromaprint",
		Command:     binary,
		Description: "Computes acoustic fingerprints for AcoustID lookups",
		Optional:    true,
	}}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

// FpcalcAvailable reports whether the configured fingerprint binary resolves.
func FpcalcAvailable(cfg *config.Config) bool {
	for _, status := range CheckBinaries(Requirements(cfg)) {
		if status.Command != "" && !status.Available {
			return false
		}
	}
	return true
}

func check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	if info, err := os.Stat(resolved); err != nil || !isExecutable(info) {
		status.Detail = fmt.Sprintf("binary %q is not executable", resolved)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
