// Package deps reports whether the external binaries tubecast shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tubecast/internal/config"
	"tubecast/internal/services"
)

// Requirement defines an external binary tubecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the binaries needed for cfg.
func Requirements(cfg *config.Config) []Requirement {
	defaults := config.Default()
	if cfg == nil {
		cfg = &defaults
	}
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YtDlpPath,
			Description: "Required for playlist enumeration and audio download",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpegPath,
			Description: "Required for MP3 transcoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobePath,
			Description: "Measures episode duration when metadata omits it",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Missing returns a DependencyError naming every unavailable required binary,
// or nil when all are present.
func Missing(statuses []Status) error {
	var names []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(names) == 0 {
		return nil
	}
	return services.Wrap(services.ErrDependency, "", "check dependencies",
		"missing required tools: "+strings.Join(names, ", ")+"; install them or set the [tools] paths", nil)
}

// Available reports whether the named dependency was found.
func Available(statuses []Status, name string) bool {
	for _, status := range statuses {
		if status.Name == name {
			return status.Available
		}
	}
	return false
}
