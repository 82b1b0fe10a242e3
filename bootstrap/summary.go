package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/walletmux/component"
)

// Entry is a free-form line of the startup summary.
type Entry struct {
	Label  string
	Detail string
}

// Summary collects what is printed once startup completes.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	entries         []Entry
}

// NewSummary creates a summary for a service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Track adds a line under "Wiring", e.g. the active wallet.
func (s *Summary) Track(label, detail string) {
	s.entries = append(s.entries, Entry{Label: label, Detail: detail})
}

// Write prints the summary with live component health.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	if registry != nil {
		descs := registry.Describe()
		health := registry.HealthAll(ctx)
		if len(descs) == 0 {
			fmt.Fprintf(w, "   └── no components registered\n")
		} else {
			fmt.Fprintf(w, "\nComponents\n")
		}
		for i, d := range descs {
			status := component.HealthStatus("unknown")
			if i < len(health) {
				status = health[i].Status
			}
			line := fmt.Sprintf("%s %s [%s]", healthIcon(status), d.Name, d.Type)
			if d.Details != "" {
				line += ": " + d.Details
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(descs)), line)
		}
	}

	if len(s.entries) > 0 {
		fmt.Fprintf(w, "\nWiring\n")
		for i, e := range s.entries {
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(s.entries)), e.Label, e.Detail)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
