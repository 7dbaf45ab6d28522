package watch

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/LegacyCodeHQ/quire/executor"
)

const (
	routeIndex  = "/"
	routeEvents = "/events"
)

const sseEventStatus = "status"

// buildStatus is the wire payload for SSE "status" events.
type buildStatus struct {
	RunID      string       `json:"runId,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	DurationMS int64        `json:"durationMs"`
	OK         bool         `json:"ok"`
	Error      string       `json:"error,omitempty"`
	Steps      []stepStatus `json:"steps"`
}

type stepStatus struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// newBuildStatus summarises one rebuild. report may be nil when the manifest
// could not be loaded.
func newBuildStatus(report *executor.Report, err error, elapsed time.Duration) buildStatus {
	status := buildStatus{
		Timestamp:  time.Now().UTC(),
		DurationMS: elapsed.Milliseconds(),
		OK:         err == nil,
		Steps:      []stepStatus{},
	}
	if err != nil {
		status.Error = err.Error()
	}
	if report == nil {
		return status
	}

	status.RunID = report.RunID
	for _, result := range report.Results {
		if result.Kind.IsAggregate() {
			continue
		}
		step := stepStatus{
			Name:       result.Step,
			Kind:       result.Kind.String(),
			DurationMS: result.Duration.Milliseconds(),
		}
		if result.Err != nil {
			step.Error = result.Err.Error()
		}
		status.Steps = append(status.Steps, step)
	}
	sort.Slice(status.Steps, func(i, j int) bool {
		return status.Steps[i].Name < status.Steps[j].Name
	})
	return status
}

func (s buildStatus) encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
