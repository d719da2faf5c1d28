package hook

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilebiz/agileai/internal/fsutil"
)

// MetricsSchemaVersion is the current schema version for hook metrics.
const MetricsSchemaVersion = "agileai.hooks.metrics/v1"

// Sample records one hook execution.
type Sample struct {
	DurationMS int64
	ExitCode   int
	TimedOut   bool
}

// HookMetrics is the rolling aggregate for a single hook.
type HookMetrics struct {
	Count    int       `json:"count"`
	Failures int       `json:"failures"`
	Timeouts int       `json:"timeouts"`
	TotalMS  int64     `json:"total_ms"`
	MinMS    int64     `json:"min_ms"`
	MaxMS    int64     `json:"max_ms"`
	LastRun  time.Time `json:"last_run"`
	LastExit int       `json:"last_exit"`
}

// metricsFile is the on-disk shape of metrics.json.
type metricsFile struct {
	Schema string                 `json:"schema"`
	Hooks  map[string]HookMetrics `json:"hooks"`
}

// Aggregate is the derived view served by /api/hooks/performance.
type Aggregate struct {
	Count       int       `json:"count"`
	Failures    int       `json:"failures"`
	Timeouts    int       `json:"timeouts"`
	AvgMS       int64     `json:"avg_ms"`
	MinMS       int64     `json:"min_ms"`
	MaxMS       int64     `json:"max_ms"`
	FailureRate float64   `json:"failure_rate"`
	LastRun     time.Time `json:"last_run"`
	LastExit    int       `json:"last_exit"`
}

// MetricsStore persists per-hook execution metrics to a JSON file.
type MetricsStore struct {
	path string
	mu   sync.Mutex
}

// NewMetricsStore creates a MetricsStore backed by the given file.
func NewMetricsStore(path string) *MetricsStore {
	return &MetricsStore{path: path}
}

// Record folds one execution sample into the named hook's aggregate.
func (m *MetricsStore) Record(name string, s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := m.read()
	if err != nil {
		return err
	}

	hm := file.Hooks[name]
	hm.Count++
	hm.TotalMS += s.DurationMS
	if hm.Count == 1 || s.DurationMS < hm.MinMS {
		hm.MinMS = s.DurationMS
	}
	if s.DurationMS > hm.MaxMS {
		hm.MaxMS = s.DurationMS
	}
	if s.ExitCode != 0 || s.TimedOut {
		hm.Failures++
	}
	if s.TimedOut {
		hm.Timeouts++
	}
	hm.LastRun = time.Now().UTC()
	hm.LastExit = s.ExitCode
	file.Hooks[name] = hm

	return m.write(file)
}

// Aggregate computes the performance view across all recorded hooks.
func (m *MetricsStore) Aggregate() (map[string]Aggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := m.read()
	if err != nil {
		return nil, err
	}

	out := make(map[string]Aggregate, len(file.Hooks))
	for name, hm := range file.Hooks {
		agg := Aggregate{
			Count:    hm.Count,
			Failures: hm.Failures,
			Timeouts: hm.Timeouts,
			MinMS:    hm.MinMS,
			MaxMS:    hm.MaxMS,
			LastRun:  hm.LastRun,
			LastExit: hm.LastExit,
		}
		if hm.Count > 0 {
			agg.AvgMS = hm.TotalMS / int64(hm.Count)
			agg.FailureRate = float64(hm.Failures) / float64(hm.Count)
		}
		out[name] = agg
	}
	return out, nil
}

// read loads the metrics file, defaulting to an empty document.
// Caller holds the mutex.
func (m *MetricsStore) read() (*metricsFile, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &metricsFile{Schema: MetricsSchemaVersion, Hooks: map[string]HookMetrics{}}, nil
		}
		return nil, fmt.Errorf("reading hook metrics: %w", err)
	}

	var file metricsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing hook metrics: %w", err)
	}
	if file.Hooks == nil {
		file.Hooks = map[string]HookMetrics{}
	}
	return &file, nil
}

// write persists the metrics file. Caller holds the mutex.
func (m *MetricsStore) write(file *metricsFile) error {
	if file.Schema == "" {
		file.Schema = MetricsSchemaVersion
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hook metrics: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing hook metrics: %w", err)
	}
	return nil
}
