// Package usage records API calls and their estimated cost in a JSON file.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.aimuz.me/quill/internal/types"
)

// FileName is the history file inside the data directory.
const FileName = "usage_history.json"

// Tracker appends usage records to a JSON array file. Writes within one
// process are serialized; concurrent processes are last-writer-wins.
type Tracker struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewTracker returns a Tracker storing history at path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path, now: time.Now}
}

// Record appends one call with its computed cost.
func (t *Tracker) Record(op types.Operation, model string, promptTokens, completionTokens int) error {
	rec := types.UsageRecord{
		Timestamp:        t.now().UTC(),
		OperationType:    op,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Cost:             Cost(model, promptTokens, completionTokens),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := t.load()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return t.save(records)
}

// Records returns the full history, oldest first.
func (t *Tracker) Records() ([]types.UsageRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// Statistics aggregates records with from <= Timestamp <= to. Nil bounds are
// open.
func (t *Tracker) Statistics(from, to *time.Time) (types.UsageStatistics, error) {
	records, err := t.Records()
	if err != nil {
		return types.UsageStatistics{}, err
	}
	return Aggregate(records, from, to), nil
}

// Aggregate sums the records inside the window.
func Aggregate(records []types.UsageRecord, from, to *time.Time) types.UsageStatistics {
	stats := types.UsageStatistics{Operations: map[types.Operation]int{}}
	for _, r := range records {
		if from != nil && r.Timestamp.Before(*from) {
			continue
		}
		if to != nil && r.Timestamp.After(*to) {
			continue
		}
		stats.Operations[r.OperationType]++
		stats.TotalRequests++
		stats.TotalPromptTokens += r.PromptTokens
		stats.TotalCompletionTokens += r.CompletionTokens
		stats.TotalTokens += r.TotalTokens
		stats.TotalCost += r.Cost
	}
	return stats
}

// Clear deletes the history file.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove usage history: %w", err)
	}
	return nil
}

func (t *Tracker) load() ([]types.UsageRecord, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read usage history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []types.UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal usage history: %w", err)
	}
	return records, nil
}

func (t *Tracker) save(records []types.UsageRecord) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("create usage dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal usage history: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0600); err != nil {
		return fmt.Errorf("write usage history: %w", err)
	}
	return nil
}
