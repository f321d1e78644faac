// Package usage keeps the daily and monthly call counts of the web search
// providers in a small JSON file.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"school-chatbot-be/internal/pkg/logger"
)

const dateLayout = "2006-01-02"

// Counter is the persisted state of one provider.
type Counter struct {
	DailyCount   int    `json:"dailyCount"`
	MonthlyCount int    `json:"monthlyCount"`
	LastReset    string `json:"lastReset"`
}

// Limit of zero or less means unlimited.
type Limit struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

// Tracker reads and writes the usage file on every call. Writes from other
// processes between a read and the following write are lost.
type Tracker struct {
	path   string
	limits map[string]Limit
	logger logger.ILogger
	now    func() time.Time

	mu sync.Mutex
}

func NewTracker(path string, limits map[string]Limit, log logger.ILogger) *Tracker {
	return &Tracker{
		path:   path,
		limits: limits,
		logger: log,
		now:    time.Now,
	}
}

// Allow reports whether provider is still under its daily and monthly limits.
func (t *Tracker) Allow(provider string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	counters, err := t.load()
	if err != nil {
		return false, err
	}
	c, changed := t.reset(counters[provider])
	if changed {
		counters[provider] = c
		if err := t.save(counters); err != nil {
			return false, err
		}
	}

	l := t.limits[provider]
	if l.Daily > 0 && c.DailyCount >= l.Daily {
		t.logger.Warn("USAGE", "Daily search quota reached", map[string]interface{}{
			"provider": provider,
			"count":    c.DailyCount,
			"limit":    l.Daily,
		})
		return false, nil
	}
	if l.Monthly > 0 && c.MonthlyCount >= l.Monthly {
		t.logger.Warn("USAGE", "Monthly search quota reached", map[string]interface{}{
			"provider": provider,
			"count":    c.MonthlyCount,
			"limit":    l.Monthly,
		})
		return false, nil
	}
	return true, nil
}

// Increment records one successful call.
func (t *Tracker) Increment(provider string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	counters, err := t.load()
	if err != nil {
		return err
	}
	c, _ := t.reset(counters[provider])
	c.DailyCount++
	c.MonthlyCount++
	counters[provider] = c
	return t.save(counters)
}

// Snapshot returns the current counters with stale periods already reset.
func (t *Tracker) Snapshot() (map[string]Counter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	counters, err := t.load()
	if err != nil {
		return nil, err
	}
	for name := range t.limits {
		if _, ok := counters[name]; !ok {
			counters[name] = Counter{}
		}
	}
	for name, c := range counters {
		counters[name], _ = t.reset(c)
	}
	return counters, nil
}

func (t *Tracker) Limits() map[string]Limit {
	out := make(map[string]Limit, len(t.limits))
	for k, v := range t.limits {
		out[k] = v
	}
	return out
}

// reset zeroes the daily count when the day changed and the monthly count when
// the month changed. Calling it twice on the same day is a no-op.
func (t *Tracker) reset(c Counter) (Counter, bool) {
	today := t.now().Format(dateLayout)
	if c.LastReset == today {
		return c, false
	}

	last, err := time.Parse(dateLayout, c.LastReset)
	if err != nil || last.Format("2006-01") != today[:7] {
		c.MonthlyCount = 0
	}
	c.DailyCount = 0
	c.LastReset = today
	return c, true
}

func (t *Tracker) load() (map[string]Counter, error) {
	counters := make(map[string]Counter)
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return counters, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read usage file: %w", err)
	}
	if len(data) == 0 {
		return counters, nil
	}
	if err := json.Unmarshal(data, &counters); err != nil {
		t.logger.Error("USAGE", "Usage file is corrupt, starting from zero", map[string]interface{}{
			"path":  t.path,
			"error": err,
		})
		return make(map[string]Counter), nil
	}
	return counters, nil
}

func (t *Tracker) save(counters map[string]Counter) error {
	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create usage dir: %w", err)
		}
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write usage file: %w", err)
	}
	return nil
}
