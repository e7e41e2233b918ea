package apply

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Record is the last successful apply, saved beside the log so a later look
// can tell which file went up and through which strategy.
type Record struct {
	Path      string    `json:"path"`
	Strategy  string    `json:"strategy"`
	AppliedAt time.Time `json:"applied_at"`
	Run       string    `json:"run,omitempty"`
}

// StatePath returns the record location inside home.
func StatePath(home string) string { return filepath.Join(home, ".wallset-state.json") }

// LastApplied loads the record saved by a previous successful run.
func LastApplied(home string) (Record, error) {
	b, err := os.ReadFile(StatePath(home))
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// saveRecord writes rec via a temp file and rename. Best effort: a failure
// never changes the run's outcome.
func (a *Applier) saveRecord(rec Record) {
	if a.statePath == "" {
		return
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return
	}
	tmp := a.statePath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		a.log.Debug().Err(err).Msg("apply record not written")
		return
	}
	if err := os.Rename(tmp, a.statePath); err != nil {
		a.log.Debug().Err(err).Msg("apply record not written")
	}
}
