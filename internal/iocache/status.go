package iocache

import (
	"fmt"
	"io"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/internal/outwriter"
	"github.com/huangsam/doxycov/schema"
)

// PrintHistoryStatus prints the status of the manager's store, or a
// disconnected summary when history is disabled.
func PrintHistoryStatus(w io.Writer, mgr contract.HistoryManager) error {
	store := mgr.GetHistoryStore()
	if store == nil {
		outwriter.WriteHistoryStatus(w, schema.HistoryStatus{Backend: string(schema.NoneBackend)})
		return nil
	}
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	outwriter.WriteHistoryStatus(w, status)
	return nil
}

// PrintHistoryRuns lists every stored run in the configured output format.
func PrintHistoryRuns(mgr contract.HistoryManager, cfg *contract.Config) error {
	store := mgr.GetHistoryStore()
	if store == nil {
		return fmt.Errorf("history is disabled; set --history-backend")
	}
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	return outwriter.WriteHistoryRuns(runs, cfg)
}
