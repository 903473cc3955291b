package state

import (
	"github.com/fedcloud/catalogd/helper/testlog"
)

// TestStateStore returns a fresh store for testing.
func TestStateStore(t testlog.LogPrinter) *StateStore {
	store, err := NewStateStore(testlog.HCLogger(t))
	if err != nil {
		panic(err)
	}
	return store
}
