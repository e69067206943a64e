package logging

import "testing"

func TestNew(t *testing.T) {
	for _, production := range []bool{true, false} {
		logger, err := New(production)
		if err != nil {
			t.Fatalf("production=%v: %v", production, err)
		}
		logger.Info("hello")
		_ = logger.Sync()
	}
}
