package stage_test

import (
	"testing"

	"sortline/internal/stage"
)

func TestHealthConstructors(t *testing.T) {
	ok := stage.Healthy("conveyor")
	if !ok.Ready || ok.Name != "conveyor" || ok.Detail != "" {
		t.Fatalf("unexpected healthy record %+v", ok)
	}
	bad := stage.Unhealthy("sorter", "missing bin for circle")
	if bad.Ready || bad.Detail != "missing bin for circle" {
		t.Fatalf("unexpected unhealthy record %+v", bad)
	}
}

func TestWorkingIsReadyAndBusy(t *testing.T) {
	h := stage.Working("conveyor", "square#1")
	if !h.Ready || !h.Busy || h.Detail != "square#1" {
		t.Fatalf("unexpected working record %+v", h)
	}
}
