package render

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSwap_RecordsAndRestores(t *testing.T) {
	rec := &Recorder{}
	restore := Swap(rec.Render)

	w := httptest.NewRecorder()
	PageStatus(w, httptest.NewRequest("GET", "/", nil), http.StatusNotFound, "error_not_found", "x")

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := rec.Last().Name; got != "error_not_found" {
		t.Errorf("template: got %q, want %q", got, "error_not_found")
	}

	restore()

	other := &Recorder{}
	defer Swap(other.Render)()
	Page(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), "group_list", nil)
	if len(rec.Calls) != 1 {
		t.Errorf("expected restored renderer to stop recording, got %d calls", len(rec.Calls))
	}
	if len(other.Calls) != 1 {
		t.Errorf("expected new renderer to record one call, got %d", len(other.Calls))
	}
}

func TestRecorder_LastEmpty(t *testing.T) {
	var rec Recorder
	if rec.Last().Name != "" {
		t.Error("expected zero Call from empty recorder")
	}
}
