package botlog

import (
	"fmt"
	"testing"
	"time"

	"PocketSim/internal/model"
)

func TestBook_CapAndOrder(t *testing.T) {
	b := NewBook(3)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		b.Add(model.BotLog{Timestamp: now, Action: model.ActionAnalyzing, Reason: fmt.Sprint(i)})
	}
	got := b.Entries()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, want := range []string{"4", "3", "2"} {
		if got[i].Reason != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, got[i].Reason)
		}
		if got[i].ID == "" {
			t.Errorf("entry %d: missing id", i)
		}
	}
	if got[0].ID == got[1].ID {
		t.Error("expected unique ids")
	}
}

func TestBook_KeepsExplicitID(t *testing.T) {
	b := NewBook(0)
	e := b.Add(model.BotLog{ID: "fixed", Action: model.ActionWaiting})
	if e.ID != "fixed" {
		t.Errorf("expected caller id to be kept, got %s", e.ID)
	}
	got := b.Entries()
	got[0].ID = "changed"
	if b.Entries()[0].ID != "fixed" {
		t.Error("Entries must return a copy")
	}
}
