package services

import (
	"context"
	"encoding/json"
	"testing"

	"bounty-board/models"
)

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) PutObject(_ context.Context, key string, body []byte, _ string) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

func TestArchiveKey(t *testing.T) {
	b := models.Bounty{
		ID:         "7f3c",
		CustomerID: "Bankless DAO",
		Title:      "Write the Q3 Report!",
		Status:     models.BountyStatusCompleted,
	}
	want := "bounties/bankless-dao/completed/write-the-q3-report-7f3c.json"
	if got := ArchiveKey(b); got != want {
		t.Errorf("ArchiveKey = %q, want %q", got, want)
	}
}

func TestArchiveOnlyTerminal(t *testing.T) {
	store := &memObjects{}
	a := NewArchiver(store)
	ctx := context.Background()

	open := models.Bounty{ID: "1", CustomerID: "c", Title: "open", Status: models.BountyStatusOpen}
	if err := a.Archive(ctx, open); err != nil {
		t.Fatal(err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("non-terminal bounty archived: %v", store.objects)
	}

	done := models.Bounty{ID: "2", CustomerID: "c", Title: "done", Status: models.BountyStatusDeleted}
	if err := a.Archive(ctx, done); err != nil {
		t.Fatal(err)
	}
	body, ok := store.objects[ArchiveKey(done)]
	if !ok {
		t.Fatalf("terminal bounty not archived: %v", store.objects)
	}
	var got models.Bounty
	if err := json.Unmarshal(body, &got); err != nil || got.ID != "2" {
		t.Errorf("archived body = %s (%v)", body, err)
	}

	var nilArchiver *Archiver
	if err := nilArchiver.Archive(ctx, done); err != nil {
		t.Errorf("nil archiver: %v", err)
	}
}
