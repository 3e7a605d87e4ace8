package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gosimple/slug"

	"bounty-board/models"
)

// ObjectWriter is the part of an object store the archiver needs.
type ObjectWriter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// Archiver keeps a JSON copy of every bounty that reaches a terminal status.
type Archiver struct {
	Store ObjectWriter
}

func NewArchiver(store ObjectWriter) *Archiver {
	return &Archiver{Store: store}
}

// ArchiveKey is "bounties/<customer>/<status>/<title>-<id>.json".
func ArchiveKey(b models.Bounty) string {
	customer := slug.Make(b.CustomerID)
	if customer == "" {
		customer = "unknown"
	}
	return fmt.Sprintf("bounties/%s/%s/%s-%s.json",
		customer, slug.Make(string(b.Status)), slug.Make(b.Title), b.ID)
}

// Archive uploads b when it is terminal and does nothing otherwise.
func (a *Archiver) Archive(ctx context.Context, b models.Bounty) error {
	if a == nil || a.Store == nil || !b.Status.IsTerminal() {
		return nil
	}
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bounty %s: %w", b.ID, err)
	}
	key := ArchiveKey(b)
	if err := a.Store.PutObject(ctx, key, body, "application/json"); err != nil {
		return err
	}
	log.Printf("🗄️  [ARCHIVE] stored %s", key)
	return nil
}
