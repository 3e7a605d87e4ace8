package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"bounty-board/models"
)

// StreamInterval is how often the SSE stream polls for changes.
var StreamInterval = 2 * time.Second

// StreamBountiesSSE streams bounty changes, optionally for one customerId.
func (s *BountyService) StreamBountiesSSE(c *fiber.Ctx) error {
	customerID := c.Query("customerId")
	user := currentUser(c)
	done := c.Context().Done()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-done:
				cancel()
			case <-ctx.Done():
			}
		}()

		log.Printf("[SSE] user %s subscribed (customer %q)", user.ID, customerID)
		s.streamChanges(ctx, w, customerID, s.Now())
		log.Printf("[SSE] user %s disconnected", user.ID)
	})

	return nil
}

// streamChanges writes one "bounty" event per changed record until ctx ends
// or the client goes away.
func (s *BountyService) streamChanges(ctx context.Context, w *bufio.Writer, customerID string, since time.Time) {
	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	// initial keepalive
	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := s.Store.ChangedSince(ctx, customerID, since)
			if err != nil {
				log.Printf("[SSE] query error: %v", err)
				continue
			}
			if len(changed) == 0 {
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
				continue
			}

			since = changed[len(changed)-1].UpdatedAt
			for _, b := range changed {
				if err := writeEvent(w, b); err != nil {
					log.Printf("[SSE] encode bounty %s: %v", b.ID, err)
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, b models.Bounty) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: bounty\ndata: %s\n\n", b.ID, payload)
	return err
}
