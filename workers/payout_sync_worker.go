package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"bounty-board/lifecycle"
	"bounty-board/models"
	"bounty-board/services"
)

// Payout is one disbursement reported by the payout service.
type Payout struct {
	BountyID string    `json:"bountyId"`
	PaidAt   time.Time `json:"paidAt"`
}

// PayoutSyncClient polls the payout service for settled rewards.
type PayoutSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Store      services.BountyStore
}

func NewPayoutSyncClient(baseURL, token string, store services.BountyStore) *PayoutSyncClient {
	return &PayoutSyncClient{
		BaseURL: baseURL,
		Token:   token,
		Store:   store,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *PayoutSyncClient) GetPayouts(ctx context.Context, since time.Time) ([]Payout, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/payouts", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payout service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("payout service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Payouts []Payout `json:"payouts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode payout service response: %w", err)
	}
	return response.Payouts, nil
}

// Apply marks each completed, unpaid bounty as paid. Unknown or not yet
// completed bounties are skipped. It returns how many bounties changed.
func (c *PayoutSyncClient) Apply(ctx context.Context, payouts []Payout) (int, error) {
	marked := 0
	for _, p := range payouts {
		b, err := c.Store.Get(ctx, p.BountyID)
		if errors.Is(err, services.ErrBountyNotFound) {
			log.Printf("⚠️ [PAYOUT] unknown bounty %s", p.BountyID)
			continue
		}
		if err != nil {
			return marked, err
		}
		if b.Status != models.BountyStatusCompleted {
			log.Printf("⚠️ [PAYOUT] bounty %s is %s, not completed", b.ID, b.Status)
			continue
		}
		if b.PaidStatus != nil && *b.PaidStatus == models.PaidStatusPaid {
			continue
		}

		paidAt := p.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now().UTC()
		}
		b = lifecycle.MarkPaid(b, models.ClientPayouts, paidAt)
		err = c.Store.Update(ctx, &b, models.BountyStatusCompleted)
		if errors.Is(err, services.ErrStaleStatus) {
			continue
		}
		if err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// PollPayouts runs until ctx is cancelled.
func PollPayouts(ctx context.Context, client *PayoutSyncClient, pollInterval time.Duration) {
	log.Println("Starting payout polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Payout polling stopped.")
			return
		case <-ticker.C:
			pollTime := time.Now().UTC()

			payouts, err := client.GetPayouts(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ [PAYOUT] Error polling payouts: %v", err)
				continue
			}
			if len(payouts) == 0 {
				continue
			}

			marked, err := client.Apply(ctx, payouts)
			if err != nil {
				// keep lastSyncTime so the same window is retried
				log.Printf("❌ [PAYOUT] Failed after marking %d of %d payout(s): %v", marked, len(payouts), err)
				continue
			}

			lastSyncTime = pollTime
			log.Printf("✅ [PAYOUT] %d of %d payout(s) marked paid.", marked, len(payouts))
		}
	}
}
