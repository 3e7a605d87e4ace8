package lifecycle

import (
	"testing"
	"time"

	"bounty-board/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.BountyStatus
		to   models.BountyStatus
		want bool
	}{
		{"draft to open", models.BountyStatusDraft, models.BountyStatusOpen, true},
		{"draft to deleted", models.BountyStatusDraft, models.BountyStatusDeleted, true},
		{"open to in-progress", models.BountyStatusOpen, models.BountyStatusInProgress, true},
		{"in-progress to in-review", models.BountyStatusInProgress, models.BountyStatusInReview, true},
		{"in-review to completed", models.BountyStatusInReview, models.BountyStatusCompleted, true},
		{"in-review back to in-progress", models.BountyStatusInReview, models.BountyStatusInProgress, true},
		{"draft to in-progress", models.BountyStatusDraft, models.BountyStatusInProgress, false},
		{"open to completed", models.BountyStatusOpen, models.BountyStatusCompleted, false},
		{"completed is terminal", models.BountyStatusCompleted, models.BountyStatusDeleted, false},
		{"deleted is terminal", models.BountyStatusDeleted, models.BountyStatusOpen, false},
		{"unknown status", models.BountyStatus("Archived"), models.BountyStatusOpen, false},
		{"self loop", models.BountyStatusOpen, models.BountyStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestApplyTransition_AppendsWithoutMutating(t *testing.T) {
	orig := Create(models.Bounty{Title: "t"}, models.BountyStatusDraft, models.ClientBountyBoard, t0)
	if len(orig.StatusHistory) != 1 || len(orig.ActivityHistory) != 1 {
		t.Fatalf("create history = %d/%d, want 1/1", len(orig.StatusHistory), len(orig.ActivityHistory))
	}

	later := t0.Add(time.Hour)
	next := ApplyTransition(orig, models.BountyStatusOpen, models.ActivityPublish, models.ClientBountyBot, later)

	if orig.Status != models.BountyStatusDraft {
		t.Errorf("input status changed to %s", orig.Status)
	}
	if len(orig.StatusHistory) != 1 {
		t.Errorf("input status history grew to %d", len(orig.StatusHistory))
	}
	if next.Status != models.BountyStatusOpen {
		t.Errorf("status = %s, want Open", next.Status)
	}
	if len(next.StatusHistory) != 2 || len(next.ActivityHistory) != 2 {
		t.Fatalf("history = %d/%d, want 2/2", len(next.StatusHistory), len(next.ActivityHistory))
	}
	if next.StatusHistory[0] != orig.StatusHistory[0] {
		t.Errorf("existing status entry rewritten: %+v", next.StatusHistory[0])
	}
	last := next.ActivityHistory[1]
	if last.Activity != models.ActivityPublish || last.Client != models.ClientBountyBot || !last.ModifiedAt.Equal(later) {
		t.Errorf("activity entry = %+v", last)
	}
}

func TestCreate(t *testing.T) {
	draft := Create(models.Bounty{}, models.BountyStatusDraft, models.ClientBountyBoard, t0)
	if draft.Status != models.BountyStatusDraft || draft.PaidStatus != nil {
		t.Errorf("draft = %s/%v", draft.Status, draft.PaidStatus)
	}
	if !draft.CreatedAt.Equal(t0) {
		t.Errorf("createdAt = %v", draft.CreatedAt)
	}

	open := Create(models.Bounty{}, models.BountyStatusOpen, models.ClientBountyBoard, t0)
	if open.Status != models.BountyStatusOpen {
		t.Errorf("status = %s, want Open", open.Status)
	}
	if open.PaidStatus == nil || *open.PaidStatus != models.PaidStatusUnpaid {
		t.Errorf("paidStatus = %v, want Unpaid", open.PaidStatus)
	}

	other := Create(models.Bounty{}, models.BountyStatusCompleted, models.ClientBountyBoard, t0)
	if other.Status != models.BountyStatusDraft {
		t.Errorf("non-initial status accepted: %s", other.Status)
	}
}

func TestFullLifecycle(t *testing.T) {
	worker := models.User{ID: "200", Handle: "worker#1", Roles: []string{models.RoleClaimBounties}}
	reviewer := models.User{ID: "100", Handle: "owner#1"}

	b := Create(models.Bounty{CreatedBy: ActionBy(reviewer)}, models.BountyStatusDraft, models.ClientBountyBoard, t0)
	b = Publish(b, models.ClientBountyBoard, t0.Add(1*time.Minute))
	b = Claim(b, worker, "", models.ClientBountyBot, t0.Add(2*time.Minute))
	firstClaim := *b.ClaimedAt
	b = Submit(b, worker, "done", "https://example.com/pr/1", models.ClientBountyBot, t0.Add(3*time.Minute))
	b = Reject(b, reviewer, models.ClientBountyBoard, t0.Add(4*time.Minute))
	b = Submit(b, worker, "", "", models.ClientBountyBot, t0.Add(5*time.Minute))
	b = Accept(b, reviewer, models.ClientBountyBoard, t0.Add(6*time.Minute))
	b = MarkPaid(b, models.ClientPayouts, t0.Add(7*time.Minute))

	if b.Status != models.BountyStatusCompleted {
		t.Errorf("status = %s", b.Status)
	}
	if b.PaidStatus == nil || *b.PaidStatus != models.PaidStatusPaid {
		t.Errorf("paidStatus = %v", b.PaidStatus)
	}
	if !b.ClaimedAt.Equal(firstClaim) {
		t.Errorf("claimedAt moved to %v", b.ClaimedAt)
	}
	if !b.SubmittedAt.Equal(t0.Add(3 * time.Minute)) {
		t.Errorf("submittedAt = %v, want first submission", b.SubmittedAt)
	}
	if b.SubmissionNotes != "done" || b.SubmissionURL != "https://example.com/pr/1" {
		t.Errorf("submission = %q %q", b.SubmissionNotes, b.SubmissionURL)
	}
	if b.ClaimedBy.DiscordID != worker.ID || b.ReviewedBy.DiscordID != reviewer.ID {
		t.Errorf("actors = %+v / %+v", b.ClaimedBy, b.ReviewedBy)
	}

	wantStatuses := []models.BountyStatus{
		models.BountyStatusDraft,
		models.BountyStatusOpen,
		models.BountyStatusInProgress,
		models.BountyStatusInReview,
		models.BountyStatusInProgress,
		models.BountyStatusInReview,
		models.BountyStatusCompleted,
	}
	if len(b.StatusHistory) != len(wantStatuses) {
		t.Fatalf("status history len = %d, want %d", len(b.StatusHistory), len(wantStatuses))
	}
	for i, want := range wantStatuses {
		if b.StatusHistory[i].Status != want {
			t.Errorf("statusHistory[%d] = %s, want %s", i, b.StatusHistory[i].Status, want)
		}
	}
	if got := b.ActivityHistory[len(b.ActivityHistory)-1].Activity; got != models.ActivityPaid {
		t.Errorf("last activity = %s, want Paid", got)
	}
	if len(b.ActivityHistory) != len(wantStatuses)+1 {
		t.Errorf("activity history len = %d", len(b.ActivityHistory))
	}
}
