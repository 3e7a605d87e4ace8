// Package lifecycle holds the bounty state machine and the rules deciding
// who may move a bounty through it. Everything here is a pure function over
// in-memory values; persistence is the caller's job.
package lifecycle

import (
	"slices"
	"time"

	"bounty-board/models"
)

var transitions = map[models.BountyStatus][]models.BountyStatus{
	models.BountyStatusDraft:      {models.BountyStatusOpen, models.BountyStatusDeleted},
	models.BountyStatusOpen:       {models.BountyStatusInProgress, models.BountyStatusDeleted},
	models.BountyStatusInProgress: {models.BountyStatusInReview, models.BountyStatusDeleted},
	models.BountyStatusInReview:   {models.BountyStatusCompleted, models.BountyStatusInProgress, models.BountyStatusDeleted},
}

// CanTransition reports whether from → to is a legal life-cycle step.
// Unknown statuses are never legal.
func CanTransition(from, to models.BountyStatus) bool {
	return slices.Contains(transitions[from], to)
}

// ApplyTransition appends one status entry and one activity entry, then sets
// the status. It returns a new snapshot; the input and its history slices
// are left untouched. Legality is checked by the caller via CanTransition.
func ApplyTransition(b models.Bounty, to models.BountyStatus, activity models.Activity, client models.Client, at time.Time) models.Bounty {
	b.StatusHistory = append(slices.Clone(b.StatusHistory), models.StatusHistoryItem{
		Status:     to,
		ModifiedAt: at,
	})
	b.ActivityHistory = append(slices.Clone(b.ActivityHistory), models.ActivityHistoryItem{
		Activity:   activity,
		Client:     client,
		ModifiedAt: at,
	})
	b.Status = to
	return b
}

// LogActivity appends an activity entry without changing status.
func LogActivity(b models.Bounty, activity models.Activity, client models.Client, at time.Time) models.Bounty {
	b.ActivityHistory = append(slices.Clone(b.ActivityHistory), models.ActivityHistoryItem{
		Activity:   activity,
		Client:     client,
		ModifiedAt: at,
	})
	return b
}

// RemindedSince reports whether an overdue reminder was logged at or after t.
func RemindedSince(b models.Bounty, t time.Time) bool {
	for _, a := range b.ActivityHistory {
		if a.Activity == models.ActivityRemind && !a.ModifiedAt.Before(t) {
			return true
		}
	}
	return false
}

// Create stamps a new bounty with its initial status and history.
// Only Draft and Open are valid starting points.
func Create(b models.Bounty, initial models.BountyStatus, client models.Client, at time.Time) models.Bounty {
	if initial != models.BountyStatusOpen {
		initial = models.BountyStatusDraft
	}
	b.CreatedAt = at
	b.StatusHistory = nil
	b.ActivityHistory = nil
	b = ApplyTransition(b, initial, models.ActivityCreate, client, at)
	if initial == models.BountyStatusOpen {
		unpaid := models.PaidStatusUnpaid
		b.PaidStatus = &unpaid
	}
	return b
}

// Publish moves a draft to Open and marks it unpaid.
func Publish(b models.Bounty, client models.Client, at time.Time) models.Bounty {
	b = ApplyTransition(b, models.BountyStatusOpen, models.ActivityPublish, client, at)
	unpaid := models.PaidStatusUnpaid
	b.PaidStatus = &unpaid
	return b
}

// Claim assigns the bounty to the acting user.
func Claim(b models.Bounty, user models.User, notes string, client models.Client, at time.Time) models.Bounty {
	b = ApplyTransition(b, models.BountyStatusInProgress, models.ActivityClaim, client, at)
	b.ClaimedBy = ActionBy(user)
	b.ClaimedAt = stampOnce(b.ClaimedAt, at)
	if notes != "" {
		b.SubmissionNotes = notes
	}
	return b
}

// Submit hands the work in for review.
func Submit(b models.Bounty, user models.User, notes, url string, client models.Client, at time.Time) models.Bounty {
	b = ApplyTransition(b, models.BountyStatusInReview, models.ActivitySubmit, client, at)
	b.SubmittedBy = ActionBy(user)
	b.SubmittedAt = stampOnce(b.SubmittedAt, at)
	if notes != "" {
		b.SubmissionNotes = notes
	}
	if url != "" {
		b.SubmissionURL = url
	}
	return b
}

// Accept completes a bounty under review.
func Accept(b models.Bounty, user models.User, client models.Client, at time.Time) models.Bounty {
	b = ApplyTransition(b, models.BountyStatusCompleted, models.ActivityAccept, client, at)
	b.ReviewedBy = ActionBy(user)
	b.ReviewedAt = stampOnce(b.ReviewedAt, at)
	return b
}

// Reject sends a submission back to the worker.
func Reject(b models.Bounty, user models.User, client models.Client, at time.Time) models.Bounty {
	b = ApplyTransition(b, models.BountyStatusInProgress, models.ActivityReject, client, at)
	b.ReviewedBy = ActionBy(user)
	b.ReviewedAt = stampOnce(b.ReviewedAt, at)
	return b
}

// Withdraw diverts a pre-terminal bounty to Deleted.
func Withdraw(b models.Bounty, client models.Client, at time.Time) models.Bounty {
	return ApplyTransition(b, models.BountyStatusDeleted, models.ActivityDelete, client, at)
}

// MarkPaid records reward disbursement. Status is unchanged.
func MarkPaid(b models.Bounty, client models.Client, at time.Time) models.Bounty {
	b = LogActivity(b, models.ActivityPaid, client, at)
	paid := models.PaidStatusPaid
	b.PaidStatus = &paid
	return b
}

func stampOnce(current *time.Time, at time.Time) *time.Time {
	if current != nil {
		return current
	}
	t := at
	return &t
}
