// models/bounty.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// BountyStatus is the life-cycle position of a bounty.
type BountyStatus string

const (
	BountyStatusDraft      BountyStatus = "Draft"
	BountyStatusOpen       BountyStatus = "Open"
	BountyStatusInProgress BountyStatus = "In-Progress"
	BountyStatusInReview   BountyStatus = "In-Review"
	BountyStatusCompleted  BountyStatus = "Completed"
	BountyStatusDeleted    BountyStatus = "Deleted"
)

// AllBountyStatuses lists every status in life-cycle order.
var AllBountyStatuses = []BountyStatus{
	BountyStatusDraft,
	BountyStatusOpen,
	BountyStatusInProgress,
	BountyStatusInReview,
	BountyStatusCompleted,
	BountyStatusDeleted,
}

// Valid reports whether s is a known status.
func (s BountyStatus) Valid() bool {
	for _, known := range AllBountyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave s.
func (s BountyStatus) IsTerminal() bool {
	return s == BountyStatusCompleted || s == BountyStatusDeleted
}

// PaidStatus tracks reward disbursement, independent of BountyStatus.
type PaidStatus string

const (
	PaidStatusPaid   PaidStatus = "Paid"
	PaidStatusUnpaid PaidStatus = "Unpaid"
)

// AllPaidStatuses lists the recognized paid-status values.
var AllPaidStatuses = []PaidStatus{PaidStatusPaid, PaidStatusUnpaid}

// Activity names a user-facing action recorded in the activity history.
type Activity string

const (
	ActivityCreate  Activity = "Create"
	ActivityEdit    Activity = "Edit"
	ActivityPublish Activity = "Publish"
	ActivityClaim   Activity = "Claim"
	ActivitySubmit  Activity = "Submit"
	ActivityAccept  Activity = "Accept"
	ActivityReject  Activity = "Reject"
	ActivityDelete  Activity = "Delete"
	ActivityPaid    Activity = "Paid"
	ActivityRemind  Activity = "Remind"
)

// Client identifies the surface an activity came from.
type Client string

const (
	ClientBountyBoard Client = "BountyBoardWeb"
	ClientBountyBot   Client = "BountyBot"
	ClientPayouts     Client = "PayoutSync"
	ClientScheduler   Client = "OverdueWatcher"
)

// DiscordUser is the minimal actor reference stored on a bounty.
type DiscordUser struct {
	DiscordHandle string `json:"discordHandle,omitempty"`
	DiscordID     string `json:"discordId,omitempty"`
}

// IsZero reports whether no actor has been recorded.
func (u DiscordUser) IsZero() bool {
	return u.DiscordHandle == "" && u.DiscordID == ""
}

// StatusHistoryItem is one immutable entry of Bounty.StatusHistory.
type StatusHistoryItem struct {
	Status     BountyStatus `json:"status"`
	ModifiedAt time.Time    `json:"modifiedAt"`
}

// ActivityHistoryItem is one immutable entry of Bounty.ActivityHistory.
type ActivityHistoryItem struct {
	Activity   Activity  `json:"activity"`
	Client     Client    `json:"client"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Bounty is a paid task posted by a customer organization.
// ID stays empty until the store persists the record for the first time.
type Bounty struct {
	ID         string `json:"id,omitempty" gorm:"primaryKey;type:uuid"`
	CustomerID string `json:"customerId" gorm:"index;not null"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Criteria    string `json:"criteria" gorm:"type:text"`
	Season      *int   `json:"season,omitempty"`

	// 💰 amount is stored pre-scaled, see Reward
	Reward Reward `json:"reward" gorm:"embedded;embeddedPrefix:reward_"`

	SubmissionNotes  string `json:"submissionNotes,omitempty" gorm:"type:text"`
	SubmissionURL    string `json:"submissionUrl,omitempty"`
	DiscordMessageID string `json:"discordMessageId,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	DueAt       time.Time  `json:"dueAt" gorm:"index"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"index"`

	CreatedBy   DiscordUser `json:"createdBy" gorm:"embedded;embeddedPrefix:created_by_"`
	ClaimedBy   DiscordUser `json:"claimedBy,omitzero" gorm:"embedded;embeddedPrefix:claimed_by_"`
	SubmittedBy DiscordUser `json:"submittedBy,omitzero" gorm:"embedded;embeddedPrefix:submitted_by_"`
	ReviewedBy  DiscordUser `json:"reviewedBy,omitzero" gorm:"embedded;embeddedPrefix:reviewed_by_"`

	Status BountyStatus `json:"status" gorm:"index;not null"`
	// nil on records created before paid status existed
	PaidStatus *PaidStatus `json:"paidStatus,omitempty" gorm:"index"`

	// Version increments on every stored write; updates are conditional on it.
	Version int64 `json:"version" gorm:"not null;default:0"`

	StatusHistory   datatypes.JSONSlice[StatusHistoryItem]   `json:"statusHistory" gorm:"type:jsonb"`
	ActivityHistory datatypes.JSONSlice[ActivityHistoryItem] `json:"activityHistory" gorm:"type:jsonb"`
}

// TableName keeps the collection name stable across renames of the struct.
func (Bounty) TableName() string {
	return "bounties"
}
