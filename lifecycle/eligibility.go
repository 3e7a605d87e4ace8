package lifecycle

import (
	"fmt"
	"slices"

	"bounty-board/models"
)

// GuardResult represents the outcome of an eligibility check.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Policy carries the configurable parts of the editing rules.
type Policy struct {
	// EditableStatuses are the statuses in which PUT edits are accepted.
	EditableStatuses []models.BountyStatus
	// ClaimRoles are the roles allowed to claim. Any one is enough.
	ClaimRoles []string
	// AdminRoles may publish, edit, review and withdraw any bounty.
	AdminRoles []string
}

// DefaultPolicy returns the rules used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		EditableStatuses: []models.BountyStatus{models.BountyStatusDraft, models.BountyStatusOpen},
		ClaimRoles:       []string{models.RoleClaimBounties, models.RoleAdmin},
		AdminRoles:       []string{models.RoleAdmin},
	}
}

// ActionBy projects a user onto the actor reference stored on a bounty.
func ActionBy(user models.User) models.DiscordUser {
	return models.DiscordUser{
		DiscordHandle: user.Handle,
		DiscordID:     user.ID,
	}
}

func (p Policy) isAdmin(user models.User) bool {
	return user.HasRole(p.AdminRoles...)
}

func isCreator(b models.Bounty, user models.User) bool {
	return b.CreatedBy.DiscordID != "" && b.CreatedBy.DiscordID == user.ID
}

// IsClaimableByUser checks the bounty is Open and someone is signed in.
func (p Policy) IsClaimableByUser(b models.Bounty, user models.User) GuardResult {
	if b.Status != models.BountyStatusOpen {
		return deny("this bounty is not open (current status: %s)", b.Status)
	}
	if user.Anonymous() {
		return deny("you must be signed in to claim this bounty")
	}
	return allow()
}

// CanClaim additionally requires one of the claim roles.
func (p Policy) CanClaim(b models.Bounty, user models.User) GuardResult {
	if user.Anonymous() || !user.HasRole(p.ClaimRoles...) {
		return deny("you need to sign in and have the correct permissions to claim this bounty")
	}
	return p.IsClaimableByUser(b, user)
}

// CanBeEdited gates PUT edits: the creator or an admin, and only while the
// status is one of the editable statuses.
func (p Policy) CanBeEdited(b models.Bounty, user models.User) GuardResult {
	if user.Anonymous() {
		return deny("you must be signed in to edit this bounty")
	}
	if !isCreator(b, user) && !p.isAdmin(user) {
		return deny("only the creator or an admin can edit this bounty")
	}
	if !slices.Contains(p.EditableStatuses, b.Status) {
		return deny("bounties in status %s can no longer be edited", b.Status)
	}
	return allow()
}

// CanPublish lets the creator or an admin publish a draft.
func (p Policy) CanPublish(b models.Bounty, user models.User) GuardResult {
	if user.Anonymous() || (!isCreator(b, user) && !p.isAdmin(user)) {
		return deny("only the creator or an admin can publish this bounty")
	}
	if b.Status != models.BountyStatusDraft {
		return deny("only drafts can be published (current status: %s)", b.Status)
	}
	return allow()
}

// CanSubmit lets the claimant hand in work on an In-Progress bounty.
func (p Policy) CanSubmit(b models.Bounty, user models.User) GuardResult {
	if b.Status != models.BountyStatusInProgress {
		return deny("only in-progress bounties can be submitted (current status: %s)", b.Status)
	}
	if user.Anonymous() || b.ClaimedBy.DiscordID != user.ID {
		return deny("only the user who claimed this bounty can submit it")
	}
	return allow()
}

// CanReview lets the creator or an admin accept or reject a submission.
func (p Policy) CanReview(b models.Bounty, user models.User) GuardResult {
	if b.Status != models.BountyStatusInReview {
		return deny("only bounties in review can be reviewed (current status: %s)", b.Status)
	}
	if user.Anonymous() || (!isCreator(b, user) && !p.isAdmin(user)) {
		return deny("only the creator or an admin can review this bounty")
	}
	return allow()
}

// CanWithdraw lets the creator or an admin delete a pre-terminal bounty.
func (p Policy) CanWithdraw(b models.Bounty, user models.User) GuardResult {
	if b.Status.IsTerminal() {
		return deny("bounty is already %s", b.Status)
	}
	if user.Anonymous() || (!isCreator(b, user) && !p.isAdmin(user)) {
		return deny("only the creator or an admin can delete this bounty")
	}
	return allow()
}

// CanMarkPaid lets the creator or an admin record payment of a completed bounty.
func (p Policy) CanMarkPaid(b models.Bounty, user models.User) GuardResult {
	if b.Status != models.BountyStatusCompleted {
		return deny("only completed bounties can be marked paid (current status: %s)", b.Status)
	}
	if b.PaidStatus != nil && *b.PaidStatus == models.PaidStatusPaid {
		return deny("bounty is already paid")
	}
	if user.Anonymous() || (!isCreator(b, user) && !p.isAdmin(user)) {
		return deny("only the creator or an admin can mark this bounty paid")
	}
	return allow()
}
