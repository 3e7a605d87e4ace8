package lifecycle

import (
	"fmt"
	"strings"

	"bounty-board/models"
)

// NewBounty builds an unsaved bounty from a create request that already
// passed CreateProfile. Status and history are set later by Create.
func NewBounty(in BountyInput) models.Bounty {
	var b models.Bounty
	b = mergeInput(b, in)
	b.Reward = b.Reward.Normalize()
	return b
}

// InitialStatus reads the requested starting status, Draft by default.
func (in BountyInput) InitialStatus() models.BountyStatus {
	if in.Status != nil && models.BountyStatus(*in.Status) == models.BountyStatusOpen {
		return models.BountyStatusOpen
	}
	return models.BountyStatusDraft
}

// ApplyUpdate merges the fields present in an update request into existing.
// Nested reward and createdBy objects merge field by field. A request may
// not change the reward scale of a stored bounty.
func ApplyUpdate(existing models.Bounty, in BountyInput) (models.Bounty, error) {
	if r := in.Reward; r != nil && r.Scale != nil && *r.Scale != existing.Reward.Scale {
		return existing, &ValidationError{Fields: map[string]string{
			FieldRewardScale: fmt.Sprintf("cannot change from %d", existing.Reward.Scale),
		}}
	}
	b := mergeInput(existing, in)
	b.Reward = b.Reward.Normalize()
	return b, nil
}

func mergeInput(b models.Bounty, in BountyInput) models.Bounty {
	setString(&b.Title, in.Title)
	setString(&b.Description, in.Description)
	setString(&b.Criteria, in.Criteria)
	setString(&b.CustomerID, in.CustomerID)
	setString(&b.DiscordMessageID, in.DiscordMessageID)
	if in.Season != nil {
		season := *in.Season
		b.Season = &season
	}
	if in.DueAt != nil {
		b.DueAt = in.DueAt.UTC()
	}
	if r := in.Reward; r != nil {
		setString(&b.Reward.Currency, r.Currency)
		if r.Amount != nil {
			b.Reward.Amount = *r.Amount
		}
		if r.Scale != nil {
			b.Reward.Scale = *r.Scale
		}
	}
	if c := in.CreatedBy; c != nil {
		setString(&b.CreatedBy.DiscordHandle, c.DiscordHandle)
		setString(&b.CreatedBy.DiscordID, c.DiscordID)
	}
	return b
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
