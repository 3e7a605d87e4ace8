package lifecycle

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bounty-board/models"
)

// Field paths used by the validation profiles.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldCriteria        = "criteria"
	FieldCustomerID      = "customerId"
	FieldDueAt           = "dueAt"
	FieldStatus          = "status"
	FieldSeason          = "season"
	FieldRewardCurrency  = "reward.currency"
	FieldRewardAmount    = "reward.amount"
	FieldRewardScale     = "reward.scale"
	FieldCreatedByHandle = "createdBy.discordHandle"
	FieldCreatedByID     = "createdBy.discordId"
)

// Profile is a static list of required and forbidden fields for one kind
// of write. Callers pick the profile explicitly.
type Profile struct {
	Name      string
	Required  []string
	Forbidden []string
}

// CreateProfile applies to POST: the full entity must be present.
var CreateProfile = Profile{
	Name: "create",
	Required: []string{
		FieldTitle, FieldDescription, FieldCriteria, FieldCustomerID, FieldDueAt, FieldStatus,
		FieldRewardCurrency, FieldRewardAmount, FieldCreatedByHandle, FieldCreatedByID,
	},
}

// UpdateProfile applies to PUT: every field is optional, status moves only
// through the life-cycle endpoints, and ownership cannot be reassigned.
var UpdateProfile = Profile{
	Name:      "update",
	Forbidden: []string{FieldStatus, FieldCustomerID, FieldCreatedByHandle, FieldCreatedByID},
}

// RequiredFor reports whether field is mandatory under the profile.
func RequiredFor(p Profile, field string) bool {
	return slices.Contains(p.Required, field)
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RewardInput is the reward part of a write request.
type RewardInput struct {
	Currency           *string  `json:"currency" validate:"omitempty,oneof=BANK ETH USDC USDT BTC"`
	Amount             *float64 `json:"amount" validate:"omitempty,min=0"`
	Scale              *int     `json:"scale" validate:"omitempty,min=0,max=18"`
	AmountWithoutScale *float64 `json:"amountWithoutScale" validate:"omitempty,min=0"`
}

// ActorInput is an actor reference in a write request.
type ActorInput struct {
	DiscordHandle *string `json:"discordHandle" validate:"omitempty,max=100"`
	DiscordID     *string `json:"discordId" validate:"omitempty,max=64"`
}

// BountyInput is the body of POST and PUT. A nil field was not sent.
type BountyInput struct {
	Title            *string      `json:"title" validate:"omitempty,max=200"`
	Description      *string      `json:"description" validate:"omitempty,max=4000"`
	Criteria         *string      `json:"criteria" validate:"omitempty,max=4000"`
	CustomerID       *string      `json:"customerId" validate:"omitempty,max=64"`
	Season           *int         `json:"season" validate:"omitempty,min=0"`
	DueAt            *time.Time   `json:"dueAt"`
	Status           *string      `json:"status" validate:"omitempty,oneof=Draft Open"`
	DiscordMessageID *string      `json:"discordMessageId" validate:"omitempty,max=64"`
	Reward           *RewardInput `json:"reward" validate:"omitempty"`
	CreatedBy        *ActorInput  `json:"createdBy" validate:"omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks in against the profile and returns a *ValidationError.
func (p Profile) Validate(in BountyInput) error {
	fields := map[string]string{}
	present := in.present()

	for _, f := range p.Required {
		if !present[f] {
			fields[f] = "is required"
		}
	}
	for _, f := range in.blank() {
		if RequiredFor(CreateProfile, f) {
			fields[f] = "must not be blank"
		}
	}
	for _, f := range p.Forbidden {
		if present[f] {
			fields[f] = "cannot be changed with this operation"
		}
	}
	if len(present) == 0 && len(fields) == 0 {
		fields["body"] = "contains no bounty fields"
	}

	if err := validate.Struct(in); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fieldPath(fe)] = describe(fe)
			}
		} else {
			return err
		}
	}

	if r := in.Reward; r != nil && r.Amount != nil && r.AmountWithoutScale != nil {
		scale := 0
		if r.Scale != nil {
			scale = *r.Scale
		}
		reward := models.Reward{Amount: *r.Amount, Scale: scale, AmountWithoutScale: *r.AmountWithoutScale}
		if !reward.Consistent() {
			fields["reward.amountWithoutScale"] = "does not match amount and scale"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (in BountyInput) present() map[string]bool {
	out := map[string]bool{}
	mark := func(field string, ok bool) {
		if ok {
			out[field] = true
		}
	}
	mark(FieldTitle, filled(in.Title))
	mark(FieldDescription, filled(in.Description))
	mark(FieldCriteria, filled(in.Criteria))
	mark(FieldCustomerID, filled(in.CustomerID))
	mark(FieldDueAt, in.DueAt != nil && !in.DueAt.IsZero())
	mark(FieldStatus, filled(in.Status))
	mark(FieldSeason, in.Season != nil)
	mark("discordMessageId", filled(in.DiscordMessageID))
	if r := in.Reward; r != nil {
		mark(FieldRewardCurrency, filled(r.Currency))
		mark(FieldRewardAmount, r.Amount != nil)
		mark(FieldRewardScale, r.Scale != nil)
	}
	if c := in.CreatedBy; c != nil {
		mark(FieldCreatedByHandle, filled(c.DiscordHandle))
		mark(FieldCreatedByID, filled(c.DiscordID))
	}
	return out
}

// blank lists the string fields that were sent but trim to nothing.
func (in BountyInput) blank() []string {
	var out []string
	check := func(field string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			out = append(out, field)
		}
	}
	check(FieldTitle, in.Title)
	check(FieldDescription, in.Description)
	check(FieldCriteria, in.Criteria)
	check(FieldCustomerID, in.CustomerID)
	check(FieldStatus, in.Status)
	if r := in.Reward; r != nil {
		check(FieldRewardCurrency, r.Currency)
	}
	if c := in.CreatedBy; c != nil {
		check(FieldCreatedByHandle, c.DiscordHandle)
		check(FieldCreatedByID, c.DiscordID)
	}
	return out
}

func filled(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// fieldPath turns "BountyInput.reward.amount" into "reward.amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
