// services/bounty_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"bounty-board/filters"
	"bounty-board/lifecycle"
	"bounty-board/models"
)

type BountyService struct {
	Store    BountyStore
	Policy   lifecycle.Policy
	Notifier Notifier
	Archiver *Archiver
	Now      func() time.Time
}

func NewBountyService(store BountyStore, policy lifecycle.Policy, notifier Notifier, archiver *Archiver) *BountyService {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &BountyService{
		Store:    store,
		Policy:   policy,
		Notifier: notifier,
		Archiver: archiver,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func currentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals(UserLocalsKey).(models.User)
	return user
}

// clientOf tells the bot apart from the web board via X-Client.
func clientOf(c *fiber.Ctx) models.Client {
	if c.Get("X-Client") == string(models.ClientBountyBot) {
		return models.ClientBountyBot
	}
	return models.ClientBountyBoard
}

// rawQuery keeps repeated keys so that coercion can reject them.
func rawQuery(c *fiber.Ctx) url.Values {
	raw := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		raw.Add(string(k), string(v))
	})
	return raw
}

func decodeJSON(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *BountyService) fail(c *fiber.Ctx, err error) error {
	var verr *lifecycle.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, ErrBountyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "bounty not found"})
	case errors.Is(err, ErrStaleStatus):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "bounty was changed by someone else, reload and try again",
		})
	case errors.Is(err, ErrInvalidCursor):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [BOUNTY] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func denied(c *fiber.Ctx, r lifecycle.GuardResult) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "action not allowed",
		"reason": r.Reason,
	})
}

// ListBounties handles GET /bounties.
func (s *BountyService) ListBounties(c *fiber.Ctx) error {
	q := filters.Coerce(rawQuery(c))
	page, err := s.Store.List(c.UserContext(), filters.Compose(q), filters.CompileSort(q), filters.CompilePagination(q))
	if err != nil {
		return s.fail(c, err)
	}
	if page.Results == nil {
		page.Results = []models.Bounty{}
	}
	return c.JSON(page)
}

// GetBounty handles GET /bounties/:id.
func (s *BountyService) GetBounty(c *fiber.Ctx) error {
	b, err := s.Store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(b)
}

// GetEligibility handles GET /bounties/:id/eligibility: every guard for
// the current user, so clients can show or hide actions.
func (s *BountyService) GetEligibility(c *fiber.Ctx) error {
	b, err := s.Store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	user := currentUser(c)
	return c.JSON(fiber.Map{
		"claimable": s.Policy.IsClaimableByUser(b, user),
		"claim":     s.Policy.CanClaim(b, user),
		"edit":      s.Policy.CanBeEdited(b, user),
		"publish":   s.Policy.CanPublish(b, user),
		"submit":    s.Policy.CanSubmit(b, user),
		"review":    s.Policy.CanReview(b, user),
		"delete":    s.Policy.CanWithdraw(b, user),
		"paid":      s.Policy.CanMarkPaid(b, user),
	})
}

// CreateBounty handles POST /bounties.
func (s *BountyService) CreateBounty(c *fiber.Ctx) error {
	var in lifecycle.BountyInput
	if err := decodeJSON(c, &in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}
	if err := lifecycle.CreateProfile.Validate(in); err != nil {
		return s.fail(c, err)
	}

	b := lifecycle.Create(lifecycle.NewBounty(in), in.InitialStatus(), clientOf(c), s.Now())
	if err := s.Store.Create(c.UserContext(), &b); err != nil {
		return s.fail(c, err)
	}

	log.Printf("✅ [BOUNTY] created %s (%s) for %s", b.ID, b.Status, b.CustomerID)
	s.notify(c, b, models.ActivityCreate)
	return c.Status(fiber.StatusCreated).JSON(b)
}

// UpdateBounty handles PUT /bounties/:id. Status is not editable here.
func (s *BountyService) UpdateBounty(c *fiber.Ctx) error {
	var in lifecycle.BountyInput
	if err := decodeJSON(c, &in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}
	if err := lifecycle.UpdateProfile.Validate(in); err != nil {
		return s.fail(c, err)
	}

	existing, err := s.Store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if r := s.Policy.CanBeEdited(existing, currentUser(c)); !r.Allowed {
		return denied(c, r)
	}

	b, err := lifecycle.ApplyUpdate(existing, in)
	if err != nil {
		return s.fail(c, err)
	}
	b = lifecycle.LogActivity(b, models.ActivityEdit, clientOf(c), s.Now())
	if err := s.Store.Update(c.UserContext(), &b, existing.Status); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(b)
}

// action is one life-cycle endpoint: a guard and the transition it allows.
type action struct {
	activity models.Activity
	guard    func(b models.Bounty, user models.User) lifecycle.GuardResult
	apply    func(b models.Bounty, user models.User, client models.Client, at time.Time) models.Bounty
}

func (s *BountyService) run(c *fiber.Ctx, a action) error {
	ctx := c.UserContext()
	user := currentUser(c)

	existing, err := s.Store.Get(ctx, c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if r := a.guard(existing, user); !r.Allowed {
		return denied(c, r)
	}

	b := a.apply(existing, user, clientOf(c), s.Now())
	if b.Status != existing.Status && !lifecycle.CanTransition(existing.Status, b.Status) {
		return denied(c, lifecycle.GuardResult{
			Reason: fmt.Sprintf("cannot move from %s to %s", existing.Status, b.Status),
		})
	}

	if err := s.Store.Update(ctx, &b, existing.Status); err != nil {
		return s.fail(c, err)
	}

	log.Printf("✅ [BOUNTY] %s %s by %s: %s → %s", a.activity, b.ID, user.ID, existing.Status, b.Status)
	s.notify(c, b, a.activity)
	if b.Status.IsTerminal() && b.Status != existing.Status {
		if err := s.Archiver.Archive(ctx, b); err != nil {
			log.Printf("⚠️  [ARCHIVE] bounty %s: %v", b.ID, err)
		}
	}
	return c.JSON(b)
}

func (s *BountyService) notify(c *fiber.Ctx, b models.Bounty, activity models.Activity) {
	if err := s.Notifier.BountyChanged(c.UserContext(), b, activity); err != nil {
		log.Printf("⚠️  [NOTIFY] bounty %s: %v", b.ID, err)
	}
}

// PublishBounty handles PATCH /bounties/:id/publish.
func (s *BountyService) PublishBounty(c *fiber.Ctx) error {
	return s.run(c, action{
		activity: models.ActivityPublish,
		guard:    s.Policy.CanPublish,
		apply: func(b models.Bounty, _ models.User, client models.Client, at time.Time) models.Bounty {
			return lifecycle.Publish(b, client, at)
		},
	})
}

type claimRequest struct {
	SubmissionNotes string `json:"submissionNotes"`
}

// ClaimBounty handles PATCH /bounties/:id/claim.
func (s *BountyService) ClaimBounty(c *fiber.Ctx) error {
	var req claimRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}
	notes := strings.TrimSpace(req.SubmissionNotes)
	return s.run(c, action{
		activity: models.ActivityClaim,
		guard: func(b models.Bounty, user models.User) lifecycle.GuardResult {
			if r := s.Policy.CanClaim(b, user); !r.Allowed {
				return r
			}
			if notes == "" {
				return lifecycle.GuardResult{Reason: "tell the reviewer how you plan to do the work before claiming"}
			}
			return lifecycle.GuardResult{Allowed: true}
		},
		apply: func(b models.Bounty, user models.User, client models.Client, at time.Time) models.Bounty {
			return lifecycle.Claim(b, user, notes, client, at)
		},
	})
}

type submitRequest struct {
	SubmissionNotes string `json:"submissionNotes"`
	SubmissionURL   string `json:"submissionUrl"`
}

// SubmitBounty handles PATCH /bounties/:id/submit.
func (s *BountyService) SubmitBounty(c *fiber.Ctx) error {
	var req submitRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}
	if req.SubmissionURL != "" {
		if u, err := url.ParseRequestURI(req.SubmissionURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return s.fail(c, &lifecycle.ValidationError{Fields: map[string]string{"submissionUrl": "must be an http(s) URL"}})
		}
	}
	return s.run(c, action{
		activity: models.ActivitySubmit,
		guard:    s.Policy.CanSubmit,
		apply: func(b models.Bounty, user models.User, client models.Client, at time.Time) models.Bounty {
			return lifecycle.Submit(b, user, strings.TrimSpace(req.SubmissionNotes), req.SubmissionURL, client, at)
		},
	})
}

type reviewRequest struct {
	Decision string `json:"decision"`
}

// ReviewBounty handles PATCH /bounties/:id/review with decision accept or reject.
func (s *BountyService) ReviewBounty(c *fiber.Ctx) error {
	var req reviewRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}

	var activity models.Activity
	var apply func(models.Bounty, models.User, models.Client, time.Time) models.Bounty
	switch strings.ToLower(req.Decision) {
	case "accept":
		activity, apply = models.ActivityAccept, lifecycle.Accept
	case "reject":
		activity, apply = models.ActivityReject, lifecycle.Reject
	default:
		return s.fail(c, &lifecycle.ValidationError{Fields: map[string]string{"decision": "must be accept or reject"}})
	}

	return s.run(c, action{
		activity: activity,
		guard:    s.Policy.CanReview,
		apply:    apply,
	})
}

// MarkBountyPaid handles PATCH /bounties/:id/paid.
func (s *BountyService) MarkBountyPaid(c *fiber.Ctx) error {
	return s.run(c, action{
		activity: models.ActivityPaid,
		guard:    s.Policy.CanMarkPaid,
		apply: func(b models.Bounty, _ models.User, client models.Client, at time.Time) models.Bounty {
			return lifecycle.MarkPaid(b, client, at)
		},
	})
}

// DeleteBounty handles DELETE /bounties/:id. Records are kept with status Deleted.
func (s *BountyService) DeleteBounty(c *fiber.Ctx) error {
	return s.run(c, action{
		activity: models.ActivityDelete,
		guard:    s.Policy.CanWithdraw,
		apply: func(b models.Bounty, _ models.User, client models.Client, at time.Time) models.Bounty {
			return lifecycle.Withdraw(b, client, at)
		},
	})
}
