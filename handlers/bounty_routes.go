// handlers/bounty_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bounty-board/middleware"
	"bounty-board/services"
)

// SetupBountyRoutes registers the bounty board API. Reads work for anonymous
// visitors; writes need the gateway to forward a user.
func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService, authClient middleware.TokenValidator) {
	// 📡 SSE authenticates from the query string, registered before /:id
	if authClient != nil {
		app.Get("/bounties/stream", middleware.SSEAuthMiddleware(authClient), bountyService.StreamBountiesSSE)
	}

	// 🔓 Public reads, user context optional
	bounties := app.Group("/bounties", middleware.UserContextMiddleware(false))
	bounties.Get("/", bountyService.ListBounties)
	bounties.Get("/:id", bountyService.GetBounty)
	bounties.Get("/:id/eligibility", bountyService.GetEligibility)

	// 🔐 Writes, X-User-ID required
	secured := middleware.UserContextMiddleware(true)
	bounties.Post("/", secured, bountyService.CreateBounty)
	bounties.Put("/:id", secured, bountyService.UpdateBounty)
	bounties.Patch("/:id/publish", secured, bountyService.PublishBounty)
	bounties.Patch("/:id/claim", secured, bountyService.ClaimBounty)
	bounties.Patch("/:id/submit", secured, bountyService.SubmitBounty)
	bounties.Patch("/:id/review", secured, bountyService.ReviewBounty)
	bounties.Patch("/:id/paid", secured, bountyService.MarkBountyPaid)
	bounties.Delete("/:id", secured, bountyService.DeleteBounty)
}
