package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/sreevishnu-spericorn/jag-backend/app/controllers"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/advertisements"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/database"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/middleware"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/payments"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/proposals"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/publishers"
)

type HttpRouter struct {
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	ca := cache.NewRedis()

	proposalSvc := proposals.NewService(db, ca, repos)
	paymentSvc := payments.NewService(db, ca, payments.NewStripeGatewayFromEnv())
	adSvc := advertisements.NewService(db, ca, repos)
	publisherSvc := publishers.NewService(db, ca, repos)

	proposalCtrl := controllers.NewProposalController(proposalSvc, paymentSvc, repos.Client)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, repos.Payment)
	adCtrl := controllers.NewAdvertisementController(adSvc)
	publisherCtrl := controllers.NewPublisherController(publisherSvc)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Webhook endpoint stays outside the authenticated groups; the gateway
	// signs the raw body instead of sending an API key.
	app.Post("/api/payments/webhook", paymentCtrl.HandleWebhook)

	api := app.Group("/api", limiter.New(), middleware.UserContext(repos.User))

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Post("/proposals", proposalCtrl.HandleCreate)
	admin.Get("/proposals", proposalCtrl.HandleList)
	admin.Get("/proposals/:id", proposalCtrl.HandleGet)
	admin.Put("/proposals/:id", proposalCtrl.HandleUpdate)
	admin.Delete("/proposals/:id", proposalCtrl.HandleDelete)
	admin.Post("/payments/intent", proposalCtrl.HandleCreatePaymentIntent)
	admin.Get("/payments", paymentCtrl.HandleList)
	admin.Post("/publishers", publisherCtrl.HandleCreate)
	admin.Get("/publishers", publisherCtrl.HandleList)
	admin.Get("/publishers/:id", publisherCtrl.HandleGet)
	admin.Put("/publishers/:id", publisherCtrl.HandleUpdate)
	admin.Delete("/publishers/:id", publisherCtrl.HandleDelete)

	client := api.Group("/client", middleware.RequireClient)
	client.Get("/proposals", proposalCtrl.HandleClientList)
	client.Post("/advertisements", adCtrl.HandleSubmit)
	client.Get("/advertisements", adCtrl.HandleList)
	client.Get("/advertisements/:id", adCtrl.HandleGet)
}
