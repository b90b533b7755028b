package routes

import (
	"ecofinds_backend/config"
	"ecofinds_backend/handlers"
	"ecofinds_backend/internal/activity"
	"ecofinds_backend/internal/media"
	"ecofinds_backend/internal/ws"
	"ecofinds_backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the shared services handlers are built from. Relay may be nil
// when no media host is configured; Activity defaults to stdout.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Hub      *ws.Hub
	Relay    *media.Relay
	Activity activity.Logger
}

func SetupRoutes(app *fiber.App, d Deps) {
	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg)
	userHandler := handlers.NewUserHandler(d.DB)
	categoryHandler := handlers.NewCategoryHandler(d.DB)
	productHandler := handlers.NewProductHandler(d.DB, d.Cfg, d.Activity)
	cartHandler := handlers.NewCartHandler(d.DB)
	orderHandler := handlers.NewOrderHandler(d.DB, d.Hub, d.Activity)
	chatHandler := handlers.NewChatHandler(d.Hub, d.DB)
	uploadHandler := handlers.NewUploadHandler(d.DB, d.Relay)

	protected := middleware.Protected(d.Cfg.JWTSecret, d.DB)

	api := app.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimit(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimit(), authHandler.Login)
	auth.Post("/forgot-password", middleware.AuthRateLimit(), authHandler.ForgotPassword)
	auth.Post("/reset-password", middleware.AuthRateLimit(), authHandler.ResetPassword)
	auth.Post("/logout", protected, authHandler.Logout)
	auth.Get("/me", protected, authHandler.Me)
	auth.Put("/me", protected, authHandler.UpdateProfile)

	// Public catalog
	api.Get("/categories", categoryHandler.GetCategories)
	api.Get("/products", productHandler.GetAllProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Get("/users/:id", userHandler.GetProfile)

	// Listing management
	api.Post("/products", protected, productHandler.CreateProduct)
	api.Put("/products/:id", protected, productHandler.UpdateProduct)
	api.Delete("/products/:id", protected, productHandler.DeleteProduct)
	api.Patch("/products/:id/status", protected, productHandler.UpdateStatus)
	api.Get("/my-products", protected, productHandler.GetMyProducts)
	api.Post("/my-products/bulk", protected, productHandler.Bulk)

	// Cart
	cart := api.Group("/cart", protected)
	cart.Get("/", cartHandler.GetCart)
	cart.Delete("/", cartHandler.ClearCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:productId", cartHandler.UpdateItem)
	cart.Delete("/items/:productId", cartHandler.RemoveItem)

	// Orders
	orders := api.Group("/orders", protected)
	orders.Post("/checkout", orderHandler.Checkout)
	orders.Get("/", orderHandler.GetMyOrders)
	orders.Get("/sales", orderHandler.GetMySales)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)

	// Messaging
	chats := api.Group("/conversations", protected)
	chats.Post("/", chatHandler.StartConversation)
	chats.Get("/", chatHandler.GetMyConversations)
	chats.Get("/:id/messages", chatHandler.GetMessages)
	chats.Post("/:id/messages", chatHandler.SendMessage)

	// Media relay
	upload := app.Group("/upload")
	upload.Post("/optimize-url", uploadHandler.OptimizeURL)
	upload.Post("/image", protected, uploadHandler.UploadImage)
	upload.Post("/images", protected, uploadHandler.UploadImages)
	upload.Post("/avatar", protected, uploadHandler.UploadAvatar)
	upload.Post("/document", protected, uploadHandler.UploadDocument)
	upload.Delete("/image/:publicId", protected, uploadHandler.DeleteImage)
	upload.Post("/signature", protected, uploadHandler.Signature)
	upload.Get("/my-files", protected, uploadHandler.MyFiles)

	// Realtime
	if d.Hub != nil {
		app.Get("/ws", chatHandler.WebSocketUpgradeMiddleware, middleware.ProtectedQuery(d.Cfg.JWTSecret, d.DB), chatHandler.Handler())
	}
}
