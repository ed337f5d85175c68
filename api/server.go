package api

import (
	"context"
	"net/http"
	"tixgate/db"
	"tixgate/service/checkin"
	"tixgate/service/order"
	"tixgate/service/security"
	"tixgate/service/uploader"
	"tixgate/service/worker"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// UserStore is the slice of the storage layer the auth handlers touch
type UserStore interface {
	CreateUser(ctx context.Context, user *db.User) error
	UserByEmail(ctx context.Context, email string) (*db.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// Server struct, holds the router, dependencies, system config and logger
type Server struct {
	// API router
	router *gin.Engine

	// System config
	config *util.Config

	// Queries
	queries *db.Queries
	users   UserStore

	// Dependencies
	jwtService     *security.JWTService
	distributor    worker.TaskDistributor
	uploadService  uploader.Uploader
	orderService   *order.OrderService
	checkinService *checkin.CheckinService
}

// Constructor method for server struct
func NewServer(
	config *util.Config,
	queries *db.Queries,
	jwtService *security.JWTService,
	distributor worker.TaskDistributor,
	uploadService uploader.Uploader,
	orderService *order.OrderService,
	checkinService *checkin.CheckinService,
) *Server {
	return &Server{
		router:         gin.Default(),
		config:         config,
		queries:        queries,
		users:          queries,
		jwtService:     jwtService,
		distributor:    distributor,
		uploadService:  uploadService,
		orderService:   orderService,
		checkinService: checkinService,
	}
}

// Helper method to register handler for API
func (server *Server) RegisterHandler() {
	server.router.Use(server.CORSMiddleware())

	// Order flow. Purchases are open to guests, so these stay outside the
	// auth group; a bearer token, when present, binds the order to the user.
	server.router.POST("/orders/create-payment", server.OptionalAuthMiddleware(), server.CreatePayment)
	server.router.GET("/orders/success/:orderCode", server.PaymentSuccess)
	server.router.GET("/orders/confirmation/:orderCode", server.OptionalAuthMiddleware(), server.OrderConfirmation)
	server.router.POST("/orders/payos-hook", server.PayOSWebhook)

	// Gate check-in, staff and admin only
	gate := server.router.Group("/checkin", server.AuthMiddleware(db.RoleStaff, db.RoleAdmin))
	{
		gate.GET("/:ticketCode", server.FetchTicket)
		gate.POST("/:ticketCode/confirm", server.ConfirmCheckin)
	}

	// API routes
	api := server.router.Group("/api")
	{
		api.POST("/auth/register", server.Register)
		api.POST("/auth/login", server.Login)
		api.POST("/auth/refresh", server.RefreshToken)

		// Public catalog reads
		api.GET("/events", server.ListEvents)
		api.GET("/events/:id", server.GetEvent)
		api.GET("/events/:id/form", server.GetForm)

		// Catalog management, admin only
		admin := api.Group("", server.AuthMiddleware(db.RoleAdmin))
		{
			admin.POST("/events", server.CreateEvent)
			admin.PATCH("/events/:id", server.UpdateEvent)
			admin.DELETE("/events/:id", server.DeleteEvent)
			admin.POST("/events/:id/thumbnail", server.UploadThumbnail)
			admin.POST("/events/:id/images", server.UploadEventImages)
			admin.POST("/events/:id/staff", server.AssignStaff)

			admin.POST("/events/:id/showtimes", server.CreateShowtime)
			admin.PATCH("/events/:id/showtimes/:showtimeId", server.UpdateShowtime)
			admin.DELETE("/events/:id/showtimes/:showtimeId", server.DeleteShowtime)

			admin.POST("/events/:id/showtimes/:showtimeId/classes", server.CreateTicketClass)
			admin.PATCH("/events/:id/showtimes/:showtimeId/classes/:classId", server.UpdateTicketClass)
			admin.DELETE("/events/:id/showtimes/:showtimeId/classes/:classId", server.DeleteTicketClass)

			admin.PUT("/events/:id/form", server.ReplaceForm)
			admin.POST("/events/:id/tickets", server.IssueTickets)
		}
	}

	// Swagger UI
	server.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start server
func (server *Server) Start() error {
	server.RegisterHandler()
	return server.router.Run(server.config.ServerAddr)
}

// Error response struct
type ErrorResponse struct {
	Message string `json:"error"`
}

// Success message struct
type SuccessMessage struct {
	Message string `json:"message"`
}

func internalError(ctx *gin.Context) {
	ctx.JSON(http.StatusInternalServerError, ErrorResponse{"Internal server error"})
}
