package main

import (
	"context"
	"os"
	"tixgate/api"
	"tixgate/db"
	"tixgate/service/checkin"
	"tixgate/service/mail"
	"tixgate/service/order"
	"tixgate/service/payment"
	"tixgate/service/security"
	"tixgate/service/uploader"
	"tixgate/service/worker"
	"tixgate/util"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load config
	config := util.LoadConfig(".env")

	// Connect to database
	queries := db.NewQueries()
	if err := queries.ConnectDB(config.DbConn); err != nil {
		util.LOGGER.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}

	// Run database migration
	if err := queries.AutoMigration(); err != nil {
		util.LOGGER.Error("Error running auto migration", "error", err)
		os.Exit(1)
	}

	// Connect Redis
	ctx := context.Background()
	if err := queries.ConnectRedis(ctx, &redis.Options{Addr: config.RedisAddr}); err != nil {
		util.LOGGER.Error("Error connecting to Redis", "error", err)
		os.Exit(1)
	}

	// Create dependencies for server
	jwtService := security.NewJWTService(config.SecretKey, config.TokenExpiration, config.RefreshTokenExpiration)
	distributor := worker.NewRedisTaskDistributor(asynq.RedisClientOpt{Addr: config.RedisAddr})
	gateway := payment.NewPayOSClient(config.PayOSBaseURL, config.PayOSClientID, config.PayOSAPIKey, config.PayOSChecksumKey)

	cld, err := uploader.NewCld(config.CloudName, config.CloudKey, config.CloudSecret)
	if err != nil {
		util.LOGGER.Error("failed to initialize Cloudinary service", "error", err)
		os.Exit(1)
	}

	orderService := order.NewOrderService(queries, queries, gateway, distributor, config.ReturnURL, config.CancelURL)
	checkinService := checkin.NewCheckinService(queries)

	// Start the background processor in a separate goroutine (it blocks)
	mailService := mail.NewEmailService(config.SMTPHost, config.SMTPPort, config.Email, config.AppPassword)
	go StartBackgroundProcessor(asynq.RedisClientOpt{Addr: config.RedisAddr}, queries, mailService)

	// Start server
	server := api.NewServer(config, queries, jwtService, distributor, cld, orderService, checkinService)
	if err := server.Start(); err != nil {
		util.LOGGER.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func StartBackgroundProcessor(
	redisOpts asynq.RedisClientOpt,
	queries *db.Queries,
	mailService mail.MailService,
) error {
	processor := worker.NewRedisTaskProcessor(redisOpts, queries, mailService)
	return processor.Start()
}
