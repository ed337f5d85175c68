package worker

import (
	"tixgate/db"
	"tixgate/service/mail"

	"github.com/hibiken/asynq"
)

// Queue names, by impact of the task on the user
const (
	HIGH_IMPACT   = "critical"
	MEDIUM_IMPACT = "default"
	LOW_IMPACT    = "low"
)

// Task processor interface
type TaskProcessor interface {
	Start() error
}

// Redis task processor
type RedisTaskProcessor struct {
	// Asynq server
	server *asynq.Server

	// Dependencies
	queries     *db.Queries
	mailService mail.MailService
}

// Constructor method for Redis task processor
func NewRedisTaskProcessor(
	redisOpts asynq.RedisClientOpt,
	queries *db.Queries,
	mailService mail.MailService,
) TaskProcessor {
	server := asynq.NewServer(redisOpts, asynq.Config{
		Queues: map[string]int{
			HIGH_IMPACT:   6,
			MEDIUM_IMPACT: 3,
			LOW_IMPACT:    1,
		},
	})

	return &RedisTaskProcessor{
		server:      server,
		queries:     queries,
		mailService: mailService,
	}
}

// Method to start the worker server
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(SendTicketEmail, processor.HandleSendTicketEmail)
	mux.HandleFunc(SendWelcomeEmail, processor.HandleSendWelcomeEmail)

	return processor.server.Start(mux)
}
