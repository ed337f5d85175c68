package worker

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/hibiken/asynq"
)

type SendWelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

const SendWelcomeEmail = "send-welcome-email"

//go:embed welcome_email.html
var welcomeEmailFS embed.FS

// Greet a freshly registered user
func (processor *RedisTaskProcessor) HandleSendWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	var payload SendWelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload for task %s: %w", SendWelcomeEmail, err)
	}

	tmpl, err := template.ParseFS(welcomeEmailFS, "welcome_email.html")
	if err != nil {
		return err
	}
	var buffer bytes.Buffer
	if err = tmpl.Execute(&buffer, payload); err != nil {
		return err
	}

	return processor.mailService.SendEmail(payload.Email, "Welcome to tixgate", buffer.String())
}
