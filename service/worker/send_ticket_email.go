package worker

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"tixgate/db"
	"tixgate/util"

	"github.com/hibiken/asynq"
)

type SendTicketEmailPayload struct {
	OrderCode int64 `json:"order_code"`
}

const SendTicketEmail = "send-ticket-email"

//go:embed ticket_email.html
var ticketEmailFS embed.FS

// Data handed to the ticket email template
type ticketEmailData struct {
	BuyerName  string
	EventTitle string
	Tickets    []ticketEmailTicket
}

type ticketEmailTicket struct {
	Code      string
	ClassName string
	QRBase64  string
}

// Send the buyer one email carrying every ticket of the order, each with a
// QR code of its ticket code for the check-in scanner
func (processor *RedisTaskProcessor) HandleSendTicketEmail(ctx context.Context, task *asynq.Task) error {
	var payload SendTicketEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload for task %s: %w", SendTicketEmail, err)
	}

	tickets, err := processor.queries.TicketsByOrderCode(ctx, payload.OrderCode)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		util.LOGGER.Warn("no tickets for order, skip ticket email", "order_code", payload.OrderCode)
		return nil
	}

	// All tickets of an order share one buyer
	first := tickets[0]
	email := first.GuestEmail
	name := first.GuestName
	if first.Owner != nil {
		email = first.Owner.Email
		name = first.Owner.Name
	}
	if email == "" {
		util.LOGGER.Warn("order has no buyer email, skip ticket email", "order_code", payload.OrderCode)
		return nil
	}

	data := ticketEmailData{
		BuyerName:  name,
		EventTitle: first.Event.Title,
	}
	for _, ticket := range tickets {
		if ticket.Status != db.TicketPaid && ticket.Status != db.TicketCheckedIn {
			continue
		}

		qr, err := util.GenerateQR(ticket.TicketCode)
		if err != nil {
			return fmt.Errorf("failed to generate QR for ticket %s: %w", ticket.TicketCode, err)
		}

		data.Tickets = append(data.Tickets, ticketEmailTicket{
			Code:      ticket.TicketCode,
			ClassName: ticket.TicketClass.Name,
			QRBase64:  base64.StdEncoding.EncodeToString(qr),
		})
	}

	if len(data.Tickets) == 0 {
		util.LOGGER.Warn("order has no paid tickets, skip ticket email", "order_code", payload.OrderCode)
		return nil
	}

	// Prepare the HTML email body
	tmpl, err := template.ParseFS(ticketEmailFS, "ticket_email.html")
	if err != nil {
		return err
	}
	var buffer bytes.Buffer
	if err = tmpl.Execute(&buffer, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("Your tickets for %s", first.Event.Title)
	return processor.mailService.SendEmail(email, subject, buffer.String())
}
