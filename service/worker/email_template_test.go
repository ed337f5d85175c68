package worker

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTicketEmailTemplate(t *testing.T) {
	tmpl, err := template.ParseFS(ticketEmailFS, "ticket_email.html")
	require.NoError(t, err)

	var buffer bytes.Buffer
	err = tmpl.Execute(&buffer, ticketEmailData{
		BuyerName:  "Alex Doe",
		EventTitle: "Spring Concert",
		Tickets: []ticketEmailTicket{
			{Code: "ABCDEF-A1B2C3D4E5", ClassName: "Standard", QRBase64: "aGVsbG8="},
			{Code: "ABCDEF-F6G7H8I9J0", ClassName: "Standard", QRBase64: "aGVsbG8="},
		},
	})
	require.NoError(t, err)

	body := buffer.String()
	require.Contains(t, body, "Alex Doe")
	require.Contains(t, body, "Spring Concert")
	require.Contains(t, body, "ABCDEF-A1B2C3D4E5")
	require.Contains(t, body, "ABCDEF-F6G7H8I9J0")
	require.Equal(t, 2, strings.Count(body, "data:image/png;base64,"))
}

func TestWelcomeEmailTemplate(t *testing.T) {
	tmpl, err := template.ParseFS(welcomeEmailFS, "welcome_email.html")
	require.NoError(t, err)

	var buffer bytes.Buffer
	err = tmpl.Execute(&buffer, SendWelcomeEmailPayload{Email: "alex@example.com", Name: "Alex Doe"})
	require.NoError(t, err)
	require.Contains(t, buffer.String(), "Alex Doe")
}
