package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"tixgate/db"
	"tixgate/service/checkin"
	"tixgate/service/order"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type webhookTicketStore struct {
	mock.Mock
}

func (m *webhookTicketStore) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *webhookTicketStore) CreateTicketBatch(ctx context.Context, tickets []db.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *webhookTicketStore) CountIssuedByClass(ctx context.Context, classID uuid.UUID) (int64, error) {
	args := m.Called(ctx, classID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *webhookTicketStore) TicketsByOrderCode(ctx context.Context, orderCode int64) ([]db.Ticket, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db.Ticket), args.Error(1)
}

func (m *webhookTicketStore) MarkOrderPaid(ctx context.Context, orderCode int64) (int64, error) {
	args := m.Called(ctx, orderCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *webhookTicketStore) CancelPendingOrder(ctx context.Context, orderCode int64) (int64, error) {
	args := m.Called(ctx, orderCode)
	return args.Get(0).(int64), args.Error(1)
}

type stubDistributor struct {
	mock.Mock
}

func (m *stubDistributor) DistributeTask(ctx context.Context, taskName string, payload any, opts ...asynq.Option) error {
	args := m.Called(ctx, taskName, payload)
	return args.Error(0)
}

func newTestServer(tickets order.TicketStore, distributor *stubDistributor) *Server {
	gin.SetMode(gin.TestMode)
	orderService := order.NewOrderService(tickets, nil, nil, distributor, "", "")
	server := NewServer(&util.Config{}, nil, nil, distributor, nil, orderService, checkin.NewCheckinService(nil))
	server.RegisterHandler()
	return server
}

func postJSON(server *Server, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	request.Header.Set("Content-Type", "application/json")
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func TestPayOSWebhookConfirmsOrder(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	tickets.On("MarkOrderPaid", mock.Anything, int64(123456)).Return(int64(2), nil)
	distributor.On("DistributeTask", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	recorder := postJSON(server, "/orders/payos-hook", map[string]any{
		"code": "00",
		"desc": "success",
		"data": map[string]any{"orderCode": 123456, "code": "00", "status": "PAID", "amount": 200000},
	})

	require.Equal(t, http.StatusOK, recorder.Code)
	tickets.AssertCalled(t, "MarkOrderPaid", mock.Anything, int64(123456))
	distributor.AssertNumberOfCalls(t, "DistributeTask", 1)
}

func TestPayOSWebhookRedelivery(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	tickets.On("MarkOrderPaid", mock.Anything, int64(123456)).Return(int64(2), nil).Once()
	tickets.On("MarkOrderPaid", mock.Anything, int64(123456)).Return(int64(0), nil).Once()
	distributor.On("DistributeTask", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	payload := map[string]any{
		"code": "00",
		"data": map[string]any{"orderCode": 123456, "code": "00", "status": "PAID"},
	}

	first := postJSON(server, "/orders/payos-hook", payload)
	second := postJSON(server, "/orders/payos-hook", payload)

	// Both deliveries are acknowledged, the email fires once
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	distributor.AssertNumberOfCalls(t, "DistributeTask", 1)
}

func TestPayOSWebhookMissingOrderCode(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	recorder := postJSON(server, "/orders/payos-hook", map[string]any{
		"code": "00",
		"data": map[string]any{"code": "00", "status": "PAID"},
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	tickets.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything)
}

func TestPayOSWebhookNonSuccess(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	recorder := postJSON(server, "/orders/payos-hook", map[string]any{
		"code": "01",
		"data": map[string]any{"orderCode": 123456, "code": "01", "status": "CANCELLED"},
	})

	// Acknowledged so the gateway stops retrying, but no state change
	require.Equal(t, http.StatusOK, recorder.Code)
	tickets.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything)
}

func TestPayOSWebhookBadPayload(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/orders/payos-hook", bytes.NewReader([]byte("not json")))
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	tickets.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything)
}

func TestPaymentSuccessRedirect(t *testing.T) {
	tickets := new(webhookTicketStore)
	distributor := new(stubDistributor)
	server := newTestServer(tickets, distributor)

	tickets.On("MarkOrderPaid", mock.Anything, int64(777)).Return(int64(1), nil)
	distributor.On("DistributeTask", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/orders/success/777", nil)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	tickets.AssertCalled(t, "MarkOrderPaid", mock.Anything, int64(777))
}

func TestPaymentSuccessInvalidOrderCode(t *testing.T) {
	tickets := new(webhookTicketStore)
	server := newTestServer(tickets, new(stubDistributor))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/orders/success/not-a-number", nil)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	tickets.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything)
}

func TestOrderConfirmationUnknownOrder(t *testing.T) {
	tickets := new(webhookTicketStore)
	server := newTestServer(tickets, new(stubDistributor))

	tickets.On("TicketsByOrderCode", mock.Anything, int64(42)).Return([]db.Ticket{}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/orders/confirmation/42", nil)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestOrderConfirmationOwnedOrderAnonymous(t *testing.T) {
	tickets := new(webhookTicketStore)
	server := newTestServer(tickets, new(stubDistributor))

	owner := uuid.New()
	tickets.On("TicketsByOrderCode", mock.Anything, int64(42)).Return([]db.Ticket{
		{Model: db.Model{ID: uuid.New()}, OwnerID: &owner, OrderCode: 42},
	}, nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/orders/confirmation/42", nil)
	server.router.ServeHTTP(recorder, request)

	// Owned orders never leak to anonymous viewers, and look like a 404
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCreatePaymentGuestWithoutIdentity(t *testing.T) {
	tickets := new(webhookTicketStore)
	server := newTestServer(tickets, new(stubDistributor))

	recorder := postJSON(server, "/orders/create-payment", map[string]any{
		"event_id":        uuid.New(),
		"showtime_id":     uuid.New(),
		"ticket_class_id": uuid.New(),
		"quantity":        1,
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	tickets.AssertNotCalled(t, "CreateTicketBatch", mock.Anything, mock.Anything)
}
