package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"tixgate/db"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^ABCDEF-[A-Z0-9]{10}$`)

func TestGenerateTicketCode(t *testing.T) {
	store := new(MockTicketStore)
	store.On("TicketCodeExists", mock.Anything, mock.Anything).Return(false, nil)

	service := NewOrderService(store, nil, nil, nil, "", "")

	code, err := service.generateTicketCode(context.Background(), "ABCDEF")
	require.NoError(t, err)
	require.Regexp(t, codePattern, code)
}

func TestGenerateTicketCodeRetriesOnCollision(t *testing.T) {
	store := new(MockTicketStore)
	store.On("TicketCodeExists", mock.Anything, mock.Anything).Return(true, nil).Twice()
	store.On("TicketCodeExists", mock.Anything, mock.Anything).Return(false, nil).Once()

	service := NewOrderService(store, nil, nil, nil, "", "")

	code, err := service.generateTicketCode(context.Background(), "ABCDEF")
	require.NoError(t, err)
	require.Regexp(t, codePattern, code)
	store.AssertNumberOfCalls(t, "TicketCodeExists", 3)
}

func TestGenerateTicketCodeExhausted(t *testing.T) {
	store := new(MockTicketStore)
	store.On("TicketCodeExists", mock.Anything, mock.Anything).Return(true, nil)

	service := NewOrderService(store, nil, nil, nil, "", "")

	_, err := service.generateTicketCode(context.Background(), "ABCDEF")
	require.ErrorIs(t, err, db.ErrCodeExhausted)
	store.AssertNumberOfCalls(t, "TicketCodeExists", maxCodeAttempts)
}

func TestGenerateTicketCodeMissingShortkey(t *testing.T) {
	store := new(MockTicketStore)
	service := NewOrderService(store, nil, nil, nil, "", "")

	_, err := service.generateTicketCode(context.Background(), "")
	require.ErrorIs(t, err, db.ErrMissingShortkey)
	store.AssertNotCalled(t, "TicketCodeExists")
}

func TestGenerateTicketCodeStoreError(t *testing.T) {
	store := new(MockTicketStore)
	store.On("TicketCodeExists", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	service := NewOrderService(store, nil, nil, nil, "", "")

	_, err := service.generateTicketCode(context.Background(), "ABCDEF")
	require.Error(t, err)
}

func TestGenerateOrderCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateOrderCode()
		require.Greater(t, code, int64(0))
		require.Less(t, code, orderCodeModulus)
	}
}
