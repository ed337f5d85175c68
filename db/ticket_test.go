package db

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Seed an event with one showtime and one ticket class so ticket rows have
// something to reference. Rows are cleaned up when the test finishes.
func seedTicketClass(t *testing.T) (*Event, *TicketClass) {
	t.Helper()
	ctx := context.Background()

	event := &Event{
		Title:       "Batch Test Concert",
		Description: "integration fixture",
		Shortkey:    fmt.Sprintf("BT%d", rand.Int63n(1_000_000_000)),
	}
	require.NoError(t, testQueries.DB.WithContext(ctx).Create(event).Error)

	showtime := &Showtime{
		EventID:   event.ID,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(26 * time.Hour),
		Location:  "Main Hall",
	}
	require.NoError(t, testQueries.DB.WithContext(ctx).Create(showtime).Error)

	class := &TicketClass{
		EventID:    event.ID,
		ShowtimeID: showtime.ID,
		Name:       "Standard",
		Price:      100_000,
		Active:     true,
	}
	require.NoError(t, testQueries.DB.WithContext(ctx).Create(class).Error)

	t.Cleanup(func() {
		testQueries.DB.Where("event_id = ?", event.ID).Delete(&Ticket{})
		testQueries.DB.Delete(event)
	})

	return event, class
}

func pendingBatch(event *Event, class *TicketClass, orderCode int64, size int) []Ticket {
	tickets := make([]Ticket, 0, size)
	for i := 0; i < size; i++ {
		tickets = append(tickets, Ticket{
			TicketCode:    fmt.Sprintf("%s-%010d", event.Shortkey, rand.Int63n(10_000_000_000)),
			GuestName:     "Guest Buyer",
			GuestEmail:    "guest@example.com",
			TicketClassID: class.ID,
			EventID:       event.ID,
			Status:        TicketPendingPayment,
			OrderCode:     orderCode,
		})
	}
	return tickets
}

func TestCreateTicketBatch(t *testing.T) {
	event, class := seedTicketClass(t)
	ctx := context.Background()
	orderCode := rand.Int63n(1_000_000_000_000)

	tickets := pendingBatch(event, class, orderCode, 3)
	require.NoError(t, testQueries.CreateTicketBatch(ctx, tickets))

	stored, err := testQueries.TicketsByOrderCode(ctx, orderCode)
	require.NoError(t, err)
	require.Len(t, stored, 3)
}

func TestCreateTicketBatchDuplicateOrder(t *testing.T) {
	event, class := seedTicketClass(t)
	ctx := context.Background()
	orderCode := rand.Int63n(1_000_000_000_000)

	require.NoError(t, testQueries.CreateTicketBatch(ctx, pendingBatch(event, class, orderCode, 2)))

	// Reusing the order code must fail and leave the second batch unwritten
	err := testQueries.CreateTicketBatch(ctx, pendingBatch(event, class, orderCode, 2))
	require.ErrorIs(t, err, ErrDuplicateOrder)

	stored, err := testQueries.TicketsByOrderCode(ctx, orderCode)
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

// Two purchases landing on the same order code at the same time must not
// both commit: the unique index on orders.order_code decides the winner,
// without relying on either transaction seeing the other's rows.
func TestCreateTicketBatchConcurrentDuplicate(t *testing.T) {
	event, class := seedTicketClass(t)
	ctx := context.Background()
	orderCode := rand.Int63n(1_000_000_000_000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = testQueries.CreateTicketBatch(ctx, pendingBatch(event, class, orderCode, 2))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			require.ErrorIs(t, err, ErrDuplicateOrder)
			lost++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, lost)

	stored, err := testQueries.TicketsByOrderCode(ctx, orderCode)
	require.NoError(t, err)
	require.Len(t, stored, 2)
}
