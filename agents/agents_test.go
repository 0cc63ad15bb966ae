package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
)

type fakeBookingCollaborator struct{}

func (fakeBookingCollaborator) CreateBooking(ctx context.Context, userID int64, serviceType, subcategory, date, timeStr, pincode string) (string, error) {
	return "BKG123", nil
}
func (fakeBookingCollaborator) CancelBooking(ctx context.Context, userID int64, bookingID string) error {
	return nil
}

func TestBookingHandler_ReturnsConfirmationWithBookingID(t *testing.T) {
	h := NewBookingHandler(fakeBookingCollaborator{})
	result, err := h.Execute(context.Background(), Request{
		UserID: 1,
		Entities: map[string]string{
			"SERVICE_TYPE": "Plumbing", "DATE": "2026-08-02", "TIME": "16:00",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, result.ResponseText, "BKG123")
	assert.Equal(t, domain.ActionBook, result.ActionTaken)
}

func TestCancellationHandler_ReturnsConfirmation(t *testing.T) {
	h := NewCancellationHandler(fakeBookingCollaborator{})
	result, err := h.Execute(context.Background(), Request{Entities: map[string]string{"BOOKING_ID": "ORDAB123456"}})
	require.NoError(t, err)
	assert.Contains(t, result.ResponseText, "ORDAB123456")
	assert.Equal(t, domain.ActionCancel, result.ActionTaken)
}

type fakeComplaintCollaborator struct {
	repeatCount int
}

func (f fakeComplaintCollaborator) FileComplaint(ctx context.Context, userID int64, bookingID, issueType, description string) (string, int, error) {
	return "TKT1", f.repeatCount, nil
}

func TestComplaintHandler_EnqueuesWithPriorityScore(t *testing.T) {
	queue := NewPriorityQueue()
	h := NewComplaintHandler(fakeComplaintCollaborator{repeatCount: 2}, queue)

	result, err := h.Execute(context.Background(), Request{Entities: map[string]string{"ISSUE_TYPE": "safety"}})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionFileComplaint, result.ActionTaken)
	assert.Equal(t, 1, queue.Len())

	item, ok := queue.Pop()
	require.True(t, ok)
	assert.Equal(t, "TKT1", item.TicketID)
	assert.Equal(t, 130, item.Score) // 100 (safety) + 2*15
}

func TestPriorityQueue_PopsHighestScoreFirst(t *testing.T) {
	queue := NewPriorityQueue()
	queue.Push(complaintItem{TicketID: "low", Score: 10})
	queue.Push(complaintItem{TicketID: "high", Score: 90})
	queue.Push(complaintItem{TicketID: "mid", Score: 50})

	first, _ := queue.Pop()
	second, _ := queue.Pop()
	third, _ := queue.Pop()
	assert.Equal(t, "high", first.TicketID)
	assert.Equal(t, "mid", second.TicketID)
	assert.Equal(t, "low", third.TicketID)
}

type fakePolicyAnswerer struct{ answer domain.PolicyAnswer }

func (f fakePolicyAnswerer) Answer(ctx context.Context, query string) (domain.PolicyAnswer, error) {
	return f.answer, nil
}

func TestPolicyHandler_PropagatesGroundingScoreAndSources(t *testing.T) {
	h := NewPolicyHandler(fakePolicyAnswerer{answer: domain.PolicyAnswer{
		Response: "Cancellations are free within 24 hours.", GroundingScore: 0.8, Confidence: domain.ConfidenceHigh,
		Sources: []map[string]interface{}{{"chunk_id": "c1"}},
	}})

	result, err := h.Execute(context.Background(), Request{Entities: map[string]string{"QUERY": "cancellation policy"}})
	require.NoError(t, err)
	require.NotNil(t, result.GroundingScore)
	assert.Equal(t, 0.8, *result.GroundingScore)
	assert.Len(t, result.Sources, 1)
}

func TestPolicyHandler_MissingQueryEntityIsError(t *testing.T) {
	h := NewPolicyHandler(fakePolicyAnswerer{})
	_, err := h.Execute(context.Background(), Request{})
	assert.Error(t, err)
}

func TestGreetingHandler_ReturnsCannedResponse(t *testing.T) {
	h := GreetingHandler{}
	result, err := h.Execute(context.Background(), Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ResponseText)
	assert.Equal(t, domain.ActionNone, result.ActionTaken)
}

func TestDeclineHandler_ReturnsCannedResponse(t *testing.T) {
	h := DeclineHandler{}
	result, err := h.Execute(context.Background(), Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ResponseText)
}

func TestDefaultHandlerMap_CoversEveryIntent(t *testing.T) {
	handlers := DefaultHandlerMap(Collaborators{
		Booking:      fakeBookingCollaborator{},
		Complaint:    fakeComplaintCollaborator{},
		Policy:       fakePolicyAnswerer{},
	})
	for intent := range domain.AllIntents {
		assert.Contains(t, handlers, intent, "missing handler for %s", intent)
	}
}
