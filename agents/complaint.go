package agents

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/shaonidutta/converge-ai/domain"
)

// ComplaintCollaborator owns complaint persistence; the core never
// writes complaint rows itself.
type ComplaintCollaborator interface {
	FileComplaint(ctx context.Context, userID int64, bookingID, issueType, description string) (ticketID string, repeatCount int, err error)
}

// issuePriorityWeight scores severity per issue_type, grounded on the
// original's priority_queue_repository.py weighting safety/financial
// issues above cosmetic ones.
var issuePriorityWeight = map[string]int{
	"safety":          100,
	"no_show":         80,
	"damage":          70,
	"payment_dispute": 60,
	"quality":         40,
	"delay":           30,
	"other":           10,
}

// PriorityScore combines the issue-type weight with a repeat-complaint
// bonus, consumed by the (out-of-scope) ops dashboard queue.
func PriorityScore(issueType string, repeatCount int) int {
	weight, ok := issuePriorityWeight[issueType]
	if !ok {
		weight = issuePriorityWeight["other"]
	}
	return weight + repeatCount*15
}

// complaintItem is one entry in the in-process PriorityQueue mirror of
// the ops desk's queue, used for local ranking/testing without a full
// database roundtrip.
type complaintItem struct {
	TicketID  string
	UserID    int64
	IssueType string
	Score     int
	index     int
}

// PriorityQueue orders complaintItems by descending Score, grounded on
// container/heap's canonical priority-queue example and the original's
// models/priority_queue.py ordering.
type PriorityQueue struct {
	mu    sync.Mutex
	items complaintHeap
}

func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{}
}

func (q *PriorityQueue) Push(item complaintItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.items, item)
}

// Pop removes and returns the highest-priority complaint, ok=false if empty.
func (q *PriorityQueue) Pop() (complaintItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return complaintItem{}, false
	}
	return heap.Pop(&q.items).(complaintItem), true
}

func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

type complaintHeap []complaintItem

func (h complaintHeap) Len() int            { return len(h) }
func (h complaintHeap) Less(i, j int) bool  { return h[i].Score > h[j].Score }
func (h complaintHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *complaintHeap) Push(x interface{}) {
	item := x.(complaintItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *complaintHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ComplaintHandler files a complaint and enqueues it on the escalation
// queue for the ops desk.
type ComplaintHandler struct {
	collaborator ComplaintCollaborator
	queue        *PriorityQueue
}

func NewComplaintHandler(collaborator ComplaintCollaborator, queue *PriorityQueue) *ComplaintHandler {
	if queue == nil {
		queue = NewPriorityQueue()
	}
	return &ComplaintHandler{collaborator: collaborator, queue: queue}
}

func (h *ComplaintHandler) Execute(ctx context.Context, req Request) (Result, error) {
	bookingID := req.Entities[string(domain.EntityBookingID)]
	issueType := req.Entities[string(domain.EntityIssueType)]
	description := req.Entities[string(domain.EntityQuery)]

	ticketID, repeatCount, err := h.collaborator.FileComplaint(ctx, req.UserID, bookingID, issueType, description)
	if err != nil {
		return Result{}, fmt.Errorf("complaint handler: file complaint: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}

	score := PriorityScore(issueType, repeatCount)
	h.queue.Push(complaintItem{TicketID: ticketID, UserID: req.UserID, IssueType: issueType, Score: score})

	return Result{
		ResponseText: fmt.Sprintf("I've logged your complaint (ticket %s) and escalated it to our support team. They'll follow up shortly.", ticketID),
		ActionTaken:  domain.ActionFileComplaint,
		Metadata:     map[string]interface{}{"ticket_id": ticketID, "priority_score": score},
	}, nil
}

var _ Handler = (*ComplaintHandler)(nil)
