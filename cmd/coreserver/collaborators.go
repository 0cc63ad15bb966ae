package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shaonidutta/converge-ai/entity"
)

// The engine never owns business data (§1 Non-goals): bookings,
// complaints, refunds, pricing and payments live in collaborator
// services. The stand-ins below are in-memory placeholders wired only
// so this demo binary can run end to end without those services; a
// real deployment replaces every one of them with a client for the
// actual collaborator.

type demoBookings struct {
	mu   sync.Mutex
	byID map[string]string
}

func newDemoBookings() *demoBookings { return &demoBookings{byID: map[string]string{}} }

func (d *demoBookings) CreateBooking(ctx context.Context, userID int64, serviceType, subcategory, date, timeStr, pincode string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := "BKG" + uuid.New().String()[:8]
	d.byID[id] = fmt.Sprintf("%s/%s on %s %s at %s", serviceType, subcategory, date, timeStr, pincode)
	return id, nil
}

func (d *demoBookings) CancelBooking(ctx context.Context, userID int64, bookingID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byID, bookingID)
	return nil
}

func (d *demoBookings) DefaultPincode(ctx context.Context, userID int64) (string, bool) {
	return "560001", true
}

type demoComplaints struct {
	mu      sync.Mutex
	repeats map[int64]int
}

func newDemoComplaints() *demoComplaints { return &demoComplaints{repeats: map[int64]int{}} }

func (d *demoComplaints) FileComplaint(ctx context.Context, userID int64, bookingID, issueType, description string) (string, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repeats[userID]++
	return "TKT" + uuid.New().String()[:8], d.repeats[userID], nil
}

type demoRefunds struct{}

func (demoRefunds) RequestRefund(ctx context.Context, userID int64, bookingID string) (string, error) {
	return "RFD" + uuid.New().String()[:8], nil
}

type demoPricing struct{ catalog *entity.Catalog }

func (d demoPricing) Quote(ctx context.Context, serviceType, subcategory string) (float64, error) {
	svc, ok := d.catalog.FindExact(serviceType)
	if !ok {
		return 0, fmt.Errorf("unknown service type %q", serviceType)
	}
	if subcategory == "" && len(svc.Subcategories) > 0 {
		return svc.Subcategories[0].StartingPrice, nil
	}
	sub, ok := d.catalog.FindSubcategory(svc, subcategory)
	if !ok {
		return 0, fmt.Errorf("unknown subcategory %q for %q", subcategory, serviceType)
	}
	return sub.StartingPrice, nil
}

type demoAvailability struct{}

func (demoAvailability) CheckAvailability(ctx context.Context, serviceType, date string) (bool, []string, error) {
	return true, []string{"10:00", "14:00", "16:00"}, nil
}

type demoPayments struct{}

func (demoPayments) InvestigatePaymentIssue(ctx context.Context, userID int64, bookingID, paymentType string) (string, error) {
	return "PAYTKT" + uuid.New().String()[:8], nil
}

type demoCatalog struct{ catalog *entity.Catalog }

func (d demoCatalog) BrowseCategories(ctx context.Context, query string) ([]string, error) {
	names := make([]string, 0, len(d.catalog.Services))
	for _, s := range d.catalog.Services {
		if query == "" || strings.Contains(strings.ToLower(s.Name), strings.ToLower(query)) {
			names = append(names, s.Name)
		}
	}
	return names, nil
}
