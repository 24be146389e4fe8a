package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// FetchAvailability returns the open appointment sessions for one facility
// on one calendar day, across all four categories.
//
// The four per-category requests are independent reads and run concurrently;
// the merge is by category declaration order, never completion order, so the
// result is deterministic. Within a category the upstream session order is
// preserved. A category that answers with a non-OK status contributes no
// slots but does not fail the fetch; a transport-level failure does.
func (c *Client) FetchAvailability(ctx context.Context, facilityID int64, date time.Time) ([]AvailabilitySlot, error) {
	cats := Categories()
	perCategory := make([][]AvailabilitySlot, len(cats))
	errs := make([]error, len(cats))

	var wg sync.WaitGroup
	for i, cat := range cats {
		wg.Add(1)
		go func(i int, cat Category) {
			defer wg.Done()
			perCategory[i], errs[i] = c.fetchCategory(ctx, facilityID, date, cat)
		}(i, cat)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("availability fetch for %s failed: %w", cats[i], err)
		}
	}

	var slots []AvailabilitySlot
	for _, catSlots := range perCategory {
		slots = append(slots, catSlots...)
	}
	return slots, nil
}

// fetchCategory issues one availability request and filters the session list
// down to bookable slots. A non-OK status yields (nil, nil): partial data
// beats an all-or-nothing failure.
func (c *Client) fetchCategory(ctx context.Context, facilityID int64, date time.Time, cat Category) ([]AvailabilitySlot, error) {
	payload := sessionInfoRequest{
		SessionYear: date.Year(),
		// Zero-based month per the upstream contract.
		SessionMonth:        int(date.Month()) - 1,
		SessionDay:          date.Day(),
		AppointmentType:     cat.wireValue(),
		FacilityOrgID:       facilityID,
		IsGuestConfirmation: false,
	}

	var resp sessionInfoResponse
	if err := c.doJSON(ctx, http.MethodPost, pathSessionInfo, payload, &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			log.Printf("availability: skipping category %s for facility %d: %v", cat, facilityID, err)
			return nil, nil
		}
		return nil, err
	}

	var slots []AvailabilitySlot
	for _, session := range resp.SessionList {
		if session.Details.RoomFull {
			continue
		}

		if cat == CategoryInitiatory {
			male := seatCount(session.Details.MaleSeatsAvailable)
			female := seatCount(session.Details.FemaleSeatsAvailable)
			if male <= 0 && female <= 0 {
				continue
			}
			slots = append(slots, AvailabilitySlot{
				Category:    cat,
				Time:        session.SessionTime,
				MaleSeats:   &male,
				FemaleSeats: &female,
			})
			continue
		}

		seats := seatCount(session.Details.SeatsAvailable)
		if seats <= 0 {
			continue
		}
		slots = append(slots, AvailabilitySlot{
			Category: cat,
			Time:     session.SessionTime,
			Seats:    &seats,
		})
	}
	return slots, nil
}
