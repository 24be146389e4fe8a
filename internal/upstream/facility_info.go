package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// CurrentFacility returns the facility the upstream session is currently
// pointed at.
func (c *Client) CurrentFacility(ctx context.Context) (FacilityInfo, error) {
	var info FacilityInfo
	if err := c.doJSON(ctx, http.MethodGet, pathFacilityInfo, nil, &info); err != nil {
		return FacilityInfo{}, err
	}
	return info, nil
}

// SetFacility points the upstream session at the given facility and returns
// its detail record. The session-context mutation is a side effect every
// caller must account for: fetching detail for facility B leaves the session
// on B until someone sets it back.
func (c *Client) SetFacility(ctx context.Context, orgID int64) (FacilityInfo, error) {
	payload := map[string]int64{"orgId": orgID}

	var info FacilityInfo
	if err := c.doJSON(ctx, http.MethodPost, pathSetFacility, payload, &info); err != nil {
		return FacilityInfo{}, err
	}

	// The upstream occasionally races with itself when the session context is
	// switched rapidly; a wrong echoed id means the detail belongs to some
	// other facility.
	if info.OrgID != orgID {
		return FacilityInfo{}, fmt.Errorf("%w: requested facility %d, got %d", ErrDataMismatch, orgID, info.OrgID)
	}
	return info, nil
}

// SchedulableFacilityIDs lists every facility with online scheduling
// enabled, in upstream order.
func (c *Client) SchedulableFacilityIDs(ctx context.Context) ([]int64, error) {
	var statuses []schedulingStatus
	if err := c.doJSON(ctx, http.MethodGet, pathSchedulingList, nil, &statuses); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(statuses))
	for _, s := range statuses {
		if s.OnlineSchedulingAvailable {
			ids = append(ids, s.OrgID)
		}
	}
	return ids, nil
}

// FacilityImage returns the facility's image URL, or "" when anything goes
// wrong. Images are decoration; a missing one never fails a refresh.
func (c *Client) FacilityImage(ctx context.Context, orgID int64) string {
	var img imageResponse
	if err := c.doJSON(ctx, http.MethodGet, pathFacilityImage+strconv.FormatInt(orgID, 10), nil, &img); err != nil {
		return ""
	}
	return img.URL
}
