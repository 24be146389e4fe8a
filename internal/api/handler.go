package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"facility-buddy-backend/internal/aggregate"
	"facility-buddy-backend/internal/directory"
	"facility-buddy-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	directory   *directory.Service
	aggregator  *aggregate.Aggregator
	selection   *aggregate.SelectionSet
	info        directory.InfoClient
	webpush     *webpush.Options
	nearbyCount int
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, dir *directory.Service, agg *aggregate.Aggregator, info directory.InfoClient, webpushOptions *webpush.Options, nearbyCount int) *Handler {
	return &Handler{
		store:       s,
		directory:   dir,
		aggregator:  agg,
		selection:   aggregate.NewSelectionSet(),
		info:        info,
		webpush:     webpushOptions,
		nearbyCount: nearbyCount,
	}
}
