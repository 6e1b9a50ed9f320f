package service

import (
	"context"
	"time"

	"github.com/waymark-io/waymark/internal/model"
	"github.com/waymark-io/waymark/internal/store"
)

// HistoryService answers location history queries. Parameter validation
// (limit bounds, date format) is the HTTP boundary's job; this layer
// assumes sane inputs.
type HistoryService struct {
	store *store.Store
}

func NewHistoryService(st *store.Store) *HistoryService {
	return &HistoryService{store: st}
}

// History returns one page of the full history, newest-first, together
// with the total row count. A limit <= 0 returns everything.
func (s *HistoryService) History(ctx context.Context, limit, offset int) (*model.HistoryPage, error) {
	locs, err := s.store.ListLocations(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountLocations(ctx)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []model.Location{}
	}
	return &model.HistoryPage{Total: total, Data: locs}, nil
}

// HistoryByDate returns all locations received on the given calendar day,
// oldest-first.
func (s *HistoryService) HistoryByDate(ctx context.Context, day time.Time) (*model.DayHistory, error) {
	locs, err := s.store.ListLocationsByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []model.Location{}
	}
	return &model.DayHistory{
		Date:  day.Format("2006-01-02"),
		Count: len(locs),
		Data:  locs,
	}, nil
}

// HistoryByDevice returns the entire history of one device, newest-first.
func (s *HistoryService) HistoryByDevice(ctx context.Context, deviceID string) (*model.DeviceHistory, error) {
	locs, err := s.store.ListLocationsByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []model.Location{}
	}
	return &model.DeviceHistory{
		DeviceID: deviceID,
		Count:    len(locs),
		Data:     locs,
	}, nil
}
