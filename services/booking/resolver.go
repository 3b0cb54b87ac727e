package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	"tutorhub/models"
	"tutorhub/services"
	"tutorhub/utils"

	"go.uber.org/zap"
)

// SlotStatus returns the tutor's full day grid. The grid is a display hint:
// the reservation path re-resolves the single contested slot under its
// lease and never trusts a cached grid.
func (s *DefaultBookingService) SlotStatus(ctx context.Context, tutorID, date string) ([]models.SlotStatusEntry, error) {
	if tutorID == "" {
		return nil, services.NewValidationError("tutor id is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, services.NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}

	if grid, ok := s.cachedGrid(ctx, tutorID, date); ok {
		return grid, nil
	}

	grid, err := s.resolveGrid(ctx, tutorID, date)
	if err != nil {
		return nil, err
	}
	s.storeGrid(ctx, tutorID, date, grid)
	return grid, nil
}

// resolveGrid classifies every catalog slot. Availability is read before
// bookings and taken wins over the other two classifications, so a
// reservation committing between the two reads can only surface as taken,
// never as a stale available.
func (s *DefaultBookingService) resolveGrid(ctx context.Context, tutorID, date string) ([]models.SlotStatusEntry, error) {
	slots, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot catalog: %w", err)
	}

	avail, err := s.Avail.ListByDate(ctx, tutorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	published := make(map[string]bool, len(avail))
	for _, row := range avail {
		published[row.SlotID] = true
	}

	active, err := s.Bookings.ListActiveByTutorDate(ctx, tutorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}
	taken := make(map[string]bool, len(active))
	for _, b := range active {
		taken[b.SlotID] = true
	}

	grid := make([]models.SlotStatusEntry, 0, len(slots))
	for _, ts := range slots {
		entry := models.SlotStatusEntry{
			SlotID: ts.ID,
			Start:  ts.Start,
			End:    ts.End,
			Label:  ts.Label,
			Status: models.SlotUnavailable,
		}
		switch {
		case taken[ts.ID]:
			entry.Status = models.SlotTaken
		case published[ts.ID]:
			entry.Status = models.SlotAvailable
		}
		grid = append(grid, entry)
	}
	return grid, nil
}

// statusOf classifies one (tutor, date, slot) key. This is the authoritative
// check used inside the reservation lease; it never reads the grid cache.
func (s *DefaultBookingService) statusOf(ctx context.Context, tutorID, date, slotID string) (models.SlotStatus, error) {
	if _, err := s.Bookings.FindActiveByKey(ctx, tutorID, date, slotID); err == nil {
		return models.SlotTaken, nil
	} else if err != bookingRepo.ErrNotFound {
		return "", fmt.Errorf("failed to check active booking: %w", err)
	}

	published, err := s.Avail.Exists(ctx, tutorID, date, slotID)
	if err != nil {
		return "", fmt.Errorf("failed to check availability: %w", err)
	}
	if !published {
		return models.SlotUnavailable, nil
	}
	return models.SlotAvailable, nil
}

func (s *DefaultBookingService) cachedGrid(ctx context.Context, tutorID, date string) ([]models.SlotStatusEntry, bool) {
	if s.Cache == nil || s.GridTTL <= 0 {
		return nil, false
	}
	data, err := s.Cache.Get(ctx, utils.SlotGridKey(tutorID, date)).Result()
	if err != nil {
		return nil, false
	}
	var grid []models.SlotStatusEntry
	if err := json.Unmarshal([]byte(data), &grid); err != nil {
		return nil, false
	}
	return grid, true
}

func (s *DefaultBookingService) storeGrid(ctx context.Context, tutorID, date string, grid []models.SlotStatusEntry) {
	if s.Cache == nil || s.GridTTL <= 0 {
		return
	}
	data, err := json.Marshal(grid)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, utils.SlotGridKey(tutorID, date), data, s.GridTTL).Err(); err != nil {
		s.Logger.Warn("failed to cache slot grid",
			zap.String("tutorId", tutorID), zap.String("date", date), zap.Error(err))
	}
}

// invalidateGrid drops the cached day grid after any write to the key space.
func (s *DefaultBookingService) invalidateGrid(ctx context.Context, tutorID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, utils.SlotGridKey(tutorID, date)).Err(); err != nil {
		s.Logger.Warn("failed to invalidate slot grid",
			zap.String("tutorId", tutorID), zap.String("date", date), zap.Error(err))
	}
}
