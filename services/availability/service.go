package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	"tutorhub/models"
	"tutorhub/services"
	"tutorhub/utils"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// SetAvailability reconciles the tutor's whole day against the requested
// slot set. Slots being retracted are checked for active bookings under the
// same per-key leases the reservation path uses, so a reservation committing
// concurrently cannot be orphaned by a retraction.
func (s *DefaultAvailabilityService) SetAvailability(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error) {
	if tutorID == "" {
		return nil, services.NewValidationError("tutor id is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, services.NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}

	catalog, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot catalog: %w", err)
	}
	known := make(map[string]bool, len(catalog))
	for _, ts := range catalog {
		known[ts.ID] = true
	}

	requested := make(map[string]bool, len(slotIDs))
	deduped := make([]string, 0, len(slotIDs))
	for _, id := range slotIDs {
		if !known[id] {
			return nil, services.NewNotFoundError("unknown slot %s", id)
		}
		if !requested[id] {
			requested[id] = true
			deduped = append(deduped, id)
		}
	}
	sort.Strings(deduped)

	current, err := s.Avail.ListByDate(ctx, tutorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load current availability: %w", err)
	}

	var retracted []string
	for _, row := range current {
		if !requested[row.SlotID] {
			retracted = append(retracted, row.SlotID)
		}
	}
	sort.Strings(retracted)

	// Hold the reservation lease for every slot being retracted while we
	// check for occupants and rewrite the day.
	releases := make([]func(), 0, len(retracted))
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	for _, slotID := range retracted {
		lockCtx, cancel := context.WithTimeout(ctx, s.LockTTL)
		release, err := s.Locker.Acquire(lockCtx, fmt.Sprintf("reserve:%s:%s:%s", tutorID, date, slotID), s.LockTTL)
		cancel()
		if err != nil {
			return nil, services.NewConflictError("slot %s is contended, try again: %v", slotID, err)
		}
		releases = append(releases, release)
	}

	for _, slotID := range retracted {
		if _, err := s.Bookings.FindActiveByKey(ctx, tutorID, date, slotID); err == nil {
			return nil, services.NewConflictError("slot %s on %s has an active booking and cannot be retracted", slotID, date)
		} else if err != bookingRepo.ErrNotFound {
			return nil, fmt.Errorf("failed to check bookings for slot %s: %w", slotID, err)
		}
	}

	rows, err := s.Avail.ReplaceDay(ctx, tutorID, date, deduped)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile availability: %w", err)
	}

	s.invalidateGrid(ctx, tutorID, date)
	s.Logger.Info("availability reconciled",
		zap.String("tutorId", tutorID),
		zap.String("date", date),
		zap.Int("published", len(rows)),
		zap.Int("retracted", len(retracted)))
	return rows, nil
}

func (s *DefaultAvailabilityService) ListAvailability(ctx context.Context, tutorID, from, to string) ([]models.Availability, error) {
	if tutorID == "" {
		return nil, services.NewValidationError("tutor id is required")
	}
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, services.NewValidationError("invalid from date %q, want YYYY-MM-DD", from)
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, services.NewValidationError("invalid to date %q, want YYYY-MM-DD", to)
	}
	if end.Before(start) {
		return nil, services.NewValidationError("date range is inverted: %s > %s", from, to)
	}
	return s.Avail.ListRange(ctx, tutorID, from, to)
}

func (s *DefaultAvailabilityService) ListCatalog(ctx context.Context) ([]models.TimeSlot, error) {
	return s.Catalog.List(ctx)
}

func (s *DefaultAvailabilityService) invalidateGrid(ctx context.Context, tutorID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, utils.SlotGridKey(tutorID, date)).Err(); err != nil {
		s.Logger.Warn("failed to invalidate slot grid",
			zap.String("tutorId", tutorID), zap.String("date", date), zap.Error(err))
	}
}
