package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
	"github.com/cluckhub/cluckhub/pkg/mailer"
)

// digestConcurrency bounds how many farms are processed at once.
const digestConcurrency = 4

// DigestService walks every farm, finds the reminders due "today" in a
// fixed timezone and emails each member a summary. Per-farm failures are
// logged and skipped; the job itself never fails a run because one farm's
// document is broken.
type DigestService struct {
	farmRepo domain.FarmRepository
	dataRepo domain.FarmDataRepository
	mailer   mailer.Mailer
	location *time.Location
	logger   logger.Logger
}

func NewDigestService(farmRepo domain.FarmRepository, dataRepo domain.FarmDataRepository, m mailer.Mailer, location *time.Location, logger logger.Logger) *DigestService {
	if location == nil {
		location = time.UTC
	}
	return &DigestService{
		farmRepo: farmRepo,
		dataRepo: dataRepo,
		mailer:   m,
		location: location,
		logger:   logger,
	}
}

// Run executes one digest pass over all farms.
func (s *DigestService) Run(ctx context.Context) error {
	ids, err := s.farmRepo.ListFarmIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list farms: %w", err)
	}

	today := time.Now().In(s.location)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.digestFarm(ctx, id, today); err != nil {
				s.logger.WithField("farm_id", id).WithField("error", err.Error()).Warn("Skipping farm digest")
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *DigestService) digestFarm(ctx context.Context, farmID string, today time.Time) error {
	farm, err := s.farmRepo.GetFarmByID(ctx, farmID)
	if err != nil {
		return err
	}

	doc, err := s.dataRepo.GetFarmData(ctx, farmID, "reminders")
	if err != nil {
		return err
	}
	reminders, err := domain.ParseReminders(doc)
	if err != nil {
		return err
	}

	var lines []string
	for _, r := range reminders {
		if !r.DueOn(today) {
			continue
		}
		line := r.Title
		if r.Notes != "" {
			line += ": " + r.Notes
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil
	}

	for _, member := range farm.Members {
		if err := s.mailer.SendReminderDigest(member.Email, farm.Name, lines); err != nil {
			s.logger.WithField("farm_id", farmID).WithField("email", member.Email).WithField("error", err.Error()).Warn("Failed to send digest email")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"farm_id":   farmID,
		"reminders": len(lines),
		"members":   len(farm.Members),
	}).Info("Sent reminder digest")
	return nil
}
