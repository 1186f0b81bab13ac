package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

type CarePointsRepository interface {
	Load(ctx context.Context) (models.CarePoints, bool, error)
	Save(ctx context.Context, record *models.CarePoints) error
}

// PointsAwarder credits the household for logging an entry.
type PointsAwarder interface {
	Award(ctx context.Context, at time.Time)
}

type CarePointsService struct {
	repo     CarePointsRepository
	location *time.Location
	mu       sync.Mutex
}

func NewCarePointsService(repo CarePointsRepository, location *time.Location) *CarePointsService {
	if location == nil {
		location = time.UTC
	}
	return &CarePointsService{repo: repo, location: location}
}

func (service *CarePointsService) Current(ctx context.Context) (models.CarePoints, error) {
	points, found, err := service.repo.Load(ctx)
	if err != nil {
		return models.CarePoints{}, err
	}
	if !found {
		return models.CarePoints{ID: models.CarePointsID}, nil
	}
	return points, nil
}

// Award adds one point. The streak grows on consecutive days, stays put on
// the same day and restarts after a gap. Failures are logged only.
func (service *CarePointsService) Award(ctx context.Context, at time.Time) {
	service.mu.Lock()
	defer service.mu.Unlock()

	points, err := service.Current(ctx)
	if err != nil {
		log.Printf("carepoints: load failed: %v", err)
		return
	}

	next := applyCarePointsAward(points, at, service.location)
	if err := service.repo.Save(ctx, &next); err != nil {
		log.Printf("carepoints: save failed: %v", err)
	}
}

func applyCarePointsAward(points models.CarePoints, at time.Time, location *time.Location) models.CarePoints {
	today := DateAtLocation(at, location)
	switch {
	case points.LastAwardedOn == nil:
		points.Streak = 1
	default:
		last := DateAtLocation(*points.LastAwardedOn, location)
		switch {
		case last.Equal(today):
		case last.AddDate(0, 0, 1).Equal(today):
			points.Streak++
		case last.After(today):
			return withAwardStamp(points, at, nil)
		default:
			points.Streak = 1
		}
	}
	return withAwardStamp(points, at, &today)
}

func withAwardStamp(points models.CarePoints, at time.Time, day *time.Time) models.CarePoints {
	points.ID = models.CarePointsID
	points.Points++
	if day != nil {
		points.LastAwardedOn = day
	}
	points.UpdatedAt = at
	return points
}
