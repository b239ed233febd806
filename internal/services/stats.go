package services

import (
	"context"
	"time"

	"github.com/lpdswing/mineru-web/internal/models"
)

const recentFilesLimit = 5

// StatsService aggregates per-user usage numbers for the dashboard.
type StatsService struct {
	files FileStore
}

func NewStatsService(files FileStore) *StatsService {
	return &StatsService{files: files}
}

func (s *StatsService) GetStats(ctx context.Context, userID string) (*models.StatsResponse, error) {
	total, err := s.files.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.files.CountUploadedSince(ctx, userID, midnight)
	if err != nil {
		return nil, err
	}

	used, err := s.files.SumSizeByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.files.ListRecent(ctx, userID, recentFilesLimit)
	if err != nil {
		return nil, err
	}

	resp := &models.StatsResponse{
		TotalFiles:   total,
		TodayUploads: today,
		UsedSpace:    used,
		RecentFiles:  make([]models.RecentFile, 0, len(recent)),
	}
	for _, f := range recent {
		resp.RecentFiles = append(resp.RecentFiles, models.RecentFile{
			ID:         f.ID,
			Name:       f.Filename,
			Size:       f.Size,
			UploadTime: f.UploadTime,
			Status:     f.Status,
		})
	}
	return resp, nil
}
