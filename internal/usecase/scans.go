package usecase

import (
	"context"
	"fmt"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
)

// ScanQueryUseCase provides read access to the stored scan history.
type ScanQueryUseCase struct {
	storage domrepo.Storage
}

func NewScanQueryUseCase(storage domrepo.Storage) *ScanQueryUseCase {
	return &ScanQueryUseCase{storage: storage}
}

type GetScansParams struct {
	Location string
	From     time.Time
	To       time.Time
	Limit    int
}

type GetScansResult struct {
	Location string
	From     time.Time
	To       time.Time
	Count    int
	Scans    []*models.ScanEvent
}

func (uc *ScanQueryUseCase) GetScans(ctx context.Context, p GetScansParams) (*GetScansResult, error) {
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}

	scans, err := uc.storage.Query(ctx, p.Location, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}

	return &GetScansResult{
		Location: p.Location,
		From:     p.From,
		To:       p.To,
		Count:    len(scans),
		Scans:    scans,
	}, nil
}
