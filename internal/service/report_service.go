package service

import (
	"context"
	"errors"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidPlatform  = errors.New("invalid platform")
)

// AdSpendSummary is what the dashboard renders for one platform and window.
type AdSpendSummary struct {
	Platform  domain.Platform                `json:"platform"`
	From      time.Time                      `json:"from"`
	To        time.Time                      `json:"to"`
	Campaigns []repository.AdSpendSummaryRow `json:"campaigns"`
	TotalCost int64                          `json:"total_cost"`
	TotalLead int64                          `json:"total_leads"`
}

type ReportService struct {
	campaign repository.CampaignRepository
}

func NewReportService(campaign repository.CampaignRepository) *ReportService {
	return &ReportService{campaign: campaign}
}

func (s *ReportService) AdSpendSummary(ctx context.Context, platform domain.Platform, from, to time.Time) (*AdSpendSummary, error) {
	if !platform.Valid() {
		return nil, ErrInvalidPlatform
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	rows, err := s.campaign.AggregateAdSpend(ctx, platform, from, to)
	if err != nil {
		return nil, err
	}
	summary := &AdSpendSummary{Platform: platform, From: from, To: to, Campaigns: rows}
	for _, r := range rows {
		summary.TotalCost += r.Cost
		summary.TotalLead += r.Leads
	}
	return summary, nil
}
