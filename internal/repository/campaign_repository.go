package repository

import (
	"context"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"

	"gorm.io/gorm"
)

// AdSpendSummaryRow is an aggregate over AdSpend rows for one campaign.
type AdSpendSummaryRow struct {
	CampaignName string  `json:"campaign_name"`
	Cost         int64   `json:"cost"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Leads        int64   `json:"leads"`
	CostPerLead  float64 `json:"cost_per_lead" gorm:"-"`
}

type CampaignRepository interface {
	HasDepositPullForDate(ctx context.Context, pullDate time.Time) (bool, error)
	HasAdSpendPullForDate(ctx context.Context, platform domain.Platform, pullDate time.Time) (bool, error)
	ReplaceDepositsForDate(ctx context.Context, pullDate time.Time, rows []domain.DepositRecord) error
	ReplaceAdSpendForDate(ctx context.Context, platform domain.Platform, pullDate time.Time, rows []domain.AdSpend) error
	AggregateAdSpend(ctx context.Context, platform domain.Platform, from, to time.Time) ([]AdSpendSummaryRow, error)
}

type GormCampaignRepository struct{ db *gorm.DB }

func NewCampaignRepository(db *gorm.DB) CampaignRepository { return &GormCampaignRepository{db: db} }

func (r *GormCampaignRepository) HasDepositPullForDate(ctx context.Context, pullDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DepositRecord{}).
		Where("pull_date = ?", dateOnly(pullDate)).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "campaign", "has_deposit_pull", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "campaign", "has_deposit_pull", "success")
	return count > 0, nil
}

func (r *GormCampaignRepository) HasAdSpendPullForDate(ctx context.Context, platform domain.Platform, pullDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AdSpend{}).
		Where("platform = ? AND pull_date = ?", platform, dateOnly(pullDate)).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "campaign", "has_ad_spend_pull", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "campaign", "has_ad_spend_pull", "success")
	return count > 0, nil
}

func (r *GormCampaignRepository) ReplaceDepositsForDate(ctx context.Context, pullDate time.Time, rows []domain.DepositRecord) error {
	day := dateOnly(pullDate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pull_date = ?", day).Delete(&domain.DepositRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].PullDate = day
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "campaign", "replace_deposits", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "campaign", "replace_deposits", "success")
	return nil
}

func (r *GormCampaignRepository) ReplaceAdSpendForDate(ctx context.Context, platform domain.Platform, pullDate time.Time, rows []domain.AdSpend) error {
	day := dateOnly(pullDate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("platform = ? AND pull_date = ?", platform, day).Delete(&domain.AdSpend{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].Platform = platform
			rows[i].PullDate = day
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "campaign", "replace_ad_spend", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "campaign", "replace_ad_spend", "success")
	return nil
}

func (r *GormCampaignRepository) AggregateAdSpend(ctx context.Context, platform domain.Platform, from, to time.Time) ([]AdSpendSummaryRow, error) {
	var out []AdSpendSummaryRow
	err := r.db.WithContext(ctx).Model(&domain.AdSpend{}).
		Select("campaign_name, SUM(cost) AS cost, SUM(impressions) AS impressions, SUM(clicks) AS clicks, SUM(leads) AS leads").
		Where("platform = ? AND date >= ? AND date <= ?", platform, dateOnly(from), dateOnly(to)).
		Group("campaign_name").
		Order("campaign_name").
		Find(&out).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "campaign", "aggregate_ad_spend", "error")
		return nil, err
	}
	for i := range out {
		if out[i].Leads > 0 {
			out[i].CostPerLead = float64(out[i].Cost) / float64(out[i].Leads)
		}
	}
	observability.RecordRepositoryOperation(ctx, "campaign", "aggregate_ad_spend", "success")
	return out, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
