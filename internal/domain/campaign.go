package domain

import "time"

type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
	PlatformTikTok   Platform = "tiktok"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogle, PlatformFacebook, PlatformTikTok:
		return true
	}
	return false
}

// DepositRecord is one row of the deposit spreadsheet, snapshotted per pull date.
type DepositRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampaignID   string    `gorm:"size:64;not null" json:"campaign_id"`
	CampaignName string    `gorm:"size:255;not null" json:"campaign_name"`
	Status       string    `gorm:"size:64;not null" json:"status"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	FirstDeposit string    `gorm:"size:64;not null" json:"first_depo"`
	Month        string    `gorm:"size:32;not null" json:"month"`
	PullDate     time.Time `gorm:"index;not null" json:"pull_date"`
}

// AdSpend is one daily campaign row pulled from an ad-platform spreadsheet.
type AdSpend struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Platform     Platform  `gorm:"size:16;index;not null" json:"platform"`
	Date         time.Time `gorm:"index;not null" json:"date"`
	CampaignName string    `gorm:"size:255;not null" json:"campaign_name"`
	AdGroup      string    `gorm:"size:255" json:"ad_group"`
	AdName       string    `gorm:"size:255" json:"ad_name"`
	Cost         int64     `json:"cost"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	Leads        int64     `json:"leads"`
	PullDate     time.Time `gorm:"index;not null" json:"pull_date"`
}
