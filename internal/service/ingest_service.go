package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
)

const (
	SourceDataDepo    = "data_depo"
	SourceGoogleAds   = "google_ads"
	SourceFacebookAds = "facebook_ads"
	SourceTikTokAds   = "tiktok_ads"
)

var ErrUnknownSource = errors.New("unknown ingest source")

// SheetReader is the slice of the spreadsheet client the ingester needs.
type SheetReader interface {
	Values(ctx context.Context, spreadsheetID, rangeName string) ([][]string, error)
}

type IngestConfig struct {
	SpreadsheetID    string
	DepositRange     string
	GoogleAdsRange   string
	FacebookAdsRange string
	TikTokAdsRange   string
}

// IngestService pulls spreadsheet ranges into the local store, at most once
// per source per day.
type IngestService struct {
	reader   SheetReader
	campaign repository.CampaignRepository
	cfg      IngestConfig
	now      func() time.Time
}

func NewIngestService(reader SheetReader, campaign repository.CampaignRepository, cfg IngestConfig) *IngestService {
	return &IngestService{reader: reader, campaign: campaign, cfg: cfg, now: time.Now}
}

type PullResult struct {
	Source  string `json:"source"`
	Skipped bool   `json:"skipped"`
	Rows    int    `json:"rows"`
}

func (s *IngestService) Pull(ctx context.Context, source string) (*PullResult, error) {
	var (
		res *PullResult
		err error
	)
	switch source {
	case SourceDataDepo:
		res, err = s.pullDeposits(ctx)
	case SourceGoogleAds:
		res, err = s.pullAdSpend(ctx, source, domain.PlatformGoogle, s.cfg.GoogleAdsRange)
	case SourceFacebookAds:
		res, err = s.pullAdSpend(ctx, source, domain.PlatformFacebook, s.cfg.FacebookAdsRange)
	case SourceTikTokAds:
		res, err = s.pullAdSpend(ctx, source, domain.PlatformTikTok, s.cfg.TikTokAdsRange)
	default:
		return nil, ErrUnknownSource
	}
	if err != nil {
		observability.RecordIngestPull(source, "error")
		return nil, err
	}
	if res.Skipped {
		observability.RecordIngestPull(source, "skipped")
	} else {
		observability.RecordIngestPull(source, "success")
	}
	return res, nil
}

// PullAll refreshes every source concurrently; the first failure cancels the
// rest.
func (s *IngestService) PullAll(ctx context.Context) ([]PullResult, error) {
	sources := []string{SourceDataDepo, SourceGoogleAds, SourceFacebookAds, SourceTikTokAds}
	results := make([]PullResult, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			res, err := s.Pull(ctx, source)
			if err != nil {
				return fmt.Errorf("pull %s: %w", source, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *IngestService) pullDeposits(ctx context.Context) (*PullResult, error) {
	today := s.now()
	exists, err := s.campaign.HasDepositPullForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if exists {
		return &PullResult{Source: SourceDataDepo, Skipped: true}, nil
	}
	grid, err := s.reader.Values(ctx, s.cfg.SpreadsheetID, s.cfg.DepositRange)
	if err != nil {
		return nil, err
	}
	records := gridRecords(grid)
	rows := make([]domain.DepositRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, domain.DepositRecord{
			CampaignID:   rec["campaign_id"],
			CampaignName: rec["campaign_name"],
			Status:       rec["status"],
			Email:        rec["email"],
			FirstDeposit: rec["first_depo"],
			Month:        rec["bulan"],
		})
	}
	if err := s.campaign.ReplaceDepositsForDate(ctx, today, rows); err != nil {
		return nil, err
	}
	return &PullResult{Source: SourceDataDepo, Rows: len(rows)}, nil
}

func (s *IngestService) pullAdSpend(ctx context.Context, source string, platform domain.Platform, rangeName string) (*PullResult, error) {
	today := s.now()
	exists, err := s.campaign.HasAdSpendPullForDate(ctx, platform, today)
	if err != nil {
		return nil, err
	}
	if exists {
		return &PullResult{Source: source, Skipped: true}, nil
	}
	grid, err := s.reader.Values(ctx, s.cfg.SpreadsheetID, rangeName)
	if err != nil {
		return nil, err
	}
	records := gridRecords(grid)
	rows := make([]domain.AdSpend, 0, len(records))
	for _, rec := range records {
		date, err := parseSheetDate(rec["date"])
		if err != nil {
			continue // rows without a parseable date carry no daily metric
		}
		rows = append(rows, domain.AdSpend{
			Date:         date,
			CampaignName: rec["campaign_name"],
			AdGroup:      rec["ad_group"],
			AdName:       rec["ad_name"],
			Cost:         parseSheetInt(rec["cost"]),
			Impressions:  parseSheetInt(rec["impressions"]),
			Clicks:       parseSheetInt(rec["clicks"]),
			Leads:        parseSheetInt(rec["leads"]),
		})
	}
	if err := s.campaign.ReplaceAdSpendForDate(ctx, platform, today, rows); err != nil {
		return nil, err
	}
	return &PullResult{Source: source, Rows: len(rows)}, nil
}

// gridRecords zips each data row with the header row. Short rows leave the
// missing columns empty; extra cells are dropped.
func gridRecords(grid [][]string) []map[string]string {
	if len(grid) < 2 {
		return nil
	}
	headers := grid[0]
	out := make([]map[string]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			key := strings.ToLower(strings.TrimSpace(h))
			if i < len(row) {
				rec[key] = strings.TrimSpace(row[i])
			} else {
				rec[key] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func parseSheetDate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01/02/2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}

func parseSheetInt(v string) int64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int64(f)
	}
	return 0
}
