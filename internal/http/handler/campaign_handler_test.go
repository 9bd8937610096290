package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

type stubIngestAPI struct {
	result  *service.PullResult
	all     []service.PullResult
	err     error
	source  string
	pullAll bool
}

func (s *stubIngestAPI) Pull(_ context.Context, source string) (*service.PullResult, error) {
	s.source = source
	return s.result, s.err
}

func (s *stubIngestAPI) PullAll(context.Context) ([]service.PullResult, error) {
	s.pullAll = true
	return s.all, s.err
}

type stubReportAPI struct {
	summary  *service.AdSpendSummary
	err      error
	platform domain.Platform
	from, to time.Time
}

func (s *stubReportAPI) AdSpendSummary(_ context.Context, platform domain.Platform, from, to time.Time) (*service.AdSpendSummary, error) {
	s.platform, s.from, s.to = platform, from, to
	if s.err != nil {
		return nil, s.err
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return &service.AdSpendSummary{Platform: platform, From: from, To: to}, nil
}

func TestRefreshSingleSource(t *testing.T) {
	ingest := &stubIngestAPI{result: &service.PullResult{Source: "google_ads", Rows: 10}}
	h := NewCampaignHandler(ingest, &stubReportAPI{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/refresh?source=google_ads", nil)
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ingest.source != "google_ads" || ingest.pullAll {
		t.Fatalf("expected single-source pull, got %+v", ingest)
	}
}

func TestRefreshAllWhenSourceOmitted(t *testing.T) {
	ingest := &stubIngestAPI{all: []service.PullResult{{Source: "data_depo"}}}
	h := NewCampaignHandler(ingest, &stubReportAPI{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/refresh", nil)
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !ingest.pullAll {
		t.Fatal("expected PullAll when no source given")
	}
}

func TestRefreshUnknownSource(t *testing.T) {
	ingest := &stubIngestAPI{err: service.ErrUnknownSource}
	h := NewCampaignHandler(ingest, &stubReportAPI{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/refresh?source=bing_ads", nil)
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown source, got %d", rr.Code)
	}
}

func TestSummaryParsesWindow(t *testing.T) {
	reports := &stubReportAPI{summary: &service.AdSpendSummary{
		Platform:  domain.PlatformGoogle,
		Campaigns: []repository.AdSpendSummaryRow{{CampaignName: "brand", Cost: 100}},
	}}
	h := NewCampaignHandler(&stubIngestAPI{}, reports)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/summary?platform=google&from=2026-08-01&to=2026-08-31", nil)
	rr := httptest.NewRecorder()
	h.Summary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if reports.platform != domain.PlatformGoogle {
		t.Fatalf("unexpected platform %q", reports.platform)
	}
	if reports.from.Format("2006-01-02") != "2026-08-01" || reports.to.Format("2006-01-02") != "2026-08-31" {
		t.Fatalf("unexpected window %v..%v", reports.from, reports.to)
	}
}

func TestSummaryRejectsBadDates(t *testing.T) {
	h := NewCampaignHandler(&stubIngestAPI{}, &stubReportAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/summary?platform=google&from=yesterday", nil)
	rr := httptest.NewRecorder()
	h.Summary(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rr.Code)
	}
}

func TestSummaryInvalidRange(t *testing.T) {
	h := NewCampaignHandler(&stubIngestAPI{}, &stubReportAPI{err: service.ErrInvalidDateRange})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/summary?platform=google&from=2026-08-31&to=2026-08-01", nil)
	rr := httptest.NewRecorder()
	h.Summary(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rr.Code)
	}
}

func TestSummaryInvalidPlatform(t *testing.T) {
	h := NewCampaignHandler(&stubIngestAPI{}, &stubReportAPI{err: service.ErrInvalidPlatform})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/summary?platform=bing", nil)
	rr := httptest.NewRecorder()
	h.Summary(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown platform, got %d", rr.Code)
	}
}
