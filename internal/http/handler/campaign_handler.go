package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/http/response"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

type IngestAPI interface {
	Pull(ctx context.Context, source string) (*service.PullResult, error)
	PullAll(ctx context.Context) ([]service.PullResult, error)
}

type ReportAPI interface {
	AdSpendSummary(ctx context.Context, platform domain.Platform, from, to time.Time) (*service.AdSpendSummary, error)
}

type CampaignHandler struct {
	ingest  IngestAPI
	reports ReportAPI
}

func NewCampaignHandler(ingest IngestAPI, reports ReportAPI) *CampaignHandler {
	return &CampaignHandler{ingest: ingest, reports: reports}
}

// Refresh pulls one named source, or every source when none is given.
func (h *CampaignHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	observability.Audit(r, "campaigns.refresh", "source", source)

	if source == "" {
		results, err := h.ingest.PullAll(r.Context())
		if err != nil {
			response.Internal(w, r)
			return
		}
		response.JSON(w, r, http.StatusOK, map[string]any{"results": results})
		return
	}

	result, err := h.ingest.Pull(r.Context(), source)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSource) {
			response.Error(w, r, http.StatusBadRequest, response.CodeInvalidSource, "unknown source", map[string]string{"source": source})
			return
		}
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *CampaignHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	platform := domain.Platform(q.Get("platform"))

	// Default window: the trailing 30 days.
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -30)
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid from date", nil)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid to date", nil)
			return
		}
	}

	summary, err := h.reports.AdSpendSummary(r.Context(), platform, from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "from must not be after to", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidPlatform) {
			response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid platform", nil)
			return
		}
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, summary)
}
