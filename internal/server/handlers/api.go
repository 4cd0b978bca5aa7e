package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/contentcache"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/server/responses"
	"git.home.luguber.info/inful/docserve/internal/services"
	"git.home.luguber.info/inful/docserve/internal/version"
)

// APIHandlers contains the admin API HTTP handlers.
type APIHandlers struct {
	config       *config.Config
	daemon       DaemonAPIInterface
	pages        *services.PageService
	cache        *contentcache.Store
	recorder     metrics.Recorder
	errorAdapter *errors.HTTPErrorAdapter
}

// DaemonAPIInterface defines the daemon methods needed by API handlers.
type DaemonAPIInterface interface {
	GetStatus() string
	GetStartTime() time.Time
	GetServiceInfo() []services.ServiceInfo
}

// NewAPIHandlers creates a new API handlers instance. The cache may be nil
// when caching is disabled; the recorder may be nil to disable metrics.
func NewAPIHandlers(cfg *config.Config, daemon DaemonAPIInterface, pages *services.PageService, cache *contentcache.Store, recorder metrics.Recorder) *APIHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &APIHandlers{
		config:       cfg,
		daemon:       daemon,
		pages:        pages,
		cache:        cache,
		recorder:     recorder,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealth handles the health check endpoint.
func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.daemon.GetStartTime()).Seconds(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleStatus handles the daemon status endpoint.
func (h *APIHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	status := &responses.StatusResponse{
		Status:    h.daemon.GetStatus(),
		Uptime:    time.Since(h.daemon.GetStartTime()).Seconds(),
		StartTime: h.daemon.GetStartTime(),
		Services:  h.serviceSummaries(),
		Config:    h.sanitizeConfig(h.config),
		Timestamp: time.Now().UTC(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, status); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to encode daemon status").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleVersions handles the published version list endpoint.
func (h *APIHandlers) HandleVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	all := h.pages.Versions()
	summaries := make([]responses.VersionSummary, len(all))
	for i, v := range all {
		summaries[i] = responses.VersionSummary{
			Name:    v.Name,
			Std:     v.Std,
			Display: v.Display,
		}
	}

	resp := &responses.VersionsResponse{
		Status:    "ok",
		Default:   h.pages.DefaultVersion().Name,
		Versions:  summaries,
		Timestamp: time.Now().UTC(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write versions response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleCacheStats handles the cache occupancy endpoint.
func (h *APIHandlers) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := &responses.CacheStatsResponse{
		Status:    "disabled",
		Timestamp: time.Now().UTC(),
	}
	if h.cache != nil {
		stats, err := h.cache.Stats(r.Context())
		if err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		resp.Status = "ok"
		resp.Entries = stats.Entries
		resp.Bytes = stats.Bytes
		resp.ByVersion = stats.ByVersion
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write cache stats response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleCacheInvalidate handles explicit cache invalidation. The request
// body selects the scope: a version and path drop one entry, a version
// alone drops that version, an empty version purges the whole cache.
func (h *APIHandlers) HandleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "POST").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if h.cache == nil {
		err := errors.CacheError("content cache is not enabled").Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	var req responses.InvalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		invalidErr := errors.ValidationError("invalid invalidation request body").
			WithContext("parse_error", err.Error()).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, invalidErr)
		return
	}

	scope := "all"
	var err error
	switch {
	case req.Version == "" && req.Path != "":
		invalidErr := errors.ValidationError("path invalidation requires a version").Build()
		h.errorAdapter.WriteErrorResponse(w, r, invalidErr)
		return
	case req.Version == "":
		err = h.cache.Purge(r.Context())
	case req.Path == "":
		scope = "version"
		err = h.cache.InvalidateVersion(r.Context(), req.Version)
	default:
		scope = "page"
		err = h.cache.Invalidate(r.Context(), req.Version, req.Path)
	}
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	h.recorder.IncCacheOp(metrics.CacheInvalidate)

	resp := &responses.InvalidateResponse{
		Status:    "ok",
		Scope:     scope,
		Version:   req.Version,
		Path:      req.Path,
		Timestamp: time.Now().UTC(),
	}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write invalidation response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// serviceSummaries maps the managed services onto their response form,
// ordered by name for stable output.
func (h *APIHandlers) serviceSummaries() []responses.ServiceSummary {
	infos := h.daemon.GetServiceInfo()
	summaries := make([]responses.ServiceSummary, len(infos))
	for i, info := range infos {
		summaries[i] = responses.ServiceSummary{
			Name:         info.Name,
			Status:       string(info.Status),
			Healthy:      info.Health.Status == "healthy",
			Message:      info.Health.Message,
			Dependencies: info.Dependencies,
			StartedAt:    info.StartedAt,
			LastError:    info.LastError,
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// sanitizeConfig creates a sanitized view of the configuration without secrets.
func (h *APIHandlers) sanitizeConfig(cfg *config.Config) responses.ConfigSummary {
	summary := responses.ConfigSummary{
		Server: responses.ServerSummary{
			DocsPort:  cfg.Server.HTTP.DocsPort,
			AdminPort: cfg.Server.HTTP.AdminPort,
			BasePath:  cfg.Server.BasePath,
			Title:     cfg.Server.Title,
		},
		Source: responses.SourceSummary{
			// Note: source URLs are intentionally omitted, they can carry credentials
			Kind:    string(cfg.Source.Kind),
			TocPath: cfg.Source.TocPath,
		},
	}

	if cfg.Cache != nil {
		summary.Cache = responses.CacheSummary{
			Enabled:         cfg.Cache.Enabled,
			TTL:             cfg.Cache.TTL,
			PrewarmInterval: cfg.Cache.PrewarmInterval,
		}
	}
	if cfg.Events != nil {
		summary.Events = responses.EventsSummary{
			Enabled: cfg.Events.Enabled,
			Subject: cfg.Events.Subject,
		}
	}

	return summary
}
