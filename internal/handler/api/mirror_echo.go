package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/repository"
	"EngineMirror/internal/domain/service"
	"EngineMirror/internal/service/metrics"
	"EngineMirror/internal/service/ratelimit"
	"EngineMirror/pkg/cache"
	xhttp "EngineMirror/pkg/http"
	xlogger "EngineMirror/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	formatJSON    = "json"
	formatMsgpack = "msgpack"

	mimeMsgpack = "application/msgpack"
)

// HandlerConfig tunes the read API.
type HandlerConfig struct {
	SnapshotTTL   time.Duration
	RefreshPerMin int
}

// MirrorHandler serves the published snapshot read-only, plus manual
// refresh. It never blocks on the backend.
type MirrorHandler struct {
	logger  *xlogger.Logger
	snaps   service.SnapshotReader
	ctl     service.Controller
	cache   repository.BytesCache
	rl      *ratelimit.Limiter
	cfg     HandlerConfig
	session string
}

func NewMirrorHandler(
	logger *xlogger.Logger,
	snaps service.SnapshotReader,
	ctl service.Controller,
	c repository.BytesCache,
	cfg HandlerConfig,
) *MirrorHandler {
	metrics.Register()
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &MirrorHandler{
		logger:  logger,
		snaps:   snaps,
		ctl:     ctl,
		cache:   c,
		rl:      ratelimit.New(),
		cfg:     cfg,
		session: uuid.NewString(),
	}
}

func (h *MirrorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/signals", h.Signals)
	g.GET("/news", h.News)
	g.GET("/trades/open", h.OpenTrades)
	g.GET("/trades/closed", h.ClosedTrades)
	g.GET("/stats", h.Stats)
	g.GET("/logs", h.Logs)
	g.GET("/sources", h.Sources)
	g.POST("/sources/:id/refresh", h.Refresh)
}

// Snapshot returns the whole snapshot as JSON, or msgpack when asked for.
// The ETag changes with every published version and across restarts.
func (h *MirrorHandler) Snapshot(c echo.Context) error {
	snap := h.snaps.Snapshot()
	format := negotiate(c)
	etag := h.etag(snap.Version, format)

	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set("ETag", etag)
	c.Response().Header().Set(echo.HeaderVary, echo.HeaderAccept)
	if matchesETag(c.Request().Header.Get("If-None-Match"), etag) {
		return c.NoContent(http.StatusNotModified)
	}

	ctx := c.Request().Context()
	key := cache.GenerateKeyWithParams("snapshot", h.session, snap.Version, format)
	if b, ok, err := h.cache.Get(ctx, key); err != nil {
		metrics.SnapshotCache.WithLabelValues("error").Inc()
		h.logger.Warn("snapshot cache get failed", xlogger.Error(err))
	} else if ok {
		metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return xhttp.BlobResponse(c, contentType(format), b)
	} else {
		metrics.SnapshotCache.WithLabelValues("miss").Inc()
	}

	b, err := encodeSnapshot(snap, format)
	if err != nil {
		h.logger.Error("snapshot encode failed", xlogger.String("format", format), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if err := h.cache.Set(ctx, key, b, h.cfg.SnapshotTTL); err != nil {
		h.logger.Warn("snapshot cache set failed", xlogger.Error(err))
	}
	return xhttp.BlobResponse(c, contentType(format), b)
}

func (h *MirrorHandler) Signals(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.snaps.Snapshot().Signals)
}

func (h *MirrorHandler) News(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.snaps.Snapshot().News)
}

func (h *MirrorHandler) OpenTrades(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.snaps.Snapshot().OpenTrades)
}

func (h *MirrorHandler) ClosedTrades(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.snaps.Snapshot().ClosedTrades)
}

func (h *MirrorHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.snaps.Snapshot().Stats)
}

// Logs pages forward through the retained terminal lines.
func (h *MirrorHandler) Logs(c echo.Context) error {
	req := &models.LogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.snaps.Snapshot()
	lines := snap.Logs
	if c.QueryParam("after") != "" {
		lines = snap.LogsSince(req.After)
	}

	floor, filter := models.ParseSeverity(req.Severity)
	resp := models.LogsResponse{
		Lines:   make([]models.LogLine, 0, min(len(lines), req.Limit)),
		Next:    req.After,
		Highest: snap.HighestSequence(),
	}
	for _, l := range lines {
		if len(resp.Lines) == req.Limit {
			resp.More = true
			break
		}
		resp.Next = l.Sequence
		if filter && !l.Severity.AtLeast(floor) {
			continue
		}
		resp.Lines = append(resp.Lines, l)
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *MirrorHandler) Sources(c echo.Context) error {
	infos, err := h.ctl.Statuses(c.Request().Context())
	if err != nil {
		h.logger.Error("statuses failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, infos)
}

// Refresh asks the scheduler to re-poll one source now.
func (h *MirrorHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id, ok := repository.ParseSourceID(req.ID)
	if !ok {
		metrics.RefreshRequests.WithLabelValues("unknown", "not_found").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("source %q not found", req.ID))
	}

	capacity, rate := ratelimit.PerMinute(h.cfg.RefreshPerMin)
	if !h.rl.Allow("refresh:"+string(id), capacity, rate) {
		metrics.RefreshRequests.WithLabelValues(string(id), "rate_limited").Inc()
		h.logger.Warn("refresh rate limited", xlogger.String("source", string(id)), xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate limit exceeded"))
	}

	err := h.ctl.Refresh(c.Request().Context(), id)
	switch {
	case err == nil:
		metrics.RefreshRequests.WithLabelValues(string(id), "accepted").Inc()
		return xhttp.AcceptedResponse(c, map[string]string{"source": string(id)})
	case errors.Is(err, service.ErrUnknownSource):
		metrics.RefreshRequests.WithLabelValues(string(id), "not_found").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("source %q not configured", id))
	case errors.Is(err, service.ErrSourceDisabled):
		metrics.RefreshRequests.WithLabelValues(string(id), "disabled").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DISABLED", "id", err.Error(), http.StatusConflict))
	case errors.Is(err, service.ErrNotRunning):
		metrics.RefreshRequests.WithLabelValues(string(id), "unavailable").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNAVAILABLE", "", err.Error(), http.StatusServiceUnavailable))
	default:
		h.logger.Error("refresh failed", xlogger.String("source", string(id)), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

// Health is 200 as long as the mirror serves; the engine's own state is in
// the body.
func (h *MirrorHandler) Health(c echo.Context) error {
	snap := h.snaps.Snapshot()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"api":        snap.API,
		"version":    snap.Version,
		"updated_at": snap.UpdatedAt,
	})
}

func (h *MirrorHandler) etag(version uint64, format string) string {
	return `"` + h.session[:8] + "-" + strconv.FormatUint(version, 10) + "-" + format + `"`
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

func negotiate(c echo.Context) string {
	if f := c.QueryParam("format"); f == formatMsgpack || f == formatJSON {
		return f
	}
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), mimeMsgpack) {
		return formatMsgpack
	}
	return formatJSON
}

func contentType(format string) string {
	if format == formatMsgpack {
		return mimeMsgpack
	}
	return echo.MIMEApplicationJSON
}

func encodeSnapshot(snap *models.Snapshot, format string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotEncode.WithLabelValues(format).Observe(time.Since(start).Seconds())
	}()

	env := xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: snap}
	var buf bytes.Buffer
	if format == formatMsgpack {
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.UseCompactInts(true)
		if err := enc.Encode(env); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := json.NewEncoder(&buf).Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
