package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/httpresp"
	"github.com/BruksfildServices01/slot-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store audit.Store
	loc   *time.Location
	log   *zap.Logger
}

// NewAuditLogsHandler reads the from/to dates as calendar days in loc.
func NewAuditLogsHandler(store audit.Store, loc *time.Location, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, loc: loc, log: log}
}

// GET /audit-logs?action&entity&from&to&page&limit
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, limit = ucBooking.NormalizePage(page, limit)

	q := audit.Query{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Offset: ucBooking.Offset(page, limit),
		Limit:  limit,
	}

	if from, err := time.ParseInLocation(domain.DateLayout, c.Query("from"), h.loc); err == nil {
		q.From = &from
	}
	if to, err := time.ParseInLocation(domain.DateLayout, c.Query("to"), h.loc); err == nil {
		end := to.AddDate(0, 0, 1)
		q.To = &end
	}

	logs, total, err := h.store.ListAuditLogs(c.Request.Context(), q)
	if err != nil {
		h.log.Error("audit list failed", zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Failed to list audit logs.")
		return
	}

	httpresp.Page[models.AuditLog](c, logs, page, limit, total)
}
