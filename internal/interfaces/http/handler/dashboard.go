package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/invoicing/backend/internal/application/report"
)

// DashboardHandler handles dashboard and reporting endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats returns headline totals and counts. Overdue figures use the
// read-time classification, not just the stored status.
func (h *DashboardHandler) Stats(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// Revenue returns paid revenue grouped by month, zero-filled over the
// requested window
func (h *DashboardHandler) Revenue(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	months, err := queryInt(c, "months", 12)
	if err != nil {
		h.BadRequest(c, "Invalid months parameter")
		return
	}

	revenue, err := h.dashboardService.Revenue(c.Request.Context(), orgID, months)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, revenue)
}

// Outstanding returns unpaid invoices ordered by due date with days overdue
func (h *DashboardHandler) Outstanding(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		h.BadRequest(c, "Invalid limit parameter")
		return
	}

	outstanding, err := h.dashboardService.Outstanding(c.Request.Context(), orgID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, outstanding)
}

// Activity returns recently touched invoices
func (h *DashboardHandler) Activity(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		h.BadRequest(c, "Invalid limit parameter")
		return
	}

	activity, err := h.dashboardService.Activity(c.Request.Context(), orgID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, activity)
}

// ExportCSV streams invoices in the requested issue-date window as a CSV
// attachment. The window defaults to the last 12 months.
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(-1, 0, 0)
	to := now

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
	}
	if to.Before(from) {
		h.BadRequest(c, "Export window end precedes start")
		return
	}

	data, err := h.dashboardService.ExportCSV(c.Request.Context(), orgID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	filename := fmt.Sprintf("invoices_%s_%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// queryInt reads an integer query parameter with a default
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
