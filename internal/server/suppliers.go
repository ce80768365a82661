package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/view"
)

const (
	reportTTL        = 5 * time.Minute
	exportsPerMinute = 5
)

func (h *Handler) listSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.suppliers.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"suppliers": suppliers,
	})
}

// reportPeriod reads the from/to query params (YYYY-MM-DD). The `to`
// bound is exclusive, shifted one day so the named date is included.
func reportPeriod(c *fiber.Ctx) (domain.ReportPeriod, error) {
	period := domain.ReportPeriod{}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return period, fmt.Errorf("invalid from date: %w", err)
		}
		period.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return period, fmt.Errorf("invalid to date: %w", err)
		}
		period.To = t.AddDate(0, 0, 1)
	}

	return period, nil
}

type reportCacheKey domain.ReportPeriod

func (p reportCacheKey) String() string {
	return fmt.Sprintf("report:%s:%s",
		p.From.Format("2006-01-02"), p.To.Format("2006-01-02"))
}

// report returns the performance rows for the period, going to redis
// first and the database second.
func (h *Handler) report(c *fiber.Ctx, period domain.ReportPeriod) ([]domain.SupplierReportRow, error) {
	key := reportCacheKey(period).String()

	if cached, err := h.reports.Get(c.Context(), key); err == nil {
		var rows []domain.SupplierReportRow
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := h.suppliers.Report(c.Context(), period)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rows); err == nil {
		if err := h.reports.Set(c.Context(), key, raw, reportTTL); err != nil {
			h.log.Warn("failed to cache report", zap.Error(err))
		}
	}

	return rows, nil
}

func (h *Handler) supplierReport(c *fiber.Ctx) error {
	period, err := reportPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rows, err := h.report(c, period)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"report": rows,
		"period": period,
	})
}

// reportCSV streams the report as a CSV download. Exports hit the
// aggregation directly when cold, so they are rate-limited per client.
func (h *Handler) reportCSV(c *fiber.Ctx) error {
	if h.reports.IsRateLimited(c.Context(), "export:"+c.IP(), exportsPerMinute) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many export requests",
		})
	}

	period, err := reportPeriod(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.report(c, period)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="supplier-report.csv"`)

	w := csv.NewWriter(c)
	if err := w.Write([]string{
		"supplier_id", "supplier_name", "orders_total", "orders_verified",
		"orders_rejected", "orders_fulfilled", "rejection_rate", "on_time_rate",
		"volume_cents",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.SupplierID,
			row.SupplierName,
			strconv.Itoa(row.OrdersTotal),
			strconv.Itoa(row.OrdersVerified),
			strconv.Itoa(row.OrdersRejected),
			strconv.Itoa(row.OrdersFulfilled),
			strconv.FormatFloat(row.RejectionRate, 'f', 4, 64),
			strconv.FormatFloat(row.OnTimeRate, 'f', 4, 64),
			strconv.FormatInt(row.VolumeCents, 10),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// suppliersPage renders the performance report screen.
func (h *Handler) suppliersPage(c *fiber.Ctx) error {
	period, err := reportPeriod(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.report(c, period)
	if err != nil {
		return err
	}

	return c.Render("suppliers", fiber.Map{
		"report": rows,
		"from":   c.Query("from"),
		"to":     c.Query("to"),
		"toast":  view.PopToast(c),
	})
}
