package server

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/domain"
)

func seedReport(e *env) {
	e.suppliers.report = []domain.SupplierReportRow{
		{
			SupplierID:      "sup-1",
			SupplierName:    "Acme Industrial",
			OrdersTotal:     40,
			OrdersVerified:  30,
			OrdersRejected:  4,
			OrdersFulfilled: 25,
			RejectionRate:   0.1,
			OnTimeRate:      0.9,
			VolumeCents:     12500000,
		},
	}
}

func TestSupplierReportIsCached(t *testing.T) {
	e := newEnv(t)
	seedReport(e)

	resp := e.do(t, fiber.MethodGet, "/api/v1/suppliers/report?from=2026-01-01&to=2026-01-31", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Acme Industrial")

	resp = e.do(t, fiber.MethodGet, "/api/v1/suppliers/report?from=2026-01-01&to=2026-01-31", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, e.suppliers.calls(), "second read must come from the cache")
}

func TestSupplierReportDistinctPeriodsMiss(t *testing.T) {
	e := newEnv(t)
	seedReport(e)

	e.do(t, fiber.MethodGet, "/api/v1/suppliers/report?from=2026-01-01", nil, "")
	e.do(t, fiber.MethodGet, "/api/v1/suppliers/report?from=2026-02-01", nil, "")

	assert.Equal(t, 2, e.suppliers.calls())
}

func TestSupplierReportRejectsBadDates(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, fiber.MethodGet, "/api/v1/suppliers/report?from=01.02.2026", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportCSVExport(t *testing.T) {
	e := newEnv(t)
	seedReport(e)

	resp := e.do(t, fiber.MethodGet, "/suppliers/report.csv", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "supplier-report.csv")

	body := bodyString(t, resp)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "supplier_name")
	assert.Contains(t, lines[1], "Acme Industrial")
	assert.Contains(t, lines[1], "12500000")
}

func TestReportCSVRateLimited(t *testing.T) {
	e := newEnv(t)
	seedReport(e)
	e.reports.limited = true

	resp := e.do(t, fiber.MethodGet, "/suppliers/report.csv", nil, "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestListSuppliers(t *testing.T) {
	e := newEnv(t)
	e.suppliers.suppliers = []domain.Supplier{
		{ID: "sup-1", Name: "Acme Industrial", ContactEmail: "sales@acme.test"},
	}

	resp := e.do(t, fiber.MethodGet, "/api/v1/suppliers", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Acme Industrial")
}
