package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/docs"
	"procurement/internal/repositories"
	"procurement/internal/view"
)

// Cache fronts order detail reads.
type Cache interface {
	Set(ctx context.Context, key string, order domain.PurchaseOrder, ttl time.Duration) error
	Get(ctx context.Context, key string) (domain.PurchaseOrder, bool, error)
	Has(ctx context.Context, key string) bool
	Invalidate(ctx context.Context, key string)
}

// ReportCache fronts the supplier performance report and rate-limits the
// CSV export.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	IsRateLimited(ctx context.Context, key string, maxRequests int) bool
}

// Publisher pushes domain events onto the message bus.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.PurchaseOrder) (int64, error)
	Get(ctx context.Context, id string) (domain.PurchaseOrder, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.PurchaseOrder, int, error)
	Documents(ctx context.Context, orderID string) ([]domain.Document, error)
	Verify(ctx context.Context, id, actor, note string) error
	Reject(ctx context.Context, id, actor, reason string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Archive(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, f repositories.ProductFilter) ([]domain.Product, int, error)
	Categories(ctx context.Context) ([]string, error)
}

type SupplierRepository interface {
	List(ctx context.Context) ([]domain.Supplier, error)
	Report(ctx context.Context, period domain.ReportPeriod) ([]domain.SupplierReportRow, error)
}

type RequestRepository interface {
	ListOpen(ctx context.Context, limit, offset int) ([]domain.CustomItemRequest, int, error)
	Get(ctx context.Context, id string) (domain.CustomItemRequest, error)
	Triage(ctx context.Context, id, status, actor, note string) error
	Convert(ctx context.Context, id, actor string, product *domain.Product) error
}

type BankRepository interface {
	UpsertAccount(ctx context.Context, account *domain.BankAccount) error
	GetAccount(ctx context.Context, supplierID string) (domain.BankAccount, error)
	CreatePayout(ctx context.Context, payout *domain.Payout) error
	ListPayouts(ctx context.Context, supplierID string, limit, offset int) ([]domain.Payout, int, error)
}

// Handler wires the console's HTTP surface: server-rendered pages for
// operators plus the JSON API under /api/v1 that the pages script
// against.
type Handler struct {
	orders    OrderRepository
	products  ProductRepository
	suppliers SupplierRepository
	requests  RequestRepository
	bank      BankRepository

	loader  *docs.Loader
	cache   Cache
	reports ReportCache
	bus     Publisher
	log     *zap.Logger
}

func NewHandler(
	orders OrderRepository,
	products ProductRepository,
	suppliers SupplierRepository,
	requests RequestRepository,
	bank BankRepository,
	loader *docs.Loader,
	cache Cache,
	reports ReportCache,
	bus Publisher,
	log *zap.Logger,
) *Handler {
	return &Handler{
		orders:    orders,
		products:  products,
		suppliers: suppliers,
		requests:  requests,
		bank:      bank,
		loader:    loader,
		cache:     cache,
		reports:   reports,
		bus:       bus,
		log:       log,
	}
}

// MountRoutes attaches pages and the API to the fiber app. Mutating API
// routes sit behind the JWT middleware; reads are open to the console.
func (h *Handler) MountRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/", h.queuePage)
	app.Get("/catalog", h.catalogPage)
	app.Get("/suppliers", h.suppliersPage)
	app.Get("/suppliers/report.csv", h.reportCSV)
	app.Get("/requests", h.requestsPage)
	app.Get("/bank/:supplier_id", h.bankPage)

	v1 := app.Group("/api/v1")

	v1.Get("/verification", h.listQueue)
	v1.Get("/verification/:id", h.orderDetail)
	v1.Get("/verification/:id/documents", h.documentState)
	v1.Post("/verification/:id/documents/reload", h.reloadDocuments)
	v1.Post("/verification/:id/verify", auth, h.verify)
	v1.Post("/verification/:id/reject", auth, h.reject)

	v1.Get("/catalog", h.listProducts)
	v1.Get("/catalog/categories", h.listCategories)
	v1.Get("/catalog/:id", h.getProduct)
	v1.Post("/catalog", auth, h.createProduct)
	v1.Put("/catalog/:id", auth, h.updateProduct)
	v1.Delete("/catalog/:id", auth, h.archiveProduct)

	v1.Get("/suppliers", h.listSuppliers)
	v1.Get("/suppliers/report", h.supplierReport)

	v1.Get("/requests", h.listRequests)
	v1.Post("/requests/:id/approve", auth, h.approveRequest)
	v1.Post("/requests/:id/reject", auth, h.rejectRequest)
	v1.Post("/requests/:id/convert", auth, h.convertRequest)

	v1.Get("/bank/:supplier_id", h.getBankAccount)
	v1.Put("/bank/:supplier_id", auth, h.upsertBankAccount)
	v1.Get("/bank/:supplier_id/payouts", h.listPayouts)
	v1.Post("/bank/:supplier_id/payouts", auth, h.createPayout)
}

// fail maps domain and repository errors onto HTTP statuses and keeps
// the response shape uniform.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrOrderDecided),
		errors.Is(err, domain.ErrRequestTriaged),
		errors.Is(err, domain.ErrSKUTaken),
		errors.Is(err, repositories.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrSKUMissing),
		errors.Is(err, domain.ErrInvalidIBAN):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// wantsRedirect reports whether a mutation came from a browser form
// rather than the JSON API.
func wantsRedirect(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}

// redirectWithToast sends a browser form back to its page with a flash
// message for the next render.
func redirectWithToast(c *fiber.Ctx, target, level, message string) error {
	view.Flash(c, level, message)
	return c.Redirect(target, fiber.StatusSeeOther)
}

// actor returns the operator name the auth middleware extracted from the
// token, or "system" on unauthenticated routes.
func actor(c *fiber.Ctx) string {
	if v, ok := c.Locals(actorKey).(string); ok && v != "" {
		return v
	}
	return "system"
}

// pageArgs reads the shared page/per_page query params and derives the
// query offset. The offset must come from the requested page, before
// any total-based clamping, or every page would query offset 0.
func pageArgs(c *fiber.Ctx) (page, perPage, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("per_page", view.DefaultPerPage)
	if perPage < 1 {
		perPage = view.DefaultPerPage
	}
	if perPage > view.MaxPerPage {
		perPage = view.MaxPerPage
	}
	offset = (page - 1) * perPage
	return page, perPage, offset
}
