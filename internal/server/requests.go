package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/view"
)

type requestRow struct {
	Request domain.CustomItemRequest `json:"request"`
	Badge   view.Badge               `json:"badge"`
}

// listRequests pages through open custom item requests, oldest first.
func (h *Handler) listRequests(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	requests, total, err := h.requests.ListOpen(c.Context(), perPage, offset)
	if err != nil {
		return h.fail(c, err)
	}

	rows := make([]requestRow, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, requestRow{
			Request: r,
			Badge:   view.RequestBadge(r.Status),
		})
	}

	return c.JSON(fiber.Map{
		"rows":       rows,
		"pagination": view.Paginate(total, page, perPage),
	})
}

type triageRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func (h *Handler) approveRequest(c *fiber.Ctx) error {
	id := c.Params("id")

	req := triageRequest{}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return h.fail(c, err)
	}

	who := actor(c)
	if err := h.requests.Triage(c.Context(), id, domain.RequestApproved, who, req.Note); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("custom item request approved",
		zap.String("request_id", id),
		zap.String("actor", who))

	return c.JSON(fiber.Map{
		"status": domain.RequestApproved,
		"badge":  view.RequestBadge(domain.RequestApproved),
	})
}

func (h *Handler) rejectRequest(c *fiber.Ctx) error {
	id := c.Params("id")

	req := triageRequest{}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return h.fail(c, err)
	}
	if req.Reason == "" {
		return h.fail(c, domain.ErrReasonRequired)
	}

	who := actor(c)
	if err := h.requests.Triage(c.Context(), id, domain.RequestRejected, who, req.Reason); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("custom item request rejected",
		zap.String("request_id", id),
		zap.String("actor", who))

	return c.JSON(fiber.Map{
		"status": domain.RequestRejected,
		"badge":  view.RequestBadge(domain.RequestRejected),
	})
}

// convertRequest closes the request and creates the catalog product it
// asked for, in one transaction.
func (h *Handler) convertRequest(c *fiber.Ctx) error {
	id := c.Params("id")

	product := &domain.Product{}
	if err := c.BodyParser(product); err != nil {
		return h.fail(c, err)
	}

	who := actor(c)
	if err := h.requests.Convert(c.Context(), id, who, product); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("custom item request converted",
		zap.String("request_id", id),
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU),
		zap.String("actor", who))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  domain.RequestConverted,
		"badge":   view.RequestBadge(domain.RequestConverted),
		"product": product,
	})
}

// requestsPage renders the triage screen.
func (h *Handler) requestsPage(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	requests, total, err := h.requests.ListOpen(c.Context(), perPage, offset)
	if err != nil {
		return err
	}

	rows := make([]requestRow, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, requestRow{
			Request: r,
			Badge:   view.RequestBadge(r.Status),
		})
	}

	return c.Render("requests", fiber.Map{
		"rows":       rows,
		"pagination": view.Paginate(total, page, perPage),
		"toast":      view.PopToast(c),
	})
}
