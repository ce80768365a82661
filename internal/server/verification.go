package server

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/docs"
	"procurement/internal/view"
)

// queueRow is one verification queue entry as the console renders it:
// the order itself, its status badge, and the current document hydration
// state.
type queueRow struct {
	Order     domain.PurchaseOrder `json:"order"`
	Badge     view.Badge           `json:"badge"`
	Documents docs.Row             `json:"documents"`
}

// listQueue returns one page of pending orders immediately and kicks off
// background document hydration for the rows. Clients poll the document
// endpoints for rows still loading.
func (h *Handler) listQueue(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	orders, total, err := h.orders.ListPending(c.Context(), perPage, offset)
	if err != nil {
		return h.fail(c, err)
	}
	p := view.Paginate(total, page, perPage)

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	h.loader.Hydrate(ids)

	states := h.loader.Snapshot(ids)
	rows := make([]queueRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, queueRow{
			Order:     o,
			Badge:     view.StatusBadge(o.Status),
			Documents: states[o.ID],
		})
	}

	return c.JSON(fiber.Map{
		"rows":       rows,
		"pagination": p,
	})
}

// orderDetail returns a single order with its documents and audit
// trail. The order is cached for a short while since operators reload
// detail views frequently; documents are read fresh.
func (h *Handler) orderDetail(c *fiber.Ctx) error {
	id := c.Params("id")

	var order domain.PurchaseOrder
	if h.cache.Has(c.Context(), id) {
		order, _, _ = h.cache.Get(c.Context(), id)
	} else {
		var err error
		order, err = h.orders.Get(c.Context(), id)
		if err != nil {
			return h.fail(c, err)
		}
		_ = h.cache.Set(c.Context(), id, order, time.Minute)
	}

	documents, err := h.orders.Documents(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"order":     order,
		"documents": documents,
		"badge":     view.StatusBadge(order.Status),
	})
}

// documentState reports one row's hydration state without touching the
// database. 202 means the row is still loading.
func (h *Handler) documentState(c *fiber.Ctx) error {
	id := c.Params("id")

	row, ok := h.loader.Row(id)
	if !ok {
		h.loader.Hydrate([]string{id})
		row = docs.Row{OrderID: id, State: docs.StateLoading}
	}

	if row.State == docs.StateLoading {
		return c.Status(fiber.StatusAccepted).JSON(row)
	}
	return c.JSON(row)
}

// reloadDocuments retries a failed (or stale) hydration for one row.
// The queue page posts here as a plain form, so browsers bounce back to
// the queue with a toast.
func (h *Handler) reloadDocuments(c *fiber.Ctx) error {
	id := c.Params("id")
	h.loader.Reload(id)

	if wantsRedirect(c) {
		return redirectWithToast(c, "/", view.ToastInfo, "Reloading documents")
	}
	row, _ := h.loader.Row(id)
	return c.Status(fiber.StatusAccepted).JSON(row)
}

type decisionRequest struct {
	Note   string `json:"note" form:"note"`
	Reason string `json:"reason" form:"reason"`
}

// verify marks an order verified and announces it on the bus.
func (h *Handler) verify(c *fiber.Ctx) error {
	id := c.Params("id")

	req := decisionRequest{}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return h.fail(c, err)
	}

	who := actor(c)
	if err := h.orders.Verify(c.Context(), id, who, req.Note); err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(c.Context(), id)
	h.loader.Forget(id)
	h.announce("po.verified", id, who)

	h.log.Info("purchase order verified",
		zap.String("order_id", id),
		zap.String("actor", who))

	if wantsRedirect(c) {
		return redirectWithToast(c, "/", view.ToastSuccess, "Purchase order verified")
	}
	return c.JSON(fiber.Map{
		"status": domain.StatusVerified,
		"badge":  view.StatusBadge(domain.StatusVerified),
	})
}

// reject marks an order rejected. The reason is mandatory.
func (h *Handler) reject(c *fiber.Ctx) error {
	id := c.Params("id")

	req := decisionRequest{}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return h.fail(c, err)
	}
	if req.Reason == "" {
		return h.fail(c, domain.ErrReasonRequired)
	}

	who := actor(c)
	if err := h.orders.Reject(c.Context(), id, who, req.Reason); err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(c.Context(), id)
	h.loader.Forget(id)
	h.announce("po.rejected", id, who)

	h.log.Info("purchase order rejected",
		zap.String("order_id", id),
		zap.String("actor", who))

	if wantsRedirect(c) {
		return redirectWithToast(c, "/", view.ToastSuccess, "Purchase order rejected")
	}
	return c.JSON(fiber.Map{
		"status": domain.StatusRejected,
		"badge":  view.StatusBadge(domain.StatusRejected),
	})
}

// announce publishes a decision event. Event delivery is best effort;
// the decision itself already committed.
func (h *Handler) announce(subject, orderID, who string) {
	payload, err := json.Marshal(fiber.Map{
		"order_id": orderID,
		"actor":    who,
		"at":       time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := h.bus.Publish(subject, payload); err != nil {
		h.log.Warn("failed to publish event",
			zap.String("subject", subject),
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// queuePage renders the verification queue for the browser.
func (h *Handler) queuePage(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	orders, total, err := h.orders.ListPending(c.Context(), perPage, offset)
	if err != nil {
		return err
	}
	p := view.Paginate(total, page, perPage)

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	h.loader.Hydrate(ids)
	states := h.loader.Snapshot(ids)

	type pageRow struct {
		queueRow
		Verify view.Dialog
		Reject view.Dialog
	}
	rows := make([]pageRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, pageRow{
			queueRow: queueRow{
				Order:     o,
				Badge:     view.StatusBadge(o.Status),
				Documents: states[o.ID],
			},
			Verify: view.ConfirmVerify(o.Number),
			Reject: view.ConfirmReject(o.Number),
		})
	}

	return c.Render("queue", fiber.Map{
		"rows":       rows,
		"pagination": p,
		"toast":      view.PopToast(c),
	})
}
