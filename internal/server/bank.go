package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/repositories"
	"procurement/internal/view"
)

// maskedAccount is what leaves the service in place of a bank account.
// The full IBAN never appears in a response.
type maskedAccount struct {
	domain.BankAccount
	IBAN string `json:"iban"`
}

func mask(account domain.BankAccount) maskedAccount {
	return maskedAccount{
		BankAccount: account,
		IBAN:        account.MaskedIBAN(),
	}
}

func (h *Handler) getBankAccount(c *fiber.Ctx) error {
	account, err := h.bank.GetAccount(c.Context(), c.Params("supplier_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"account": mask(account),
	})
}

// upsertBankAccount writes a supplier's payout details. The IBAN is
// checksum-validated before anything touches the database.
func (h *Handler) upsertBankAccount(c *fiber.Ctx) error {
	account := &domain.BankAccount{}
	if err := c.BodyParser(account); err != nil {
		return h.fail(c, err)
	}
	// BodyParser skips the json:"-" field.
	var raw struct {
		IBAN string `json:"iban"`
	}
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return h.fail(c, err)
	}
	account.IBAN = raw.IBAN
	account.SupplierID = c.Params("supplier_id")

	if err := account.ValidateIBAN(); err != nil {
		return h.fail(c, err)
	}

	if err := h.bank.UpsertAccount(c.Context(), account); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("bank account updated",
		zap.String("supplier_id", account.SupplierID),
		zap.String("actor", actor(c)))

	return c.JSON(fiber.Map{
		"account": mask(*account),
	})
}

type payoutRow struct {
	Payout domain.Payout `json:"payout"`
	Badge  view.Badge    `json:"badge"`
}

func (h *Handler) listPayouts(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	payouts, total, err := h.bank.ListPayouts(c.Context(), c.Params("supplier_id"), perPage, offset)
	if err != nil {
		return h.fail(c, err)
	}

	rows := make([]payoutRow, 0, len(payouts))
	for _, payout := range payouts {
		rows = append(rows, payoutRow{
			Payout: payout,
			Badge:  view.PayoutBadge(payout.Status),
		})
	}

	return c.JSON(fiber.Map{
		"rows":       rows,
		"pagination": view.Paginate(total, page, perPage),
	})
}

// createPayout records a payout request against the supplier's account
// and announces it on the bus for the payment processor.
func (h *Handler) createPayout(c *fiber.Ctx) error {
	payout := &domain.Payout{}
	if err := c.BodyParser(payout); err != nil {
		return h.fail(c, err)
	}
	payout.SupplierID = c.Params("supplier_id")

	// A payout needs configured bank details to go anywhere.
	account, err := h.bank.GetAccount(c.Context(), payout.SupplierID)
	if err != nil {
		return h.fail(c, err)
	}
	if payout.Currency == "" {
		payout.Currency = account.Currency
	}

	if err := h.bank.CreatePayout(c.Context(), payout); err != nil {
		return h.fail(c, err)
	}

	if raw, err := json.Marshal(fiber.Map{
		"payout_id":   payout.ID,
		"supplier_id": payout.SupplierID,
		"amount":      payout.AmountCents,
		"currency":    payout.Currency,
		"at":          time.Now().UTC(),
	}); err == nil {
		if err := h.bus.Publish("payout.requested", raw); err != nil {
			h.log.Warn("failed to publish payout event",
				zap.String("payout_id", payout.ID),
				zap.Error(err))
		}
	}

	h.log.Info("payout requested",
		zap.String("payout_id", payout.ID),
		zap.String("supplier_id", payout.SupplierID),
		zap.Int64("amount_cents", payout.AmountCents),
		zap.String("actor", actor(c)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payout": payout,
		"badge":  view.PayoutBadge(payout.Status),
	})
}

// bankPage renders the bank configuration screen for one supplier.
func (h *Handler) bankPage(c *fiber.Ctx) error {
	supplierID := c.Params("supplier_id")

	var account *maskedAccount
	switch acc, err := h.bank.GetAccount(c.Context(), supplierID); {
	case err == nil:
		m := mask(acc)
		account = &m
	case errors.Is(err, repositories.ErrNotFound):
		// No account yet: the page shows an empty form.
	default:
		return err
	}

	page, perPage, offset := pageArgs(c)
	payouts, total, err := h.bank.ListPayouts(c.Context(), supplierID, perPage, offset)
	if err != nil {
		return err
	}

	rows := make([]payoutRow, 0, len(payouts))
	for _, payout := range payouts {
		rows = append(rows, payoutRow{
			Payout: payout,
			Badge:  view.PayoutBadge(payout.Status),
		})
	}

	return c.Render("bank", fiber.Map{
		"supplier_id": supplierID,
		"account":     account,
		"payouts":     rows,
		"pagination":  view.Paginate(total, page, perPage),
		"toast":       view.PopToast(c),
	})
}
