package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"procurement/domain"
	"procurement/internal/repositories"
	"procurement/internal/view"
)

// listProducts pages through the catalog. Filtering, sorting and paging
// all happen in the database.
func (h *Handler) listProducts(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	filter := repositories.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Limit:    perPage,
		Offset:   offset,
	}

	products, total, err := h.products.List(c.Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"products":   products,
		"pagination": view.Paginate(total, page, perPage),
	})
}

func (h *Handler) listCategories(c *fiber.Ctx) error {
	categories, err := h.products.Categories(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	product, err := h.products.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"product": product,
	})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	product := &domain.Product{}
	if err := c.BodyParser(product); err != nil {
		return h.fail(c, err)
	}

	if err := h.products.Create(c.Context(), product); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU),
		zap.String("actor", actor(c)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"product": product,
	})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	product := &domain.Product{}
	if err := c.BodyParser(product); err != nil {
		return h.fail(c, err)
	}
	product.ID = c.Params("id")

	if err := h.products.Update(c.Context(), product); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"product": product,
	})
}

// archiveProduct soft-deletes: the row stays for historical orders.
func (h *Handler) archiveProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.products.Archive(c.Context(), id); err != nil {
		return h.fail(c, err)
	}

	h.log.Info("product archived",
		zap.String("product_id", id),
		zap.String("actor", actor(c)))

	if wantsRedirect(c) {
		return redirectWithToast(c, "/catalog", view.ToastSuccess, "Product archived")
	}
	return c.JSON(fiber.Map{
		"archived": true,
	})
}

// catalogPage renders the catalog management screen.
func (h *Handler) catalogPage(c *fiber.Ctx) error {
	page, perPage, offset := pageArgs(c)

	filter := repositories.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Limit:    perPage,
		Offset:   offset,
	}

	products, total, err := h.products.List(c.Context(), filter)
	if err != nil {
		return err
	}

	categories, err := h.products.Categories(c.Context())
	if err != nil {
		return err
	}

	type pageRow struct {
		domain.Product
		Archive view.Dialog
	}
	rows := make([]pageRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, pageRow{Product: p, Archive: view.ConfirmArchive(p.Name)})
	}

	return c.Render("catalog", fiber.Map{
		"products":   rows,
		"categories": categories,
		"q":          filter.Query,
		"category":   filter.Category,
		"sort":       filter.Sort,
		"pagination": view.Paginate(total, page, perPage),
		"toast":      view.PopToast(c),
	})
}
