package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashSurvivesOneRedirect(t *testing.T) {
	app := fiber.New()

	app.Post("/save", func(c *fiber.Ctx) error {
		Flash(c, ToastSuccess, "product saved")
		return c.Redirect("/")
	})
	app.Get("/", func(c *fiber.Ctx) error {
		toast := PopToast(c)
		if toast == nil {
			return c.JSON(fiber.Map{"toast": nil})
		}
		return c.JSON(fiber.Map{"toast": toast})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/save", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	cookie := resp.Header.Get(fiber.HeaderSetCookie)
	require.NotEmpty(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderCookie, cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)

	body := readBody(t, resp)
	assert.Contains(t, body, "product saved")
	assert.Contains(t, body, ToastSuccess)

	// The pop clears the cookie for the render after this one.
	assert.Contains(t, resp.Header.Get(fiber.HeaderSetCookie), "console_toast=")
}

func TestPopToastWithoutFlash(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, PopToast(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestPopToastIgnoresGarbageCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, PopToast(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderCookie, "console_toast=not-base64!!")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
