package view

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Toast levels.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Toast is a one-shot flash message. It survives exactly one redirect:
// a mutation handler sets it, the next page render consumes it.
type Toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const toastCookie = "console_toast"

// Flash stores the toast in a short-lived cookie for the next render.
func Flash(c *fiber.Ctx, level, message string) {
	raw, err := json.Marshal(Toast{Level: level, Message: message})
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     toastCookie,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopToast reads and clears the pending toast, if any.
func PopToast(c *fiber.Ctx) *Toast {
	val := c.Cookies(toastCookie)
	if val == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     toastCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	raw, err := base64.URLEncoding.DecodeString(val)
	if err != nil {
		return nil
	}
	t := &Toast{}
	if err := json.Unmarshal(raw, t); err != nil {
		return nil
	}
	return t
}
