package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | {{.App}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Body}}</p>
</body>
</html>
`))

// PagesHandler serves the placeholder pages that sit behind the edge redirector.
type PagesHandler struct {
	appName string
}

// NewPagesHandler constructs handler.
func NewPagesHandler(appName string) *PagesHandler {
	return &PagesHandler{appName: appName}
}

// Home GET /.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	return h.render(c, "Submit a complaint", "Use POST /api/complaints to file a complaint.")
}

// Admin GET /admin and /admin/*.
func (h *PagesHandler) Admin(c *fiber.Ctx) error {
	return h.render(c, "Admin dashboard", "Use GET /api/complaints to review complaints.")
}

// Login GET /login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return h.render(c, "Sign in", "Use POST /api/auth/login to sign in.")
}

// Register GET /register.
func (h *PagesHandler) Register(c *fiber.Ctx) error {
	return h.render(c, "Create an account", "Use POST /api/auth/register to sign up.")
}

func (h *PagesHandler) render(c *fiber.Ctx, title, body string) error {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct{ App, Title, Body string }{h.appName, title, body})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

