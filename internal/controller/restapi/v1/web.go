package v1

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var (
	//go:embed web/index.html web/login.html
	webFiles embed.FS
)

func (r *V1) showUI(ctx *fiber.Ctx) error {
	return r.sendPage(ctx, "web/index.html", "showUI")
}

func (r *V1) showLogin(ctx *fiber.Ctx) error {
	return r.sendPage(ctx, "web/login.html", "showLogin")
}

func (r *V1) sendPage(ctx *fiber.Ctx, name, handler string) error {
	file, err := webFiles.ReadFile(name)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - "+handler)

		return errorResponse(ctx, http.StatusInternalServerError, "problems with load UI")
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return ctx.Send(file)
}
