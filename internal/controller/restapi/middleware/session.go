package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/internal/usecase/auth"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookie carries the token for browser navigations.
	SessionCookie = "session"

	// LoginPath is where unauthenticated page loads are sent.
	LoginPath = "/v1/login"
)

// Session resolves the request's token into a session and stores it in
// the request's user context. Page loads without a session are redirected
// to the sign-in page, API calls get 401.
func Session(a usecase.AuthUseCase, l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		s, err := a.Current(ctx.UserContext(), Token(ctx))
		if err != nil {
			if !errors.Is(err, errs.ErrUnauthenticated) {
				l.Error(err, "restapi - middleware - Session")
			}

			if wantsPage(ctx) {
				return ctx.Redirect(LoginPath, http.StatusSeeOther)
			}

			return ctx.Status(http.StatusUnauthorized).JSON(response.Error{Error: errs.ErrUnauthenticated.Error()})
		}

		ctx.SetUserContext(auth.WithSession(ctx.UserContext(), s))

		return ctx.Next()
	}
}

// Token returns the bearer token of the request, falling back to the
// session cookie.
func Token(ctx *fiber.Ctx) string {
	h := ctx.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ctx.Cookies(SessionCookie)
}

func wantsPage(ctx *fiber.Ctx) bool {
	return ctx.Method() == fiber.MethodGet &&
		strings.Contains(ctx.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
