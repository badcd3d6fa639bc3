package v1

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/middleware"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/usecase/auth"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// @Summary 	Sign in
// @Description Checks the admin credentials and opens a session
// @Tags 		auth
// @Accept 		json
// @Produce 	json
// @Param 		request body request.Login true "Credentials"
// @Success 	200 {object} response.Login
// @Failure 	400 {object} response.Error "Malformed request"
// @Failure 	401 {object} response.Error "Invalid login credentials"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/auth/login [post]
func (r *V1) login(ctx *fiber.Ctx) error {
	var body request.Login

	if err := ctx.BodyParser(&body); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if err := r.validate.Struct(body); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "email and password are required")
	}

	token, s, err := r.auth.SignIn(ctx.UserContext(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return errorResponse(ctx, http.StatusUnauthorized, errs.ErrInvalidCredentials.Error())
		}
		r.logger.Error(err, "restapi - v1 - login")

		return errorResponse(ctx, http.StatusInternalServerError, "session storage problems")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(response.Login{
		Token:     token,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	})
}

// @Summary 	Sign out
// @Tags 		auth
// @Success 	204 "Signed out"
// @Failure 	401 {object} response.Error "Not authenticated"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/auth/logout [post]
func (r *V1) logout(ctx *fiber.Ctx) error {
	err := r.auth.SignOut(ctx.UserContext(), middleware.Token(ctx))
	if err != nil && !errors.Is(err, errs.ErrUnauthenticated) {
		r.logger.Error(err, "restapi - v1 - logout")

		return errorResponse(ctx, http.StatusInternalServerError, "session storage problems")
	}

	ctx.ClearCookie(middleware.SessionCookie)

	return ctx.SendStatus(http.StatusNoContent)
}

// @Summary 	Current session
// @Tags 		auth
// @Produce 	json
// @Success 	200 {object} response.Session
// @Failure 	401 {object} response.Error "Not authenticated"
// @Router 		/v1/auth/session [get]
func (r *V1) session(ctx *fiber.Ctx) error {
	s, ok := auth.FromContext(ctx.UserContext())
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, errs.ErrUnauthenticated.Error())
	}

	return ctx.JSON(response.Session{
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	})
}

// @Summary 	Session events
// @Description Streams sign-in and sign-out notifications as server-sent events
// @Tags 		auth
// @Produce 	text/event-stream
// @Success 	200
// @Failure 	401 {object} response.Error "Not authenticated"
// @Router 		/v1/auth/events [get]
func (r *V1) sessionEvents(ctx *fiber.Ctx) error {
	// стрим живёт дольше обработчика, поэтому контекст свой
	streamCtx, cancel := context.WithTimeout(context.Background(), r.streamTTL)

	events, closeFn, err := r.auth.Subscribe(streamCtx)
	if err != nil {
		cancel()
		r.logger.Error(err, "restapi - v1 - sessionEvents")

		return errorResponse(ctx, http.StatusInternalServerError, "session storage problems")
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer func() {
			if err := closeFn(); err != nil {
				r.logger.Warn("restapi - v1 - sessionEvents - closeFn: %v", err)
			}
		}()

		if err := streamSessionEvents(streamCtx, w, events); err != nil {
			r.logger.Debug(fmt.Sprintf("restapi - v1 - sessionEvents - stream closed: %v", err))
		}
	}))

	return nil
}

// streamSessionEvents writes events as SSE frames until ctx ends, the
// channel closes or the client goes away.
func streamSessionEvents(ctx context.Context, w *bufio.Writer, events <-chan entity.SessionEvent) error {
	if _, err := w.WriteString(": connected\n\n"); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}

			if _, err = fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
				return err
			}
			if err = w.Flush(); err != nil {
				return err
			}
		}
	}
}
