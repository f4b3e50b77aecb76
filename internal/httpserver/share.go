package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/innovativedesigner773/sharecart/internal/models"
	"github.com/innovativedesigner773/sharecart/internal/service"
	"github.com/innovativedesigner773/sharecart/internal/transport"
	"github.com/innovativedesigner773/sharecart/pkg/logging"
	"github.com/labstack/echo/v4"
)

type ShareHTTP struct {
	Svc     *service.ShareService
	BaseURL string
}

func (h *ShareHTTP) GetID(c echo.Context) (uuid.UUID, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}

	return userID, nil
}

func (h *ShareHTTP) CreateShare(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.create")

	var ownerID *uuid.UUID
	if id, err := h.GetID(c); err == nil {
		ownerID = &id
	}
	guestRef := c.Request().Header.Get("X-Session-ID")
	if ownerID == nil && guestRef == "" {
		l.Warn("create_share_error", "status", 401, "reason", "no owner identity")
		return c.JSON(http.StatusUnauthorized, "login or session required")
	}

	var req transport.CreateShareRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_share_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_share_error", "status", 400, "error", err)
		return err
	}

	cart, err := h.Svc.CreateShare(ctx, ownerID, guestRef, req.Snapshot, req.Message, req.ExpiryDays)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_share_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, err.Error())
		}
		l.Error("create_share_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("share created", "cart_id", cart.ID)
	return c.JSON(http.StatusCreated, transport.CreateShareResponse{
		ID:         cart.ID,
		ShareToken: cart.ShareToken,
		ShareURL:   h.BaseURL + "/share/" + cart.ShareToken,
		ExpiresAt:  cart.ExpiresAt,
	})
}

func (h *ShareHTTP) Resolve(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.resolve")

	cart, err := h.Svc.Resolve(ctx, c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("resolve_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "link invalid")
		case errors.Is(err, service.ErrExpired):
			l.Info("resolve_expired", "status", 410)
			return c.JSON(http.StatusGone, "link expired")
		default:
			l.Error("resolve_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("share resolved", "cart_id", cart.ID, "cart_status", cart.Status)
	return c.JSON(http.StatusOK, transport.ResolveResponse{
		Status:      cart.Status,
		Payable:     cart.Status == models.StatusActive,
		Snapshot:    cart.Snapshot,
		Message:     cart.Message,
		ExpiresAt:   cart.ExpiresAt,
		AccessCount: cart.AccessCount,
	})
}

func (h *ShareHTTP) CompletePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.complete_payment")

	payerID, err := h.GetID(c)
	if err != nil {
		l.Warn("complete_payment_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CompletePaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("complete_payment_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("complete_payment_error", "status", 400, "error", err)
		return err
	}

	cart, err := h.Svc.CompletePayment(ctx, c.Param("token"), payerID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("complete_payment_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "link invalid")
		case errors.Is(err, service.ErrExpired):
			l.Info("complete_payment_expired", "status", 410)
			return c.JSON(http.StatusGone, "link expired")
		case errors.Is(err, service.ErrAlreadyFinalized):
			// Someone else won the race. Not a payment failure.
			l.Info("complete_payment_already_finalized", "status", 409)
			return c.JSON(http.StatusConflict, transport.PaymentOutcome{
				Outcome: "already_finalized",
				Message: "this cart was already paid for",
			})
		case errors.Is(err, service.ErrValidation):
			l.Warn("complete_payment_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, err.Error())
		default:
			l.Error("complete_payment_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("share paid", "cart_id", cart.ID, "order_id", req.OrderID)
	return c.JSON(http.StatusOK, transport.PaymentOutcome{
		Outcome: "paid",
		CartID:  cart.ID,
	})
}

func (h *ShareHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.cancel")

	ownerID, err := h.GetID(c)
	if err != nil {
		l.Warn("cancel_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.Svc.Cancel(ctx, c.Param("token"), ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("cancel_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "link invalid")
		case errors.Is(err, service.ErrForbidden):
			l.Warn("cancel_error", "status", 403, "error", err)
			return c.JSON(http.StatusForbidden, "only the owner may cancel")
		case errors.Is(err, service.ErrAlreadyFinalized):
			l.Info("cancel_already_finalized", "status", 409)
			return c.JSON(http.StatusConflict, "cart is already finalized")
		default:
			l.Error("cancel_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("share cancelled", "cart_id", cart.ID)
	return c.JSON(http.StatusOK, cart)
}

func (h *ShareHTTP) ListShares(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.list")

	ownerID, err := h.GetID(c)
	if err != nil {
		l.Warn("list_shares_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	carts, err := h.Svc.ListShares(ctx, ownerID)
	if err != nil {
		l.Error("list_shares_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, carts)
}

func (h *ShareHTTP) Notifications(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "share.notifications")

	ownerID, err := h.GetID(c)
	if err != nil {
		l.Warn("notifications_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	feed, err := h.Svc.NotificationsFor(ctx, ownerID)
	if err != nil {
		l.Error("notifications_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, feed)
}
