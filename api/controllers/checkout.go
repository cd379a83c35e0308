package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/jewelmart-backend/api/middleware"
	"github.com/angelmondragon/jewelmart-backend/api/responses"
	"github.com/angelmondragon/jewelmart-backend/api/validators"
	"github.com/angelmondragon/jewelmart-backend/internal/checkout"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
)

func CheckoutSummary(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		userID, err := validators.URLParamUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CheckoutConfirmPayment places the order and empties the cart. The
// Idempotency-Key header is stored on the order so a retry returns the same
// invoice even when the response cache has lost it.
func CheckoutConfirmPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		var req checkout.ConfirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := authorizeUser(r, req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.ConfirmPayment(r.Context(), checkout.ConfirmInput{
			UserID:         req.UserID,
			Delivery:       req.Delivery,
			Discount:       req.Discount,
			CouponCode:     req.CouponCode,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(middleware.IdempotencyKeyHeader)),
			Actor:          actorRef(actor),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
