package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

// SessionService is the payment session surface exposed over HTTP.
type SessionService interface {
	CreateSession(ctx context.Context, req payments.CreateSessionRequest) (payments.Session, error)
	GetSession(ctx context.Context, id string) (payments.Session, error)
}

// PaymentSessionCreate creates, or returns the existing, session for the
// request's idempotency key.
func PaymentSessionCreate(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment sessions unavailable"))
			return
		}
		var payload payments.CreateSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.CreateSession(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func PaymentSessionFetch(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment sessions unavailable"))
			return
		}
		sessionID, err := validators.SanitizeIdentifier("session id", chi.URLParam(r, "sessionID"), maxPathIDLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}
		session, err := svc.GetSession(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
