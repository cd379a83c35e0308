package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/jewelmart-backend/api/middleware"
	"github.com/angelmondragon/jewelmart-backend/api/responses"
	"github.com/angelmondragon/jewelmart-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
)

// messageResponse carries a plain confirmation message.
type messageResponse struct {
	Message string `json:"message"`
}

func actorFrom(r *http.Request) (auth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

// authorizeUser resolves the caller and checks it may act for userID.
// Used where the user id arrives in a body or query string rather than the path.
func authorizeUser(r *http.Request, userID uuid.UUID) (auth.Actor, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return actor, err
	}
	if userID != uuid.Nil && !actor.CanAccess(userID) {
		return actor, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return actor, nil
}

func actorRef(actor auth.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
