package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/api/middleware"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials")
	}
	return userID, nil
}
