package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/api/middleware"
	"github.com/neonshoplabs/neonshop-backend/api/responses"
	"github.com/neonshoplabs/neonshop-backend/api/validators"
	"github.com/neonshoplabs/neonshop-backend/internal/support"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
)

type supportMessageRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// SupportCreate accepts a storefront contact message. Anonymous senders are
// allowed; a signed-in sender gets linked through the request context.
func SupportCreate(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body supportMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				userID = &parsed
			}
		}

		dto, err := svc.CreateMessage(r.Context(), support.CreateMessageInput{
			UserID:  userID,
			Email:   body.Email,
			Name:    body.Name,
			Subject: body.Subject,
			Body:    body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}
