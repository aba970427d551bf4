package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/contact"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.deps.Contact.Submit(r.Context(), contact.Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, contact.ErrMissingName),
			errors.Is(err, contact.ErrMissingEmail),
			errors.Is(err, contact.ErrMissingMessage):
			respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			// Delivery failure: the relay is an external collaborator.
			respondError(w, r, http.StatusBadGateway, "failed to send message")
		}
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"message": "تم استلام رسالتك بنجاح وإرسالها!"})
}
