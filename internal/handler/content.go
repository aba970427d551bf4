package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maktabat-alamal/storefront/internal/domain/content"
)

func (h *Handler) getContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch chi.URLParam(r, "id") {
	case content.AboutUsID:
		about, err := h.deps.Content.AboutUs(ctx)
		if err != nil {
			internalError(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, about)
	case content.ContactUsID:
		contactUs, err := h.deps.Content.ContactUs(ctx)
		if err != nil {
			internalError(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, contactUs)
	default:
		respondError(w, r, http.StatusNotFound, "content not found")
	}
}

func (h *Handler) saveContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch chi.URLParam(r, "id") {
	case content.AboutUsID:
		var about content.AboutUs
		if !decodeBody(w, r, &about) {
			return
		}
		if err := h.deps.Content.SaveAboutUs(ctx, about); err != nil {
			internalError(w, r, err)
			return
		}
	case content.ContactUsID:
		var contactUs content.ContactUs
		if !decodeBody(w, r, &contactUs) {
			return
		}
		if err := h.deps.Content.SaveContactUs(ctx, contactUs); err != nil {
			internalError(w, r, err)
			return
		}
	default:
		respondError(w, r, http.StatusNotFound, "content not found")
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
