package public

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/localbites/localbites-services/api/internal/application"
	"github.com/localbites/localbites-services/api/internal/domain"
	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

// createReviewHandler posts a review on the store named in the path and
// redirects back to the page the form was submitted from.
func (h *Handler) createReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		principal, _ := common.UserFromContext(r.Context())
		storeID := chi.URLParam(r, "id")

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxFormBody)
		if err := r.ParseForm(); err != nil {
			h.failHTML(w, r, domain.NewValidationError("form", "could not be read"), "/")
			return
		}
		input, err := parseReviewForm(r)
		if err != nil {
			h.failHTML(w, r, err, backURL(r, "/"))
			return
		}

		author := domain.User{ID: principal.ID, Name: principal.Name}
		review, err := h.reviews.Create(ctx, storeID, author, input)
		if err != nil {
			h.failHTML(w, r, err, backURL(r, "/"))
			return
		}

		h.flash.Set(w, r, FlashSuccess, "Review Saved!")
		redirect(w, r, backURL(r, "/store/"+review.StoreSlug))
	}
}

func (h *Handler) editReviewFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		reviewID := chi.URLParam(r, "id")

		review, err := h.reviews.EditForm(ctx, reviewID, user.ID)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		h.render(w, r, "editReview", "Edit Review", review)
	}
}

func (h *Handler) updateReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		reviewID := chi.URLParam(r, "id")
		editPath := "/reviews/" + reviewID + "/edit"

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxFormBody)
		if err := r.ParseForm(); err != nil {
			h.failHTML(w, r, domain.NewValidationError("form", "could not be read"), editPath)
			return
		}
		input, err := parseReviewForm(r)
		if err != nil {
			h.failHTML(w, r, err, editPath)
			return
		}

		review, err := h.reviews.Update(ctx, reviewID, user.ID, input)
		if err != nil {
			h.failHTML(w, r, err, editPath)
			return
		}

		h.flash.Set(w, r, FlashSuccess, "Successfully updated your review!")
		redirect(w, r, "/store/"+review.StoreSlug)
	}
}

func (h *Handler) deleteReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		reviewID := chi.URLParam(r, "id")

		review, err := h.reviews.Delete(ctx, reviewID, user.ID)
		if err != nil {
			h.failJSON(w, err)
			return
		}

		h.flash.Set(w, r, FlashSuccess, "Your review has been successfully deleted!")
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewResponse(*review))
	}
}

func parseReviewForm(r *http.Request) (application.ReviewInput, error) {
	rating, ok := common.ParsePositiveInt(r.FormValue("rating"), 0)
	if !ok {
		return application.ReviewInput{}, domain.NewValidationError("rating", "must be between 1 and 5")
	}
	return application.ReviewInput{
		Text:   strings.TrimSpace(r.FormValue("text")),
		Rating: rating,
	}, nil
}

// backURL mirrors the "redirect back" behaviour of the review form: return
// to the referring page when it is local, else to fallback.
func backURL(r *http.Request, fallback string) string {
	ref := r.Referer()
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	if ref != "" && strings.HasPrefix(ref, "http") {
		if idx := strings.Index(strings.TrimPrefix(strings.TrimPrefix(ref, "https://"), "http://"), "/"); idx >= 0 {
			trimmed := strings.TrimPrefix(strings.TrimPrefix(ref, "https://"), "http://")
			return trimmed[idx:]
		}
	}
	return fallback
}
