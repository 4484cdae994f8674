package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

// searchHandler serves GET /api/search?q=... as a JSON list of stores
// matching the full-text query.
func (h *Handler) searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		stores, err := h.stores.Search(ctx, r.URL.Query().Get("q"))
		if err != nil {
			h.failJSON(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponses(stores))
	}
}

// nearHandler serves GET /api/stores/near?lat=...&lng=... as the stores
// closest to the given point.
func (h *Handler) nearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		lat, latOK := common.ParseFloat(r.URL.Query().Get("lat"))
		lng, lngOK := common.ParseFloat(r.URL.Query().Get("lng"))
		if !latOK || !lngOK {
			http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
			return
		}

		stores, err := h.stores.Near(ctx, lng, lat)
		if err != nil {
			h.failJSON(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponses(stores))
	}
}

// heartToggleHandler flips the authenticated user's heart on a store and
// returns the updated user.
func (h *Handler) heartToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		principal, _ := common.UserFromContext(r.Context())
		storeID := chi.URLParam(r, "id")

		user, err := h.favorites.Toggle(ctx, principal.ID, storeID)
		if err != nil {
			h.failJSON(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildUserResponse(*user))
	}
}
