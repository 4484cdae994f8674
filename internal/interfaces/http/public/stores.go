package public

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/localbites/localbites-services/api/internal/domain"
	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

const handlerTimeout = 5 * time.Second

// storeListData feeds the stores template.
type storeListData struct {
	Stores []domain.Store
	Page   int
	Pages  int
	Count  int64
}

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		page, _ := common.ParsePositiveInt(chi.URLParam(r, "page"), 1)

		result, err := h.stores.Page(ctx, page)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		// Requested page lies beyond the data: bounce to the last page that
		// exists, carrying the notice.
		if result.RedirectTo > 0 {
			h.flash.Set(w, r, FlashInfo, result.Notice)
			redirect(w, r, fmt.Sprintf("/stores/page/%d", result.RedirectTo))
			return
		}

		h.render(w, r, "stores", "Stores", storeListData{
			Stores: result.Stores,
			Page:   result.Page,
			Pages:  result.Pages,
			Count:  result.Count,
		})
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		store, err := h.stores.DetailBySlug(ctx, slug)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		h.render(w, r, "store", store.Name, store)
	}
}

// tagListData feeds the tag template.
type tagListData struct {
	Tag    string
	Tags   []domain.TagCount
	Stores []domain.Store
}

func (h *Handler) tagListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		tag := strings.TrimSpace(chi.URLParam(r, "tag"))
		tags, stores, err := h.stores.ByTag(ctx, tag)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		title := "Tags"
		if tag != "" {
			title = tag
		}
		h.render(w, r, "tag", title, tagListData{Tag: tag, Tags: tags, Stores: stores})
	}
}

func (h *Handler) topStoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		stores, err := h.stores.Top(ctx)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}
		h.render(w, r, "topStores", "Top Stores!", stores)
	}
}

func (h *Handler) mapPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, "map", "Map", nil)
	}
}

func (h *Handler) addStoreFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, "editStore", "Add Store", &domain.Store{})
	}
}

func (h *Handler) createStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())

		if err := r.ParseMultipartForm(common.MaxPhotoUpload); err != nil {
			h.failHTML(w, r, domain.NewValidationError("form", "could not be read"), "/add")
			return
		}

		photo, err := h.photos.Save(r)
		if err != nil {
			h.failHTML(w, r, err, "/add")
			return
		}

		input, err := parseStoreForm(r)
		if err != nil {
			h.failHTML(w, r, err, "/add")
			return
		}
		input.Photo = photo

		store, err := h.stores.Create(ctx, user.ID, input)
		if err != nil {
			h.failHTML(w, r, err, "/add")
			return
		}

		h.flash.Set(w, r, FlashSuccess, fmt.Sprintf("Successfully created %s. Care to leave a review?", store.Name))
		redirect(w, r, "/store/"+store.Slug)
	}
}

func (h *Handler) editStoreFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		storeID := chi.URLParam(r, "id")

		store, err := h.stores.EditForm(ctx, storeID, user.ID)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		h.render(w, r, "editStore", "Edit "+store.Name, store)
	}
}

func (h *Handler) updateStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		storeID := chi.URLParam(r, "id")
		editPath := fmt.Sprintf("/stores/%s/edit", storeID)

		if err := r.ParseMultipartForm(common.MaxPhotoUpload); err != nil {
			h.failHTML(w, r, domain.NewValidationError("form", "could not be read"), editPath)
			return
		}

		photo, err := h.photos.Save(r)
		if err != nil {
			h.failHTML(w, r, err, editPath)
			return
		}

		input, err := parseStoreForm(r)
		if err != nil {
			h.failHTML(w, r, err, editPath)
			return
		}
		input.Photo = photo

		store, err := h.stores.Update(ctx, storeID, user.ID, input)
		if err != nil {
			h.failHTML(w, r, err, editPath)
			return
		}

		h.flash.Set(w, r, FlashSuccess, fmt.Sprintf("Successfully updated %s. View the store page to see your changes.", store.Name))
		redirect(w, r, editPath)
	}
}

func (h *Handler) deleteStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		storeID := chi.URLParam(r, "id")

		store, err := h.stores.Delete(ctx, storeID, user.ID)
		if err != nil {
			h.failJSON(w, err)
			return
		}

		h.flash.Set(w, r, FlashSuccess, fmt.Sprintf("Your %s store has been removed!", store.Name))
		common.WriteJSON(h.logger, w, http.StatusOK, buildStoreResponse(*store))
	}
}

// heartedStoresData feeds the hearted-stores view, which reuses the stores
// template without pagination.
func (h *Handler) heartedStoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, _ := common.UserFromContext(r.Context())
		stores, err := h.favorites.Hearts(ctx, user.ID)
		if err != nil {
			h.failHTML(w, r, err, "/")
			return
		}

		h.render(w, r, "stores", "Hearted Stores", storeListData{
			Stores: stores,
			Count:  int64(len(stores)),
		})
	}
}
