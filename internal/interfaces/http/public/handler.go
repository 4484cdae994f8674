package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/localbites/localbites-services/api/internal/application"
)

// Handler wires the public HTTP surface to the application services. HTML
// endpoints render templates and communicate through flash notices; the
// /api endpoints speak JSON.
type Handler struct {
	logger    *log.Logger
	stores    application.StoreService
	reviews   application.ReviewService
	favorites application.FavoriteService
	renderer  Renderer
	flash     *FlashCodec
	photos    *PhotoStore
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger    *log.Logger
	Stores    application.StoreService
	Reviews   application.ReviewService
	Favorites application.FavoriteService
	Renderer  Renderer
	Flash     *FlashCodec
	Photos    *PhotoStore
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:    cfg.Logger,
		stores:    cfg.Stores,
		reviews:   cfg.Reviews,
		favorites: cfg.Favorites,
		renderer:  cfg.Renderer,
		flash:     cfg.Flash,
		photos:    cfg.Photos,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/", h.storeListHandler())
	r.Get("/stores", h.storeListHandler())
	r.Get("/stores/page/{page}", h.storeListHandler())
	r.Get("/store/{slug}", h.storeDetailHandler())
	r.Get("/tags", h.tagListHandler())
	r.Get("/tags/{tag}", h.tagListHandler())
	r.Get("/top", h.topStoresHandler())
	r.Get("/map", h.mapPageHandler())

	r.With(authMiddleware).Get("/add", h.addStoreFormHandler())
	r.With(authMiddleware).Post("/add", h.createStoreHandler())
	r.With(authMiddleware).Post("/add/{id}", h.updateStoreHandler())
	r.With(authMiddleware).Get("/stores/{id}/edit", h.editStoreFormHandler())
	r.With(authMiddleware).Delete("/stores/{id}/delete", h.deleteStoreHandler())
	r.With(authMiddleware).Get("/hearts", h.heartedStoresHandler())

	r.With(authMiddleware).Post("/reviews/{id}", h.createReviewHandler())
	r.With(authMiddleware).Get("/reviews/{id}/edit", h.editReviewFormHandler())
	r.With(authMiddleware).Post("/reviews/{id}/edit", h.updateReviewHandler())
	r.With(authMiddleware).Delete("/reviews/{id}/delete", h.deleteReviewHandler())

	r.Get("/api/search", h.searchHandler())
	r.Get("/api/stores/near", h.nearHandler())
	r.With(authMiddleware).Post("/api/store/{id}/heart", h.heartToggleHandler())
}
