package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/localbites/localbites-services/api/internal/application"
	"github.com/localbites/localbites-services/api/internal/domain"
	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

// redirect issues the see-other redirect used after HTML mutations.
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// failHTML maps a service error onto the HTML flow: validation problems and
// ownership failures become flash notices with a redirect, missing
// resources fall through to the 404 page, anything else is a failure page.
func (h *Handler) failHTML(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.flash.Set(w, r, FlashError, "Oops! "+ve.Error())
		redirect(w, r, fallback)
	case errors.Is(err, domain.ErrNotOwner):
		h.flash.Set(w, r, FlashError, domain.ErrNotOwner.Error())
		redirect(w, r, "/")
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
	default:
		h.logger.Printf("ハンドラ内部エラー: %v", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

// failJSON maps a service error onto an API status code.
func (h *Handler) failJSON(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		common.WriteJSON(h.logger, w, http.StatusUnprocessableEntity, map[string]string{"error": ve.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": domain.ErrNotOwner.Error()})
	case errors.Is(err, domain.ErrNotFound):
		common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		h.logger.Printf("API 内部エラー: %v", err)
		common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// parseStoreForm reads the store create/update form fields. A location is
// built only when both coordinates parse; malformed coordinates surface as
// a validation error rather than a silently dropped point.
func parseStoreForm(r *http.Request) (application.StoreInput, error) {
	input := application.StoreInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Tags:        r.Form["tags"],
	}

	address := strings.TrimSpace(r.FormValue("address"))
	lngRaw := strings.TrimSpace(r.FormValue("lng"))
	latRaw := strings.TrimSpace(r.FormValue("lat"))
	if address == "" && lngRaw == "" && latRaw == "" {
		return input, nil
	}

	lng, lngOK := common.ParseFloat(lngRaw)
	lat, latOK := common.ParseFloat(latRaw)
	if !lngOK || !latOK {
		return input, domain.NewValidationError("location", "coordinates must be numbers")
	}

	input.Location = &domain.Location{
		Longitude: lng,
		Latitude:  lat,
		Address:   address,
	}
	return input, nil
}
