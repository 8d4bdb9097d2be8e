package handlers

import (
	"errors"
	"net/http"

	"github.com/Gabrielssrs/Robotech-sub000/middleware"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/services"
)

// ReferenceHandler serves the venue and category catalogs.
type ReferenceHandler struct {
	referenceService services.ReferenceService
}

func NewReferenceHandler(referenceService services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var venue models.Venue
	if err := readJSON(w, r, &venue); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if venue.Name == "" || venue.Courts < 1 {
		badRequestResponse(w, r, errors.New("venue name and a positive court count are required"))
		return
	}

	if err := h.referenceService.CreateVenue(r.Context(), principal, &venue); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"venue": venue}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.referenceService.ListVenues(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"venues": venues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "venueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var venue models.Venue
	if err := readJSON(w, r, &venue); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue.ID = id

	if err := h.referenceService.UpdateVenue(r.Context(), principal, &venue); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"venue": venue}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "venueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.referenceService.DeleteVenue(r.Context(), principal, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReferenceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var category models.Category
	if err := readJSON(w, r, &category); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if category.Name == "" || category.MaxWeightGrams <= 0 {
		badRequestResponse(w, r, errors.New("category name and a positive weight limit are required"))
		return
	}

	if err := h.referenceService.CreateCategory(r.Context(), principal, &category); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.referenceService.ListCategories(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var category models.Category
	if err := readJSON(w, r, &category); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	category.ID = id

	if err := h.referenceService.UpdateCategory(r.Context(), principal, &category); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReferenceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.referenceService.DeleteCategory(r.Context(), principal, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
