package handlers

import (
	"errors"
	"net/http"

	"github.com/Gabrielssrs/Robotech-sub000/middleware"
	"github.com/Gabrielssrs/Robotech-sub000/services"
)

const maxPhotoBytes = 5 << 20 // 5MB

type RobotHandler struct {
	robotService services.RobotService
}

func NewRobotHandler(robotService services.RobotService) *RobotHandler {
	return &RobotHandler{robotService: robotService}
}

func (h *RobotHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.RobotInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == "" {
		badRequestResponse(w, r, errors.New("robot name is required"))
		return
	}

	robot, err := h.robotService.Create(r.Context(), principal, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"robot": robot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RobotHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "robotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	robot, err := h.robotService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"robot": robot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine returns the caller's garage.
func (h *RobotHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	robots, err := h.robotService.ListByOwner(r.Context(), principal.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"robots": robots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RobotHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "robotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RobotInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	robot, err := h.robotService.Update(r.Context(), principal, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"robot": robot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RobotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "robotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.robotService.Delete(r.Context(), principal, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts the raw image in the request body; the Content-Type
// header decides the stored format.
func (h *RobotHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "robotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	body := http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	defer body.Close()

	robot, err := h.robotService.UploadPhoto(r.Context(), principal, id, contentType, body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"robot": robot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
