package handlers

import (
	"net/http"

	"github.com/Gabrielssrs/Robotech-sub000/middleware"
	"github.com/Gabrielssrs/Robotech-sub000/services"
)

// DebugHandler exposes the force actions used to exercise a bracket
// end-to-end without waiting for the clock or for judges. The whole
// subtree is mounted only when ENABLE_DEBUG_ENDPOINTS is set.
type DebugHandler struct {
	tournamentService services.TournamentService
	bracketService    services.BracketService
	matchService      services.MatchService
	scoringService    services.ScoringService
}

func NewDebugHandler(
	tournamentService services.TournamentService,
	bracketService services.BracketService,
	matchService services.MatchService,
	scoringService services.ScoringService,
) *DebugHandler {
	return &DebugHandler{
		tournamentService: tournamentService,
		bracketService:    bracketService,
		matchService:      matchService,
		scoringService:    scoringService,
	}
}

// ForceSeed seeds the bracket immediately, ignoring the registration
// window.
func (h *DebugHandler) ForceSeed(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.SeedBracket(r.Context(), tournamentID, nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForceStart starts the tournament immediately, ignoring its start
// moment.
func (h *DebugHandler) ForceStart(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Start(r.Context(), principal, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForceStartMatch moves one pending match to in_progress regardless of
// its scheduled time.
func (h *DebugHandler) ForceStartMatch(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.ForceStartMatch(r.Context(), principal, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match started"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForceComplete runs the whole bracket to a champion with synthetic
// results.
func (h *DebugHandler) ForceComplete(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scoringService.ForceComplete(r.Context(), principal, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetFullTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
