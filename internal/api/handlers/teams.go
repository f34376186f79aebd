package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/teamboard/internal/api/dto"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/team"
)

type TeamHandler struct {
	teamService *team.Service
}

func NewTeamHandler(teamService *team.Service) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// List is public. With ?myTeams=true and a valid token it restricts the
// page to teams the caller belongs to.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.PaginationParams{
		Page:  parseIntQuery(r, "page"),
		Limit: parseIntQuery(r, "limit"),
	}
	params.Normalize()

	listParams := team.ListParams{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: r.URL.Query().Get("search"),
	}
	if r.URL.Query().Get("myTeams") == "true" {
		if userID := middleware.GetUserID(r.Context()); userID != 0 {
			listParams.MemberID = userID
		}
	}

	teams, total, err := h.teamService.List(r.Context(), listParams)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list teams")
		return
	}

	respondPage(w, "Teams retrieved", teams, dto.NewPagination(params.Page, params.Limit, total))
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.teamService.GetTeamByID(r.Context(), teamID)
	if err != nil {
		switch {
		case errors.Is(err, team.ErrTeamNotFound):
			respondError(w, http.StatusNotFound, "Team not found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to load team")
		}
		return
	}

	respondData(w, http.StatusOK, "Team retrieved", detail)
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	detail, err := h.teamService.CreateTeam(r.Context(), req.Name, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create team")
		return
	}

	respondData(w, http.StatusCreated, "Team created successfully", detail)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	detail, err := h.teamService.UpdateTeam(r.Context(), teamID, req.Name, userID)
	if err != nil {
		h.respondTeamError(w, err, "Failed to update team")
		return
	}

	respondData(w, http.StatusOK, "Team updated successfully", detail)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), teamID, userID); err != nil {
		h.respondTeamError(w, err, "Failed to delete team")
		return
	}

	respondData(w, http.StatusOK, "Team deleted successfully", nil)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	member, err := h.teamService.AddMember(r.Context(), teamID, req.Email, req.Role, userID)
	if err != nil {
		h.respondTeamError(w, err, "Failed to add member")
		return
	}

	respondData(w, http.StatusCreated, "Member added successfully", member)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(w, r, "memberID")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), teamID, memberID, userID); err != nil {
		h.respondTeamError(w, err, "Failed to remove member")
		return
	}

	respondData(w, http.StatusOK, "Member removed successfully", nil)
}

func (h *TeamHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(w, r, "memberID")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	if err := h.teamService.UpdateMemberRole(r.Context(), teamID, memberID, req.Role, userID); err != nil {
		h.respondTeamError(w, err, "Failed to update member role")
		return
	}

	respondData(w, http.StatusOK, "Member role updated successfully", nil)
}

func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(r.Context(), teamID, userID)
	if err != nil {
		h.respondTeamError(w, err, "Failed to list members")
		return
	}

	respondData(w, http.StatusOK, "Members retrieved", members)
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	teamID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.teamService.LeaveTeam(r.Context(), teamID, userID); err != nil {
		h.respondTeamError(w, err, "Failed to leave team")
		return
	}

	respondData(w, http.StatusOK, "Left team successfully", nil)
}

func (h *TeamHandler) MyTeams(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	teams, err := h.teamService.ListUserTeams(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list teams")
		return
	}

	respondData(w, http.StatusOK, "Teams retrieved", teams)
}

func (h *TeamHandler) respondTeamError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, team.ErrTeamNotFound):
		respondError(w, http.StatusNotFound, "Team not found")
	case errors.Is(err, team.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, team.ErrMembershipNotFound):
		respondError(w, http.StatusNotFound, "Member not found in this team")
	case errors.Is(err, team.ErrNotMember):
		respondError(w, http.StatusForbidden, "You are not a member of this team")
	case errors.Is(err, team.ErrNotAdmin):
		respondError(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, team.ErrOnlyCreatorCanDelete):
		respondError(w, http.StatusForbidden, "Only the team creator can delete the team")
	case errors.Is(err, team.ErrCannotRemoveCreator):
		respondError(w, http.StatusForbidden, "Cannot remove the team creator")
	case errors.Is(err, team.ErrCannotChangeCreatorRole):
		respondError(w, http.StatusForbidden, "Cannot change the team creator's role")
	case errors.Is(err, team.ErrCreatorCannotLeave):
		respondError(w, http.StatusForbidden, "Team creator cannot leave the team")
	case errors.Is(err, team.ErrAlreadyMember):
		respondError(w, http.StatusConflict, "User is already a member of this team")
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

func parseIntQuery(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
