package httptransport

import (
	"encoding/json"
	"net/http"

	provmodels "pinauth/internal/provision/models"
	dErrors "pinauth/pkg/domain-errors"
	"pinauth/pkg/httputil"
)

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req provmodels.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	res, err := h.provision.Provision(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":      res.ID.String(),
		"name":    res.Name,
		"message": "user created successfully",
	})
}
