package handlers

import (
	"net/http"

	"storefront/internal/models"
)

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register creates a user. Tokens are issued by the auth service, not here.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.UserCreate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}
