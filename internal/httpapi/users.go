package httpapi

import (
	"net/http"

	"ticketdesk/internal/models"
	"ticketdesk/internal/service"
)

func (h *Handler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req service.SigninInput
	if !decodeRequest(w, r, &req) {
		return
	}
	token, err := h.service.Signin(r.Context(), req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"token": token})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeRequest(w, r, &req) {
		return
	}
	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created successfully.", map[string]interface{}{
		"user":  user.View(),
		"token": token,
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respond(w, r, err)
		return
	}
	views := make([]models.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"users": views})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"user": user.View()})
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFromContext(r.Context())
	var req service.UserPatch
	if !decodeRequest(w, r, &req) {
		return
	}
	user, err := h.service.UpdateUser(r.Context(), caller, r.PathValue("userID"), req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated successfully.", map[string]interface{}{"user": user.View()})
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveUser(r.Context(), r.PathValue("userID")); err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully.", nil)
}
