package httpapi

import (
	"net/http"

	"ticketdesk/internal/models"
	"ticketdesk/internal/service"
)

func (h *Handler) handleCreateIteration(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFromContext(r.Context())
	var req service.CreateIterationInput
	if !decodeRequest(w, r, &req) {
		return
	}
	iteration, err := h.service.CreateIteration(r.Context(), caller, req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Ticket Iteration created successfully.", map[string]interface{}{"ticket_iteration": iteration})
}

func (h *Handler) handleListIterations(w http.ResponseWriter, r *http.Request) {
	var (
		iterations []models.TicketIteration
		err        error
	)
	if ticketID := r.URL.Query().Get("ticket_id"); ticketID != "" {
		iterations, err = h.service.ListTicketIterations(r.Context(), ticketID)
	} else {
		iterations, err = h.service.ListIterations(r.Context())
	}
	if err != nil {
		h.respond(w, r, err)
		return
	}
	if iterations == nil {
		iterations = []models.TicketIteration{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"ticket_iterations": iterations})
}

func (h *Handler) handleGetIteration(w http.ResponseWriter, r *http.Request) {
	iteration, err := h.service.GetIteration(r.Context(), r.PathValue("ticketIterationID"))
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"ticket_iteration": iteration})
}

func (h *Handler) handleUpdateIteration(w http.ResponseWriter, r *http.Request) {
	var req service.IterationPatch
	if !decodeRequest(w, r, &req) {
		return
	}
	iteration, err := h.service.UpdateIteration(r.Context(), r.PathValue("ticketIterationID"), req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Ticket Iteration updated successfully.", map[string]interface{}{"ticket_iteration": iteration})
}

func (h *Handler) handleDeleteIteration(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveIteration(r.Context(), r.PathValue("ticketIterationID")); err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Ticket Iteration deleted successfully.", nil)
}
