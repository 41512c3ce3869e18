package httpapi

import (
	"net/http"
	"strings"

	"ticketdesk/internal/models"
	"ticketdesk/internal/service"
)

type createTicketRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	UserID      string `json:"user_id"`
}

func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFromContext(r.Context())
	var req createTicketRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ownerID := strings.TrimSpace(req.UserID)
	if ownerID == "" {
		ownerID = caller.ID
	}
	if ownerID != caller.ID {
		if _, err := h.service.RequireAdmin(r.Context(), caller); err != nil {
			h.respond(w, r, err)
			return
		}
	}

	ticket, err := h.service.CreateTicket(r.Context(), service.CreateTicketInput{
		Description: req.Description,
		Priority:    req.Priority,
		UserID:      ownerID,
	})
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Ticket created successfully.", map[string]interface{}{"ticket": ticket})
}

func (h *Handler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.ListTickets(r.Context())
	if err != nil {
		h.respond(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"tickets": tickets})
}

func (h *Handler) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, _ := ticketFromContext(r.Context())
	detail, err := h.service.GetTicket(r.Context(), ticket.TicketID)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"ticket": detail})
}

func (h *Handler) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticket, _ := ticketFromContext(r.Context())
	var req service.TicketPatch
	if !decodeRequest(w, r, &req) {
		return
	}
	updated, err := h.service.UpdateTicket(r.Context(), ticket.TicketID, req)
	if err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Ticket updated successfully.", map[string]interface{}{"ticket": updated})
}

func (h *Handler) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticket, _ := ticketFromContext(r.Context())
	if err := h.service.RemoveTicket(r.Context(), ticket.TicketID); err != nil {
		h.respond(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Ticket deleted successfully.", nil)
}
