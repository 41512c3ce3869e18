package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"
)

// Store keeps every record in process memory. Lists return insertion order.
// It backs STORE_DRIVER=memory and the HTTP end-to-end tests.
type Store struct {
	mu sync.RWMutex

	users     map[string]models.User
	userOrder []string

	tickets       map[string]models.Ticket
	ticketOrder   []string
	recordNumbers map[string]string

	iterations     map[string]models.TicketIteration
	iterationOrder []string
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		tickets:       make(map[string]models.Ticket),
		recordNumbers: make(map[string]string),
		iterations:    make(map[string]models.TicketIteration),
	}
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userTaken(user.UserID, user.Username, user.Email) {
		return models.User{}, store.ErrDuplicateUser
	}
	s.users[user.UserID] = user
	s.userOrder = append(s.userOrder, user.UserID)
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if user := s.users[id]; strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserID]; !ok {
		return models.User{}, store.ErrUserNotFound
	}
	if s.userTaken(user.UserID, user.Username, user.Email) {
		return models.User{}, store.ErrDuplicateUser
	}
	s.users[user.UserID] = user
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	for _, ticket := range s.tickets {
		if ticket.UserID == userID {
			return store.ErrUserHasTickets
		}
	}
	delete(s.users, userID)
	s.userOrder = removeID(s.userOrder, userID)
	return nil
}

// userTaken reports whether another user already holds the username or email.
func (s *Store) userTaken(userID, username, email string) bool {
	for id, existing := range s.users {
		if id == userID {
			continue
		}
		if existing.Username == username || strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[ticket.UserID]; !ok {
		return models.Ticket{}, store.ErrUserNotFound
	}
	if _, taken := s.recordNumbers[ticket.RecordNumber]; taken {
		return models.Ticket{}, store.ErrDuplicateRecordNumber
	}
	ticket.Resolution = copyString(ticket.Resolution)
	s.tickets[ticket.TicketID] = ticket
	s.ticketOrder = append(s.ticketOrder, ticket.TicketID)
	s.recordNumbers[ticket.RecordNumber] = ticket.TicketID
	return ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickets := make([]models.Ticket, 0, len(s.ticketOrder))
	for _, id := range s.ticketOrder {
		tickets = append(tickets, s.tickets[id])
	}
	return tickets, nil
}

func (s *Store) LatestRecordNumber(ctx context.Context, datePrefix string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []string
	for recordNumber := range s.recordNumbers {
		if strings.HasPrefix(recordNumber, datePrefix+"-") {
			matches = append(matches, recordNumber)
		}
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true, nil
}

func (s *Store) UpdateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tickets[ticket.TicketID]
	if !ok {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	if current.IsClosed() {
		return models.Ticket{}, store.ErrTicketClosed
	}
	current.Description = ticket.Description
	current.Priority = ticket.Priority
	current.Status = ticket.Status
	current.Resolution = copyString(ticket.Resolution)
	current.UpdatedAt = ticket.UpdatedAt
	s.tickets[current.TicketID] = current
	return current, nil
}

func (s *Store) DeleteTicket(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return store.ErrTicketNotFound
	}
	for _, id := range append([]string(nil), s.iterationOrder...) {
		if s.iterations[id].TicketID == ticketID {
			delete(s.iterations, id)
			s.iterationOrder = removeID(s.iterationOrder, id)
		}
	}
	delete(s.tickets, ticketID)
	delete(s.recordNumbers, ticket.RecordNumber)
	s.ticketOrder = removeID(s.ticketOrder, ticketID)
	return nil
}

func (s *Store) CreateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTicketOpen(iteration.TicketID); err != nil {
		return models.TicketIteration{}, err
	}
	iteration.Status = copyString(iteration.Status)
	s.iterations[iteration.IterationID] = iteration
	s.iterationOrder = append(s.iterationOrder, iteration.IterationID)
	return iteration, nil
}

func (s *Store) GetIteration(ctx context.Context, iterationID string) (models.TicketIteration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iteration, ok := s.iterations[iterationID]
	if !ok {
		return models.TicketIteration{}, store.ErrIterationNotFound
	}
	return iteration, nil
}

func (s *Store) ListIterations(ctx context.Context) ([]models.TicketIteration, error) {
	return s.listIterations(func(models.TicketIteration) bool { return true }), nil
}

func (s *Store) ListIterationsByTicket(ctx context.Context, ticketID string) ([]models.TicketIteration, error) {
	return s.listIterations(func(iteration models.TicketIteration) bool {
		return iteration.TicketID == ticketID
	}), nil
}

func (s *Store) listIterations(keep func(models.TicketIteration) bool) []models.TicketIteration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iterations := make([]models.TicketIteration, 0, len(s.iterationOrder))
	for _, id := range s.iterationOrder {
		if iteration := s.iterations[id]; keep(iteration) {
			iterations = append(iterations, iteration)
		}
	}
	return iterations
}

func (s *Store) UpdateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.iterations[iteration.IterationID]
	if !ok {
		return models.TicketIteration{}, store.ErrIterationNotFound
	}
	if err := s.checkTicketOpen(current.TicketID); err != nil {
		return models.TicketIteration{}, err
	}
	current.Comment = iteration.Comment
	current.Status = copyString(iteration.Status)
	s.iterations[current.IterationID] = current
	return current, nil
}

func (s *Store) DeleteIteration(ctx context.Context, iterationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.iterations[iterationID]; !ok {
		return store.ErrIterationNotFound
	}
	delete(s.iterations, iterationID)
	s.iterationOrder = removeID(s.iterationOrder, iterationID)
	return nil
}

func (s *Store) checkTicketOpen(ticketID string) error {
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return store.ErrTicketNotFound
	}
	if ticket.IsClosed() {
		return store.ErrTicketClosed
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
