package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `ticket_id, record_number, description, priority, user_id, status, resolution, created_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var ticket models.Ticket
	var resolution sql.NullString
	if err := row.Scan(&ticket.TicketID, &ticket.RecordNumber, &ticket.Description, &ticket.Priority, &ticket.UserID, &ticket.Status, &resolution, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return models.Ticket{}, err
	}
	ticket.Resolution = nullStringPtr(resolution)
	return ticket, nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tickets (ticket_id, record_number, description, priority, user_id, status, resolution, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+ticketColumns,
		ticket.TicketID, ticket.RecordNumber, ticket.Description, ticket.Priority, ticket.UserID, ticket.Status, nullIfEmpty(ticket.Resolution), ticket.CreatedAt, ticket.UpdatedAt)
	created, err := scanTicket(row)
	if err != nil {
		code, constraint := pgErrorCode(err)
		switch {
		case code == pgUniqueViolation && constraint == recordNumberConstraint:
			return models.Ticket{}, store.ErrDuplicateRecordNumber
		case code == pgForeignKeyViolation:
			return models.Ticket{}, store.ErrUserNotFound
		}
		return models.Ticket{}, err
	}
	return created, nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	ticket, err := scanTicket(s.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = $1`, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, store.ErrTicketNotFound
		}
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at, record_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) LatestRecordNumber(ctx context.Context, datePrefix string) (string, bool, error) {
	var recordNumber string
	row := s.pool.QueryRow(ctx, `
		SELECT record_number
		FROM tickets
		WHERE record_number LIKE $1 || '-%'
		ORDER BY record_number DESC
		LIMIT 1
	`, datePrefix)
	if err := row.Scan(&recordNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return recordNumber, true, nil
}

func (s *Store) UpdateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE tickets
		SET description = $2, priority = $3, status = $4, resolution = $5, updated_at = $6
		WHERE ticket_id = $1 AND status <> $7
		RETURNING `+ticketColumns,
		ticket.TicketID, ticket.Description, ticket.Priority, ticket.Status, nullIfEmpty(ticket.Resolution), ticket.UpdatedAt, models.StatusClosed)
	updated, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, s.ticketWriteError(ctx, ticket.TicketID)
		}
		return models.Ticket{}, err
	}
	return updated, nil
}

func (s *Store) DeleteTicket(ctx context.Context, ticketID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM ticket_iterations WHERE ticket_id = $1`, ticketID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM tickets WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = store.ErrTicketNotFound
		return err
	}
	return tx.Commit(ctx)
}

// ticketWriteError explains why a guarded write on a ticket matched no row.
func (s *Store) ticketWriteError(ctx context.Context, ticketID string) error {
	var status string
	row := s.pool.QueryRow(ctx, `SELECT status FROM tickets WHERE ticket_id = $1`, ticketID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrTicketNotFound
		}
		return err
	}
	if status == models.StatusClosed {
		return store.ErrTicketClosed
	}
	return store.ErrTicketNotFound
}
