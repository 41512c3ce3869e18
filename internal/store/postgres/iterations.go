package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/jackc/pgx/v5"
)

const iterationColumns = `iteration_id, ticket_id, username, created_at, status, comment`

func scanIteration(row pgx.Row) (models.TicketIteration, error) {
	var iteration models.TicketIteration
	var status sql.NullString
	if err := row.Scan(&iteration.IterationID, &iteration.TicketID, &iteration.Username, &iteration.Timestamp, &status, &iteration.Comment); err != nil {
		return models.TicketIteration{}, err
	}
	iteration.Status = nullStringPtr(status)
	return iteration, nil
}

func (s *Store) CreateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO ticket_iterations (iteration_id, ticket_id, username, created_at, status, comment)
		SELECT $1::uuid, t.ticket_id, $3::text, $4::timestamptz, $5::text, $6::text
		FROM tickets t
		WHERE t.ticket_id = $2 AND t.status <> $7
		RETURNING `+iterationColumns,
		iteration.IterationID, iteration.TicketID, iteration.Username, iteration.Timestamp, nullIfEmpty(iteration.Status), iteration.Comment, models.StatusClosed)
	created, err := scanIteration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TicketIteration{}, s.ticketWriteError(ctx, iteration.TicketID)
		}
		return models.TicketIteration{}, err
	}
	return created, nil
}

func (s *Store) GetIteration(ctx context.Context, iterationID string) (models.TicketIteration, error) {
	iteration, err := scanIteration(s.pool.QueryRow(ctx, `SELECT `+iterationColumns+` FROM ticket_iterations WHERE iteration_id = $1`, iterationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TicketIteration{}, store.ErrIterationNotFound
		}
		return models.TicketIteration{}, err
	}
	return iteration, nil
}

func (s *Store) ListIterations(ctx context.Context) ([]models.TicketIteration, error) {
	return s.queryIterations(ctx, `SELECT `+iterationColumns+` FROM ticket_iterations ORDER BY created_at, iteration_id`)
}

func (s *Store) ListIterationsByTicket(ctx context.Context, ticketID string) ([]models.TicketIteration, error) {
	return s.queryIterations(ctx, `SELECT `+iterationColumns+` FROM ticket_iterations WHERE ticket_id = $1 ORDER BY created_at, iteration_id`, ticketID)
}

func (s *Store) queryIterations(ctx context.Context, query string, args ...interface{}) ([]models.TicketIteration, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var iterations []models.TicketIteration
	for rows.Next() {
		iteration, err := scanIteration(rows)
		if err != nil {
			return nil, err
		}
		iterations = append(iterations, iteration)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return iterations, nil
}

func (s *Store) UpdateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE ticket_iterations i
		SET comment = $2, status = $3
		FROM tickets t
		WHERE i.iteration_id = $1 AND t.ticket_id = i.ticket_id AND t.status <> $4
		RETURNING i.iteration_id, i.ticket_id, i.username, i.created_at, i.status, i.comment
	`, iteration.IterationID, iteration.Comment, nullIfEmpty(iteration.Status), models.StatusClosed)
	updated, err := scanIteration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := s.GetIteration(ctx, iteration.IterationID)
			if getErr != nil {
				return models.TicketIteration{}, getErr
			}
			return models.TicketIteration{}, s.ticketWriteError(ctx, existing.TicketID)
		}
		return models.TicketIteration{}, err
	}
	return updated, nil
}

func (s *Store) DeleteIteration(ctx context.Context, iterationID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ticket_iterations WHERE iteration_id = $1`, iterationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrIterationNotFound
	}
	return nil
}
