package repository

import (
	"context"
	"fmt"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

const selectSponsorship = `
	SELECT id, godfather_id, godson_id, emitter_id, recipient_id, validated, created_at
	FROM sponsorships`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSponsorship(row rowScanner) (domain.Sponsorship, error) {
	var sp domain.Sponsorship
	err := row.Scan(&sp.ID, &sp.GodfatherID, &sp.GodsonID, &sp.EmitterID, &sp.RecipientID, &sp.Validated, &sp.CreatedAt)
	return sp, err
}

// CreateSponsorship relies on the (godfather_id, godson_id) unique index to
// reject a second request for the same pair, whichever side emits it.
func (r *SQLRepository) CreateSponsorship(ctx context.Context, sp domain.Sponsorship) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sponsorships (id, godfather_id, godson_id, emitter_id, recipient_id, validated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sp.ID,
		sp.GodfatherID,
		sp.GodsonID,
		sp.EmitterID,
		sp.RecipientID,
		sp.Validated,
		sp.CreatedAt,
	)
	return translate("insert sponsorship", err)
}

func (r *SQLRepository) FindSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error) {
	sp, err := scanSponsorship(r.db.QueryRowContext(ctx, selectSponsorship+` WHERE id = $1`, id))
	if err != nil {
		return nil, translate("find sponsorship", err)
	}
	return &sp, nil
}

func (r *SQLRepository) FindSponsorshipByPair(ctx context.Context, godfatherID, godsonID string) (*domain.Sponsorship, error) {
	sp, err := scanSponsorship(r.db.QueryRowContext(ctx,
		selectSponsorship+` WHERE godfather_id = $1 AND godson_id = $2`, godfatherID, godsonID))
	if err != nil {
		return nil, translate("find sponsorship by pair", err)
	}
	return &sp, nil
}

func (r *SQLRepository) ListPending(ctx context.Context, userID string, direction domain.Direction) ([]domain.Sponsorship, error) {
	column := "recipient_id"
	if direction == domain.DirectionSent {
		column = "emitter_id"
	}
	rows, err := r.db.QueryContext(ctx,
		selectSponsorship+fmt.Sprintf(` WHERE %s = $1 AND NOT validated ORDER BY created_at, id`, column), userID)
	if err != nil {
		if translated := translate("list pending", err); isNotFound(translated) {
			return nil, nil
		}
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []domain.Sponsorship
	for rows.Next() {
		sp, err := scanSponsorship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sponsorship: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// AcceptSponsorship flips validated. The partial unique index on
// godson_id WHERE validated refuses a second godfather.
// AcceptSponsorship flips validated only while it is still false, so of two
// concurrent accepts exactly one reports the change.
func (r *SQLRepository) AcceptSponsorship(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sponsorships SET validated = TRUE WHERE id = $1 AND NOT validated`, id)
	if err != nil {
		return false, translate("accept sponsorship", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate("accept sponsorship", err)
	}
	if n == 1 {
		return true, nil
	}

	// nothing flipped: either already validated or no such row
	var validated bool
	err = r.db.QueryRowContext(ctx, `SELECT validated FROM sponsorships WHERE id = $1`, id).Scan(&validated)
	if err != nil {
		return false, translate("accept sponsorship", err)
	}
	return false, nil
}

func (r *SQLRepository) DeleteSponsorship(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sponsorships WHERE id = $1`, id)
	if err != nil {
		return translate("delete sponsorship", err)
	}
	return requireAffected("delete sponsorship", res)
}

func (r *SQLRepository) ListGodchildren(ctx context.Context, godfatherID string) ([]domain.Counterpart, error) {
	return r.counterparts(ctx, "list godchildren", `
		SELECT u.id, u.first_name, u.last_name, u.tel, a.address, s.id, s.created_at
		FROM sponsorships s
		JOIN users u ON u.id = s.godson_id
		JOIN addresses a ON a.user_id = u.id
		WHERE s.godfather_id = $1 AND s.validated
		ORDER BY s.created_at, s.id`, godfatherID)
}

func (r *SQLRepository) ListGodfathers(ctx context.Context, godsonID string) ([]domain.Counterpart, error) {
	return r.counterparts(ctx, "list godfathers", `
		SELECT u.id, u.first_name, u.last_name, u.tel, a.address, s.id, s.created_at
		FROM sponsorships s
		JOIN users u ON u.id = s.godfather_id
		JOIN addresses a ON a.user_id = u.id
		WHERE s.godson_id = $1 AND s.validated
		ORDER BY s.created_at, s.id`, godsonID)
}

func (r *SQLRepository) counterparts(ctx context.Context, op, query, userID string) ([]domain.Counterpart, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		if translated := translate(op, err); isNotFound(translated) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Counterpart
	for rows.Next() {
		var c domain.Counterpart
		if err := rows.Scan(&c.UserID, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.SponsorshipID, &c.SponsorshipDate); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PartnerIDs returns everyone userID shares a sponsorship with, in any state.
func (r *SQLRepository) PartnerIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CASE WHEN godfather_id = $1 THEN godson_id ELSE godfather_id END
		FROM sponsorships
		WHERE godfather_id = $1 OR godson_id = $1`, userID)
	if err != nil {
		if translated := translate("partner ids", err); isNotFound(translated) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("partner ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("partner ids: scan: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
