package repository

import (
	"context"
	"fmt"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

// Distances are geodesic metres on the WGS-84 spheroid. DISTINCT ON keeps a
// single row per distance, the one with the lowest id.
const nearestCandidates = `
	SELECT id, first_name, activity_area, address, role, distance
	FROM (
		SELECT DISTINCT ON (distance)
		       u.id, u.first_name, u.activity_area, a.address, u.role,
		       ST_Distance(a.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, true) AS distance
		FROM users u
		JOIN addresses a ON a.user_id = u.id
		WHERE u.id <> $3 AND u.role <> $4
		ORDER BY distance, u.id
	) nearest
	ORDER BY distance, id`

func (r *SQLRepository) NearestCandidates(
	ctx context.Context,
	origin domain.Point,
	excludeUserID string,
	excludeRole domain.Role,
) ([]domain.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, nearestCandidates,
		origin.Longitude, origin.Latitude, excludeUserID, excludeRole)
	if err != nil {
		return nil, translate("nearest candidates", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.FirstName, &c.ActivityArea, &c.Address, &c.Role, &c.Distance); err != nil {
			return nil, fmt.Errorf("nearest candidates: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) DistanceTo(ctx context.Context, origin domain.Point, userID string) (float64, error) {
	var distance float64
	err := r.db.QueryRowContext(ctx, `
		SELECT ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, true)
		FROM addresses
		WHERE user_id = $3`,
		origin.Longitude, origin.Latitude, userID,
	).Scan(&distance)
	if err != nil {
		return 0, translate("distance to user", err)
	}
	return distance, nil
}
