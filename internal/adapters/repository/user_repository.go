package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

const selectUser = `
	SELECT u.id, u.first_name, u.last_name, u.tel, u.email, u.activity_area,
	       u.role, u.push_token, u.created_at,
	       a.address, a.city, a.zip_code,
	       ST_X(a.location::geometry), ST_Y(a.location::geometry)
	FROM users u
	LEFT JOIN addresses a ON a.user_id = u.id`

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, translate("find user", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user                  domain.User
		street, city, zipCode sql.NullString
		lon, lat              sql.NullFloat64
	)
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Phone, &user.Email, &user.ActivityArea,
		&user.Role, &user.PushToken, &user.CreatedAt,
		&street, &city, &zipCode, &lon, &lat,
	)
	if err != nil {
		return nil, err
	}
	if street.Valid {
		user.Address = &domain.Address{
			Street:   street.String,
			City:     city.String,
			ZipCode:  zipCode.String,
			Location: domain.Point{Longitude: lon.Float64, Latitude: lat.Float64},
		}
	}
	return &user, nil
}

// CreateUser inserts the user and its address in one transaction.
func (r *SQLRepository) CreateUser(ctx context.Context, user domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, tel, email, activity_area, role, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Email,
		user.ActivityArea,
		user.Role,
		user.PushToken,
		user.CreatedAt,
	)
	if err != nil {
		return translate("insert user", err)
	}

	if user.Address != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO addresses (user_id, address, city, zip_code, location)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography)`,
			user.ID,
			user.Address.Street,
			user.Address.City,
			user.Address.ZipCode,
			user.Address.Location.Longitude,
			user.Address.Location.Latitude,
		)
		if err != nil {
			return translate("insert address", err)
		}
	}

	return tx.Commit()
}

func (r *SQLRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE UPPER(email) = UPPER($1))`, email).Scan(&taken)
	if err != nil {
		return false, translate("check email", err)
	}
	return taken, nil
}

func (r *SQLRepository) UpdatePushToken(ctx context.Context, userID, token string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET push_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return translate("update push token", err)
	}
	return requireAffected("update push token", res)
}

// UpdateUser rewrites the profile and upserts the address in one transaction.
func (r *SQLRepository) UpdateUser(ctx context.Context, user domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, tel = $4, email = $5, activity_area = $6
		WHERE id = $1`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Email,
		user.ActivityArea,
	)
	if err != nil {
		return translate("update user", err)
	}
	if err := requireAffected("update user", res); err != nil {
		return err
	}

	if user.Address != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO addresses (user_id, address, city, zip_code, location)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography)
			ON CONFLICT (user_id) DO UPDATE
			SET address = EXCLUDED.address,
			    city = EXCLUDED.city,
			    zip_code = EXCLUDED.zip_code,
			    location = EXCLUDED.location`,
			user.ID,
			user.Address.Street,
			user.Address.City,
			user.Address.ZipCode,
			user.Address.Location.Longitude,
			user.Address.Location.Latitude,
		)
		if err != nil {
			return translate("upsert address", err)
		}
	}

	return tx.Commit()
}

// DeleteUser relies on ON DELETE CASCADE for the address and sponsorships.
func (r *SQLRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate("delete user", err)
	}
	return requireAffected("delete user", res)
}
