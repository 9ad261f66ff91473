package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
)

// Profiles

func (r *Repository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*discover.OwnerProfile, error) {
	profiles := make(map[uuid.UUID]*discover.OwnerProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, display_name, handle, avatar_url, bio
		FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, r.handlePostgresError("get profiles", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p discover.OwnerProfile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Handle, &p.AvatarURL, &p.Bio); err != nil {
			return nil, r.handlePostgresError("scan profile", err)
		}
		profiles[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get profiles", err)
	}
	return profiles, nil
}

// UpsertProfile stores a user profile. The identity provider owns users;
// this exists for seeding and tests.
func (r *Repository) UpsertProfile(ctx context.Context, p *discover.OwnerProfile) error {
	query := `
		INSERT INTO users (id, display_name, handle, avatar_url, bio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			handle       = EXCLUDED.handle,
			avatar_url   = EXCLUDED.avatar_url,
			bio          = EXCLUDED.bio,
			updated_at   = now()`
	if _, err := r.db.Exec(ctx, query, p.ID, p.DisplayName, p.Handle, p.AvatarURL, p.Bio); err != nil {
		return r.handlePostgresError("upsert profile", err)
	}
	return nil
}
