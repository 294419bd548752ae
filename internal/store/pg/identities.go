package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hrms.org/internal/auth"
)

const identityColumns = `password_hash, doc`

func (s *Store) CreateIdentity(ctx context.Context, id auth.Identity) error {
	doc, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("pg: encode identity: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into identities (id, email, role, mentor_assigned, password_hash, created_at, doc)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, id.ID, id.Email, string(id.Role), nullIfEmpty(id.MentorAssigned), id.PasswordHash, id.CreatedAt, doc)
	if pgCode(err) == pgUniqueViolation {
		return auth.ErrDuplicateEmail
	}
	return err
}

func (s *Store) IdentityByID(ctx context.Context, id string) (auth.Identity, error) {
	return s.identityWhere(ctx, `id = $1`, id)
}

func (s *Store) IdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	return s.identityWhere(ctx, `email = $1`, email)
}

func (s *Store) identityWhere(ctx context.Context, where string, arg any) (auth.Identity, error) {
	row := s.db.QueryRowContext(ctx, `select `+identityColumns+` from identities where `+where, arg)
	id, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Identity{}, auth.ErrIdentityNotFound
	}
	return id, err
}

func (s *Store) CountIdentities(ctx context.Context, f auth.IdentityFilter) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		select count(*) from identities
		where ($1 = '' or role = $1) and ($2 = '' or mentor_assigned = $2)
	`, string(f.Role), f.MentorID).Scan(&n)
	return n, err
}

func (s *Store) ListIdentities(ctx context.Context, f auth.IdentityFilter) ([]auth.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+identityColumns+` from identities
		where ($1 = '' or role = $1) and ($2 = '' or mentor_assigned = $2)
		order by created_at desc, id desc
		limit nullif($3::int, 0)
	`, string(f.Role), f.MentorID, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []auth.Identity
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `update identities set password_hash = $2 where id = $1`, id, hash)
	return identityUpdated(res, err)
}

func (s *Store) SetProfilePicture(ctx context.Context, id, dataURL string) error {
	res, err := s.db.ExecContext(ctx, `
		update identities set doc = jsonb_set(doc, '{profile_picture}', to_jsonb($2::text))
		where id = $1
	`, id, dataURL)
	return identityUpdated(res, err)
}

func (s *Store) SetResume(ctx context.Context, id string, r auth.Resume) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("pg: encode resume: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		update identities set doc = jsonb_set(doc, '{resume}', $2::jsonb)
		where id = $1
	`, id, doc)
	return identityUpdated(res, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row scanner) (auth.Identity, error) {
	var (
		hash string
		doc  []byte
	)
	if err := row.Scan(&hash, &doc); err != nil {
		return auth.Identity{}, err
	}
	var id auth.Identity
	if err := json.Unmarshal(doc, &id); err != nil {
		return auth.Identity{}, fmt.Errorf("pg: decode identity: %w", err)
	}
	id.PasswordHash = hash
	return id, nil
}

func identityUpdated(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
