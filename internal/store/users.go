package store

import (
	"context"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
)

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}
