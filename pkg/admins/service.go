// Package admins manages operator accounts. The first admin is created from
// the command line; later ones can be added by any admin over HTTP.
package admins

import (
	"context"
	"time"

	"github.com/booketlist/booketlist/pkg/auth"
	"github.com/booketlist/booketlist/pkg/database"
	"github.com/booketlist/booketlist/pkg/errcodes"
	"github.com/booketlist/booketlist/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type CreateAdminOptions struct {
	Name     string
	Email    string
	Password string
}

// CreateAdmin creates an active admin. An email already used by another admin
// is a conflict.
func (svc *Service) CreateAdmin(ctx context.Context, opts CreateAdminOptions) (*models.Admin, error) {
	email := auth.NormalizeEmail(opts.Email)

	exists, err := svc.db.NewSelect().
		Model((*models.Admin)(nil)).
		Where("adm.email = ? COLLATE NOCASE", email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.Conflict("Admin email is already registered")
	}

	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &models.Admin{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         opts.Name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	_, err = svc.db.NewInsert().Model(admin).Returning("*").Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.Conflict("Admin email is already registered")
		}
		return nil, errors.WithStack(err)
	}

	return admin, nil
}

func (svc *Service) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	admins := []*models.Admin{}
	err := svc.db.
		NewSelect().
		Model(&admins).
		Order("adm.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return admins, nil
}

func (svc *Service) CountAdmins(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().Model((*models.Admin)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}
