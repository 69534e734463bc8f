package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one database handle. Inside
// Transaction every repository is bound to the same transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Organizations OrganizationRepository
	Departments   DepartmentRepository
	Teams         TeamRepository
	Invites       InviteRepository
	OKRs          OKRRepository
	OTPs          OTPRepository
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Departments:   NewDepartmentRepository(db),
		Teams:         NewTeamRepository(db),
		Invites:       NewInviteRepository(db),
		OKRs:          NewOKRRepository(db),
		OTPs:          NewOTPRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. It commits
// when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
