package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleCashier  Role = "cashier"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

// CanManageOrders reports whether the role may advance or reject order
// status. Customers only observe their own orders.
func (r Role) CanManageOrders() bool {
	return r == RoleAdmin || r == RoleCashier || r == RoleStaff
}

// CanVerifyPayments covers the manual verification workflow.
func (r Role) CanVerifyPayments() bool {
	return r == RoleAdmin || r == RoleCashier
}

func (r Role) CanViewReports() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Actor identifies who performs a mutation, recorded into history entries.
type Actor struct {
	ID   string
	Name string
	Role Role
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:140;uniqueIndex"`
	Name         string    `gorm:"size:140"`
	Phone        string    `gorm:"size:60"`
	Role         Role      `gorm:"type:varchar(20);index"`
	PasswordHash string    `gorm:"size:100"`
	CreatedAt    time.Time
}

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, u *User) error
}
