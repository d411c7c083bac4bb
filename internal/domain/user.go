package domain

type User struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Name       string    `db:"name" json:"name"`
	Hash       string    `db:"password_hash" json:"-"`
	IsVerified bool      `db:"is_verified" json:"isVerified"`
	CreatedAt  string    `db:"created_at" json:"createdAt"`
	Addresses  []Address `db:"-" json:"addresses"`
}

type AdminRole string

const (
	RoleAdmin AdminRole = "Admin"
	RoleOwner AdminRole = "Owner"
)

func (r AdminRole) Valid() bool { return r == RoleAdmin || r == RoleOwner }

type Admin struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Hash      string    `db:"password_hash" json:"-"`
	Role      AdminRole `db:"role" json:"role"`
	CreatedAt string    `db:"created_at" json:"createdAt"`
}

type Address struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"-"`
	Label      string `db:"label" json:"label" validate:"max=40"`
	Line1      string `db:"line1" json:"line1" validate:"required,max=120"`
	Line2      string `db:"line2" json:"line2" validate:"max=120"`
	City       string `db:"city" json:"city" validate:"required,max=60"`
	State      string `db:"state" json:"state" validate:"required,max=60"`
	PostalCode string `db:"postal_code" json:"postalCode" validate:"required,max=12"`
	Phone      string `db:"phone" json:"phone" validate:"max=20"`
	IsDefault  bool   `db:"is_default" json:"isDefault"`
}
