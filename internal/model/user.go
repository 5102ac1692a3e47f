package model

// Role is the actor role carried in access tokens.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleEmployee  Role = "employee"
	RoleAnonymous Role = "anonymous"
)

// Valid reports whether r can be assigned to a registered user.
func (r Role) Valid() bool { return r == RoleGuest || r == RoleEmployee }

// User represents a registered account.  Reservations are linked to a user
// only through matching email or phone, never by a foreign key.
//
// Fields:
//
//	ID           – opaque identifier assigned by the store.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	Phone        – contact phone.
//	Role         – guest or employee.
//	PasswordHash – bcrypt hash.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}
