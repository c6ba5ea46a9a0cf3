package domain

const RoleAdmin = "admin"

type User struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}
