package auth

// RoleAdmin may manage datasets and publish snapshots.
const RoleAdmin = "ADMIN"

// User is an account allowed onto the admin routes.
type User struct {
	ID       string
	Email    string
	Password string
	Role     string
}
