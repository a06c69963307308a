package domain

type (
	UserId = int64
	Email  = string
	Phone  = string
)

// Role values mirror what the backend puts into the user record and the token.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type User struct {
	Id        UserId `json:"id"`
	Name      string `json:"name"`
	Email     Email  `json:"email"`
	Phone     Phone  `json:"phone"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	ProjectId int64  `json:"projectId"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the explicit auth state handed down to everything that talks to the
// backend: the raw token for outgoing requests plus the decoded user record.
// Nothing reads auth state from ambient storage.
type Session struct {
	Token string
	User  User
}
