package models

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserPatch holds optional fields for a partial update.
type UserPatch struct {
	Name  *string
	Email *string
}
