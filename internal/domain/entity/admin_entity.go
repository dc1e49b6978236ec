package entity

import "time"

// Admin is a privileged identity bound 1:1 to a User. The linked User hosts
// the admin's OTP state; deleting the Admin cascades to that User.
type Admin struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	UserID    int64     `json:"userId"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
