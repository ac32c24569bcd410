package user

import "encoding/json"

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	Locked   bool   `json:"locked"`
}

// UnmarshalJSON decodes a user payload and normalizes whatever role shape
// the server used into a single Role.
func (u *User) UnmarshalJSON(b []byte) error {
	var w struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Locked   bool   `json:"locked"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*u = User{
		ID:       w.ID,
		Email:    w.Email,
		FullName: w.FullName,
		Phone:    w.Phone,
		Locked:   w.Locked,
		Role:     NormalizeRole(b),
	}
	if u.FullName == "" {
		u.FullName = w.Name
	}
	return nil
}
