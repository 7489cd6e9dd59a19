package models

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Bio        string `json:"bio,omitempty"`
	JoinedDate string `json:"joined_date,omitempty"`
}
