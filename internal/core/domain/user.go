package domain

// PhoneLength is the exact length of a phone number, the user primary key.
const PhoneLength = 10

// User is an account record, stored in the users collection keyed by Phone.
type User struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Phone          string `json:"phone"`
	HashedPassword string `json:"hashedPassword"`
	TOSAgreement   bool   `json:"tosAgreement"`
}

// UserView is the outward representation of a User. It never carries the
// password digest.
type UserView struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	TOSAgreement bool   `json:"tosAgreement"`
}

// View strips the password digest.
func (u *User) View() *UserView {
	return &UserView{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		TOSAgreement: u.TOSAgreement,
	}
}
