package domain

// User is a bot user who may submit posts once approved.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Surname    string
	Name       string
	Patronymic string
	Phone      string
	IsApproved bool
	IsAdmin    bool
}

// CanPost reports whether the user may submit and schedule posts.
func (u *User) CanPost() bool {
	return u.IsApproved || u.IsAdmin
}
