package models

type Preferences struct {
	Dietary   []string `json:"dietary"`
	Allergies []string `json:"allergies"`
}

// User is the signed-in account as persisted in the session slot
type User struct {
	ID          string      `json:"id"`
	Phone       string      `json:"phone"`
	Name        *string     `json:"name"`
	Email       *string     `json:"email"`
	Preferences Preferences `json:"preferences"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name      *string
	Email     *string
	Dietary   *[]string
	Allergies *[]string
}

func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		name := *p.Name
		u.Name = &name
	}
	if p.Email != nil {
		email := *p.Email
		u.Email = &email
	}
	if p.Dietary != nil {
		u.Preferences.Dietary = append([]string{}, (*p.Dietary)...)
	}
	if p.Allergies != nil {
		u.Preferences.Allergies = append([]string{}, (*p.Allergies)...)
	}
	return u
}

// DisplayName returns the user's name, falling back to the phone number
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Phone
}
