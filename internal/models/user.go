package models

type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	Status         string `json:"status,omitempty"`
	FavoriteGameID *int64 `json:"favorite_game_id,omitempty"`
}

// AsFriend projects the user into the lightweight list form.
func (u User) AsFriend() Friend {
	return Friend{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

type UpdateProfileParams struct {
	Name           string `json:"name" validate:"required,max=64"`
	Status         string `json:"status,omitempty" validate:"max=140"`
	FavoriteGameID *int64 `json:"favorite_game_id,omitempty" validate:"omitempty,gt=0"`
}

type Credential struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func (c Credential) Present() bool {
	return c.Token != ""
}
