package domain

// User holds the account fields this service reads or mutates. Accounts are
// created and authenticated by the auth collaborator; the directory only
// maintains the hearts set.
type User struct {
	ID     string
	Name   string
	Email  string
	Hearts []string
}

// HasHeart reports whether the given store is in the user's favorites.
func (u *User) HasHeart(storeID string) bool {
	for _, id := range u.Hearts {
		if id == storeID {
			return true
		}
	}
	return false
}
