package domain

// AssertOwner checks that the acting user owns the resource identified by
// authorID. Pure and synchronous; callers invoke it before any owner-scoped
// mutation and map ErrNotOwner to an authorization failure.
func AssertOwner(authorID, userID string) error {
	if authorID == "" || userID == "" || authorID != userID {
		return ErrNotOwner
	}
	return nil
}
