package auth

// GuestCustomerID is the wire value sent as the customer id for anonymous orders.
const GuestCustomerID = "guest"

// Identity is either Guest or Authenticated(userID). The zero value is Guest.
type Identity struct {
	userID string
}

// Guest returns the anonymous identity.
func Guest() Identity {
	return Identity{}
}

// Authenticated returns the identity of a logged-in user. An empty id yields Guest.
func Authenticated(userID string) Identity {
	return Identity{userID: userID}
}

func (i Identity) IsGuest() bool {
	return i.userID == ""
}

// UserID returns the user id and true for authenticated identities.
func (i Identity) UserID() (string, bool) {
	return i.userID, i.userID != ""
}

// CustomerID is the value placed on an order: the user id, or GuestCustomerID.
func (i Identity) CustomerID() string {
	if i.IsGuest() {
		return GuestCustomerID
	}
	return i.userID
}

func (i Identity) String() string {
	if i.IsGuest() {
		return "guest"
	}
	return "user:" + i.userID
}
