package session

// Role is a viewer's access level resolved from their profile.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleRSM      Role = "rsm"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the known access levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRSM, RoleEmployee:
		return true
	}
	return false
}

// Store is one retail location a session may act on.
type Store struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Stores is the retail location catalog.
var Stores = []Store{
	{ID: "NCF-001", Name: "Archer", Address: "Archer, FL"},
	{ID: "NCF-002", Name: "Newberry", Address: "Newberry, FL"},
	{ID: "NCF-003", Name: "Chiefland", Address: "Chiefland, FL"},
	{ID: "NCF-004", Name: "Inverness", Address: "Inverness, FL"},
	{ID: "NCF-005", Name: "Homosassa", Address: "Homosassa, FL"},
	{ID: "NCF-006", Name: "Crystal River", Address: "Crystal River, FL"},
}

// StoreByID looks a store up in the catalog.
func StoreByID(id string) (Store, bool) {
	for _, s := range Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// Viewer gates which reports a session may read and stamps what it writes.
// It is constructed once per session and threaded explicitly; there is no
// ambient session state.
type Viewer struct {
	UserID    string
	Email     string
	Role      Role
	StoreID   string
	StoreName string
}
