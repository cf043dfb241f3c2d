package models

type RelationshipState string

const (
	RelationshipNone        RelationshipState = "NONE"
	RelationshipPendingSent RelationshipState = "PENDING_SENT"
	RelationshipFriends     RelationshipState = "FRIENDS"
)

func (s RelationshipState) Valid() bool {
	switch s {
	case RelationshipNone, RelationshipPendingSent, RelationshipFriends:
		return true
	}
	return false
}

type Friend struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// FriendRequest is a pending edge. OtherUser is the party that is not the
// viewer: the recipient for outgoing requests, the requester for incoming.
type FriendRequest struct {
	RequesterID int64  `json:"requester_id"`
	OtherUser   Friend `json:"other_user"`
	RequestedAt string `json:"requested_at"`
}
