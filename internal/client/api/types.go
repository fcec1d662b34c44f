package api

import "time"

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult carries the login/register response pair.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LocationRecord is the backend entity for a place, keyed by the place's
// external identifier.
type LocationRecord struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CommentAuthor is the author snapshot embedded in each comment.
type CommentAuthor struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Comment is one entry of a location's comment thread.
type Comment struct {
	ID        string        `json:"_id"`
	Text      string        `json:"comment"`
	CreatedBy CommentAuthor `json:"createdBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

type authEnvelope struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type locationEnvelope struct {
	Location *LocationRecord `json:"location"`
}

type commentsEnvelope struct {
	Comments []Comment `json:"comments"`
}

type commentEnvelope struct {
	Comment *Comment `json:"comment"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
