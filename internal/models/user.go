package models

// StepSubmission is a single step count reported by a user.
// Date is an ISO-8601 UTC timestamp and identifies the submission within a user's list.
type StepSubmission struct {
	Date  string `bson:"date" json:"date"`
	Steps int    `bson:"steps" json:"steps"`
}

// User is the public projection of a stored user (no token).
type User struct {
	Name    string           `bson:"name" json:"name"`
	Team    string           `bson:"team" json:"team"`
	IsAdmin bool             `bson:"isAdmin" json:"isAdmin"`
	Steps   []StepSubmission `bson:"steps" json:"steps"` // most recent first
	// TotalSteps is derived from Steps and recomputed on load.
	TotalSteps int `bson:"totalSteps" json:"totalSteps"`
}

// UserWithToken is the stored record. Only admins and the store itself see it.
type UserWithToken struct {
	User  `bson:",inline"`
	Token string `bson:"token" json:"token"`
}

// SumSteps returns the sum of all submissions.
func SumSteps(steps []StepSubmission) int {
	total := 0
	for _, s := range steps {
		total += s.Steps
	}
	return total
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	out.Steps = make([]StepSubmission, len(u.Steps))
	copy(out.Steps, u.Steps)
	return out
}

// Clone returns a deep copy of u.
func (u UserWithToken) Clone() UserWithToken {
	return UserWithToken{User: u.User.Clone(), Token: u.Token}
}

// Public strips the token.
func (u UserWithToken) Public() User {
	return u.User.Clone()
}
