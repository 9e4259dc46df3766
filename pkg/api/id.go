package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	userIDPrefix = "user_"
	listIDPrefix = "list_"
	taskIDPrefix = "task_"
)

var (
	userIDPattern = regexp.MustCompile(`^user_[a-zA-Z0-9]{24}$`)
	listIDPattern = regexp.MustCompile(`^list_[a-zA-Z0-9]{24}$`)
	taskIDPattern = regexp.MustCompile(`^task_[a-zA-Z0-9]{24}$`)
)

// NewUserID generates a new user ID with the "user_" prefix followed by
// 24 cryptographically random alphanumeric characters.
func NewUserID() string {
	return userIDPrefix + randomAlphanumeric(idLength)
}

// NewListID generates a new task-list ID with the "list_" prefix.
func NewListID() string {
	return listIDPrefix + randomAlphanumeric(idLength)
}

// NewTaskID generates a new task ID with the "task_" prefix.
func NewTaskID() string {
	return taskIDPrefix + randomAlphanumeric(idLength)
}

// ValidateUserID checks whether the given string is a well-formed user ID.
func ValidateUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// ValidateListID checks whether the given string is a well-formed list ID.
func ValidateListID(id string) bool {
	return listIDPattern.MatchString(id)
}

// ValidateTaskID checks whether the given string is a well-formed task ID.
func ValidateTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
