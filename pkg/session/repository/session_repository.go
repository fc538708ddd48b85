package repository

import "time"

type SessionRepository interface {
	Get(sessionID, key string) (string, bool, error)
	Set(sessionID, key, value string) error
	Delete(sessionID string, keys ...string) error
	PurgeBefore(t time.Time) (int64, error)
}
