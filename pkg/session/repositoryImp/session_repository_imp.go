package repositoryImp

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cooperativa/entities"
	"cooperativa/pkg/session/repository"
)

type sessionRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.SessionRepository { return &sessionRepo{db} }

func (r *sessionRepo) Get(sessionID, key string) (string, bool, error) {
	var v entities.SessionValue
	err := r.db.Where("session_id = ? AND item_key = ?", sessionID, key).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v.Value, true, nil
}

func (r *sessionRepo) Set(sessionID, key, value string) error {
	v := entities.SessionValue{SessionID: sessionID, Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&v).Error
}

func (r *sessionRepo) Delete(sessionID string, keys ...string) error {
	q := r.db.Where("session_id = ?", sessionID)
	if len(keys) > 0 {
		q = q.Where("item_key IN ?", keys)
	}
	return q.Delete(&entities.SessionValue{}).Error
}

func (r *sessionRepo) PurgeBefore(t time.Time) (int64, error) {
	res := r.db.Where("updated_at < ?", t).Delete(&entities.SessionValue{})
	return res.RowsAffected, res.Error
}
