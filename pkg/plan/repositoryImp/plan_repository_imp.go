package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ego5g/turizm/entities"
	"github.com/ego5g/turizm/pkg/plan/repository"
)

type storageRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.StorageRepository { return &storageRepo{db} }

func (r *storageRepo) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var it entities.StorageItem
	err := r.db.WithContext(ctx).Where("owner = ? AND key = ?", owner, key).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return it.Value, true, nil
}

func (r *storageRepo) Set(ctx context.Context, owner, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.StorageItem{Owner: owner, Key: key, Value: value}).Error
}

func (r *storageRepo) Delete(ctx context.Context, owner, key string) error {
	return r.db.WithContext(ctx).Where("owner = ? AND key = ?", owner, key).Delete(&entities.StorageItem{}).Error
}
