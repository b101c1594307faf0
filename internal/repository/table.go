package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Table is a gorm-backed store for one entity table. Associations are
// loaded through preloads and never written through the parent.
type Table[T any] struct {
	db       *gorm.DB
	order    string
	preloads []string
}

func NewTable[T any](db *gorm.DB, order string, preloads ...string) *Table[T] {
	return &Table[T]{db: db, order: order, preloads: preloads}
}

func (t *Table[T]) query(ctx context.Context) *gorm.DB {
	q := t.db.WithContext(ctx)
	for _, p := range t.preloads {
		q = q.Preload(p)
	}
	return q
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	q := t.query(ctx)
	if t.order != "" {
		q = q.Order(t.order)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (t *Table[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var item T
	if err := t.query(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *Table[T]) Create(ctx context.Context, item *T) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (t *Table[T]) Update(ctx context.Context, item *T) error {
	res := t.db.WithContext(ctx).Model(item).
		Select("*").
		Omit(clause.Associations, "ID", "CreatedAt").
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := t.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
