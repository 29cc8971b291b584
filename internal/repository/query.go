package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownColumn 过滤或排序字段不在白名单内
var ErrUnknownColumn = errors.New("不支持的查询字段")

// Query 通用查询条件：仅等值过滤 + 单字段排序 + 分页
type Query struct {
	Filters map[string]any // 列名 → 值，nil 值匹配 IS NULL
	OrderBy string
	Desc    bool
	Offset  int
	Limit   int // <= 0 表示不分页
}

// Where 追加一个等值条件，返回自身便于链式调用
func (q Query) Where(column string, value any) Query {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[column] = value
	q.Filters = filters
	return q
}

// columnSet 某个集合允许参与查询的列
type columnSet struct {
	allowed      map[string]bool
	defaultOrder string
}

func newColumnSet(defaultOrder string, cols ...string) columnSet {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return columnSet{allowed: m, defaultOrder: defaultOrder}
}

func (q Query) validate(cols columnSet) error {
	for k := range q.Filters {
		if !cols.allowed[k] {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
	}
	if q.OrderBy != "" && !cols.allowed[q.OrderBy] {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, q.OrderBy)
	}
	return nil
}

// find 按 Query 查询任意模型，返回当前页与总数
func find[T any](ctx context.Context, db *gorm.DB, q Query, cols columnSet) ([]T, int64, error) {
	if err := q.validate(cols); err != nil {
		return nil, 0, err
	}

	base := db.WithContext(ctx).Model(new(T))
	if len(q.Filters) > 0 {
		base = base.Where(q.Filters)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt := base
	if q.OrderBy != "" {
		stmt = stmt.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	} else if cols.defaultOrder != "" {
		stmt = stmt.Order(cols.defaultOrder)
	}
	if q.Limit > 0 {
		stmt = stmt.Offset(q.Offset).Limit(q.Limit)
	}

	var out []T
	if err := stmt.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
