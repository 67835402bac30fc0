// Package catalog_repo provides PostgreSQL implementations for master-data
// repositories: customers, products, work stations and routes.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// SearchFunc builds the WHERE condition for a free-text search term.
type SearchFunc func(term string) squirrel.Sqlizer

// BaseCatalogRepo provides common CRUD operations over one table whose rows
// map onto T through "db" tags. Embed it in concrete repositories.
type BaseCatalogRepo[T any] struct {
	txm          *postgres.TxManager
	tableName    string
	entityName   string
	selectCols   []string
	defaultOrder string
	search       SearchFunc
	newFn        func() T
}

// NewBaseCatalogRepo creates a new base repository.
func NewBaseCatalogRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txm:          txm,
		tableName:    tableName,
		entityName:   tableName,
		selectCols:   selectCols,
		defaultOrder: "created_at DESC",
		newFn:        newFn,
	}
}

// WithEntityName sets the name used in errors.
func (r *BaseCatalogRepo[T]) WithEntityName(name string) *BaseCatalogRepo[T] {
	r.entityName = name
	return r
}

// WithSearch enables case-insensitive substring search on cols.
func (r *BaseCatalogRepo[T]) WithSearch(cols ...string) *BaseCatalogRepo[T] {
	r.search = func(term string) squirrel.Sqlizer {
		pattern := "%" + term + "%"
		or := make(squirrel.Or, 0, len(cols))
		for _, c := range cols {
			or = append(or, squirrel.ILike{c: pattern})
		}
		return or
	}
	return r
}

// WithSearchFunc replaces the search condition builder.
func (r *BaseCatalogRepo[T]) WithSearchFunc(fn SearchFunc) *BaseCatalogRepo[T] {
	r.search = fn
	return r
}

// WithDefaultOrder sets the ORDER BY used when the filter has none.
func (r *BaseCatalogRepo[T]) WithDefaultOrder(orderBy string) *BaseCatalogRepo[T] {
	r.defaultOrder = orderBy
	return r
}

// TableName returns the table the repository reads and writes.
func (r *BaseCatalogRepo[T]) TableName() string {
	return r.tableName
}

// Columns returns the selected columns in table order.
func (r *BaseCatalogRepo[T]) Columns() []string {
	return r.selectCols
}

// Querier returns the transaction in ctx or the pool.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// TxManager returns the transaction manager the repository runs on.
func (r *BaseCatalogRepo[T]) TxManager() *postgres.TxManager {
	return r.txm
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.PickColumns(postgres.StructToMap(entity), r.selectCols)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, postgres.TranslateWriteError(err, r.entityName))
	}
	return nil
}

// Update writes all mapped columns except id and created_at.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(postgres.PickColumns(data, r.selectCols, "id", "created_at")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, postgres.TranslateWriteError(err, r.entityName))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, fmt.Sprint(entityID))
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
// key identifies the row in the NotFound error.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// FindAll executes a SELECT query built on the repository columns.
func (r *BaseCatalogRepo[T]) FindAll(ctx context.Context, where squirrel.Sqlizer, orderBy string) ([]T, error) {
	q := r.baseSelect().Where(where)
	if orderBy != "" {
		q = q.OrderBy(orderBy)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return items, nil
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	return r.ListWhere(ctx, filter, nil)
}

// ListWhere is List with an extra condition.
func (r *BaseCatalogRepo[T]) ListWhere(ctx context.Context, filter domain.ListFilter, extra squirrel.Sqlizer) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q, err := r.listQuery(filter, extra)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

// listQuery applies search, ID and extra filters without ordering or paging.
func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter, extra squirrel.Sqlizer) (squirrel.SelectBuilder, error) {
	q := r.baseSelect()

	if term := strings.TrimSpace(filter.Search); term != "" {
		if r.search == nil {
			return q, apperror.NewValidation("search is not supported").WithDetail("entity", r.entityName)
		}
		q = q.Where(r.search(term))
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if extra != nil {
		q = q.Where(extra)
	}
	return q, nil
}

// Exists checks if entity exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return true, nil
}

// CountBy counts rows whose column equals value.
func (r *BaseCatalogRepo[T]) CountBy(ctx context.Context, column string, value any) (int64, error) {
	return r.countWhere(ctx, r.tableName, squirrel.Eq{column: value})
}

func (r *BaseCatalogRepo[T]) countWhere(ctx context.Context, table string, where squirrel.Sqlizer) (int64, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Delete performs physical removal from the database.
// A row still referenced by a foreign key is reported as HasDependents.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.PgErrorCode(err) == postgres.CodeForeignKeyViolation {
			return apperror.NewHasDependents(r.entityName, entityID.String(), "records").WithCause(err)
		}
		return fmt.Errorf("execute delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// parseOrderBy validates "field" / "-field" against the selectable columns.
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}
