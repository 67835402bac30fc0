package catalog_repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
	"prodtrack/internal/domain/catalogs/product"
	"prodtrack/internal/infrastructure/storage/postgres"
)

func newMockTxManager(t *testing.T) (pgxmock.PgxPoolIface, *postgres.TxManager) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	opts := postgres.DefaultTxOptions()
	opts.StatementTimeout = 0
	opts.LockTimeout = 0
	return mock, postgres.NewTxManagerFromBeginner(mock, opts)
}

func expectBegin(mock pgxmock.PgxPoolIface) {
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
}

func TestBaseCatalogRepo_ListQuery(t *testing.T) {
	_, txm := newMockTxManager(t)
	repo := NewCustomerRepo(txm)
	first, second := id.New(), id.New()

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no filter",
			filter:  domain.ListFilter{},
			wantSQL: "SELECT id, created_at, updated_at, name, address, city, phone FROM customers",
		},
		{
			name:     "search",
			filter:   domain.ListFilter{Search: "  acme "},
			wantSQL:  "SELECT id, created_at, updated_at, name, address, city, phone FROM customers WHERE (name ILIKE $1 OR city ILIKE $2 OR phone ILIKE $3)",
			wantArgs: []any{"%acme%", "%acme%", "%acme%"},
		},
		{
			name:     "ids",
			filter:   domain.ListFilter{IDs: []id.ID{first, second}},
			wantSQL:  "SELECT id, created_at, updated_at, name, address, city, phone FROM customers WHERE id IN ($1,$2)",
			wantArgs: []any{first, second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.listQuery(tt.filter, nil)
			if err != nil {
				t.Fatalf("listQuery failed: %v", err)
			}
			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestBaseCatalogRepo_ParseOrderBy(t *testing.T) {
	_, txm := newMockTxManager(t)
	repo := NewProductRepo(txm)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "name ASC"},
		{in: "name", want: "name ASC"},
		{in: "-created_at", want: "created_at DESC"},
		{in: "+updated_at", want: "updated_at ASC"},
		{in: "-", wantErr: true},
		{in: "name; DROP TABLE products", wantErr: true},
		{in: "password_hash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductRepo_List(t *testing.T) {
	mock, txm := newMockTxManager(t)
	repo := NewProductRepo(txm)
	now := time.Now().UTC()
	productID := id.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM (SELECT id, created_at, updated_at, name FROM products WHERE (name ILIKE $1)")).
		WithArgs("%bolt%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE (name ILIKE $1) ORDER BY name ASC, id DESC LIMIT 10 OFFSET 10")).
		WithArgs("%bolt%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "name"}).
			AddRow(productID, now, now, "M8 bolt"))

	res, err := repo.List(context.Background(), domain.ListFilter{Search: "bolt", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.TotalCount)
	require.Len(t, res.Items, 1)
	assert.Equal(t, productID, res.Items[0].ID)
	assert.Equal(t, "M8 bolt", res.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetByID_NotFound(t *testing.T) {
	mock, txm := newMockTxManager(t)
	repo := NewProductRepo(txm)
	productID := id.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, created_at, updated_at, name FROM products WHERE id = $1 LIMIT 1")).
		WithArgs(productID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "name"}))

	_, err := repo.GetByID(context.Background(), productID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
	assert.Equal(t, "product", appErr.Details["entity"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_Create_Duplicate(t *testing.T) {
	mock, txm := newMockTxManager(t)
	repo := NewProductRepo(txm)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products (created_at,id,name,updated_at) VALUES ($1,$2,$3,$4)")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "M8 bolt", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_name_key"})

	p := product.NewProduct("M8 bolt")
	err := repo.Create(context.Background(), p)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseCatalogRepo_Delete(t *testing.T) {
	tests := []struct {
		name     string
		result   pgconn.CommandTag
		err      error
		wantCode string
	}{
		{name: "deleted", result: pgxmock.NewResult("DELETE", 1)},
		{name: "missing", result: pgxmock.NewResult("DELETE", 0), wantCode: apperror.CodeNotFound},
		{name: "still referenced", err: &pgconn.PgError{Code: "23503"}, wantCode: apperror.CodeHasDependents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, txm := newMockTxManager(t)
			repo := NewWorkStationRepo(txm)
			stationID := id.New()

			exp := mock.ExpectExec(regexp.QuoteMeta("DELETE FROM work_stations WHERE id = $1")).
				WithArgs(stationID.String())
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Delete(context.Background(), stationID)
			if tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok, "expected AppError, got %v", err)
				assert.Equal(t, tt.wantCode, appErr.Code)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseCatalogRepo_Exists(t *testing.T) {
	mock, txm := newMockTxManager(t)
	repo := NewCustomerRepo(txm)
	known, unknown := id.New(), id.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM customers WHERE id = $1 LIMIT 1")).
		WithArgs(known.String()).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM customers WHERE id = $1 LIMIT 1")).
		WithArgs(unknown.String()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM customers")).
		WithArgs(known.String()).
		WillReturnError(errors.New("conn closed"))

	ok, err := repo.Exists(context.Background(), known)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), unknown)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Exists(context.Background(), known)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
