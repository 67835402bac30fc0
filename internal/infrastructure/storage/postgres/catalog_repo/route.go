package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/samber/lo"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
	"prodtrack/internal/domain/catalogs/route"
	"prodtrack/internal/infrastructure/storage/postgres"
)

const routeStepsTable = "route_steps"

var routeStepColumns = postgres.ExtractDBColumns[route.Step]()

// RouteRepo implements route.Repository. Steps live in route_steps and are
// written with COPY in the same transaction as the route row.
type RouteRepo struct {
	*BaseCatalogRepo[*route.Route]
	inserter *postgres.BatchInserter
}

// NewRouteRepo creates a new route repository.
func NewRouteRepo(txm *postgres.TxManager) *RouteRepo {
	return &RouteRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"routes",
			postgres.ExtractDBColumns[route.Route](),
			func() *route.Route { return &route.Route{} },
		).WithEntityName(route.EntityName).WithSearch("name").WithDefaultOrder("name ASC"),
		inserter: postgres.NewBatchInserter(txm),
	}
}

var _ route.Repository = (*RouteRepo)(nil)

// Create inserts the route and its steps. Must run inside a transaction.
func (r *RouteRepo) Create(ctx context.Context, rt *route.Route) error {
	if err := r.BaseCatalogRepo.Create(ctx, rt); err != nil {
		return err
	}

	rows := lo.Map(rt.Steps, func(s route.Step, _ int) []any {
		return []any{s.ID, rt.ID, s.StationID, s.Sequence}
	})
	if _, err := r.inserter.CopyFromSlice(ctx, routeStepsTable, routeStepColumns, rows); err != nil {
		return fmt.Errorf("insert route steps: %w", postgres.TranslateWriteError(err, "route step"))
	}
	return nil
}

// GetByID returns the route with its steps in sequence order.
func (r *RouteRepo) GetByID(ctx context.Context, routeID id.ID) (*route.Route, error) {
	rt, err := r.BaseCatalogRepo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	steps, err := r.loadSteps(ctx, []id.ID{routeID})
	if err != nil {
		return nil, err
	}
	rt.Steps = steps
	return rt, nil
}

// List returns a page of routes, each with its steps.
func (r *RouteRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*route.Route], error) {
	res, err := r.BaseCatalogRepo.List(ctx, filter)
	if err != nil || len(res.Items) == 0 {
		return res, err
	}

	steps, err := r.loadSteps(ctx, lo.Map(res.Items, func(rt *route.Route, _ int) id.ID { return rt.ID }))
	if err != nil {
		return res, err
	}
	byRoute := lo.GroupBy(steps, func(s route.Step) id.ID { return s.RouteID })
	for _, rt := range res.Items {
		rt.Steps = byRoute[rt.ID]
	}
	return res, nil
}

func (r *RouteRepo) loadSteps(ctx context.Context, routeIDs []id.ID) ([]route.Step, error) {
	sql, args, err := r.Builder().
		Select(routeStepColumns...).
		From(routeStepsTable).
		Where(squirrel.Eq{"route_id": routeIDs}).
		OrderBy("route_id", "sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build steps query: %w", err)
	}

	steps := []route.Step{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &steps, sql, args...); err != nil {
		return nil, fmt.Errorf("load route steps: %w", err)
	}
	return steps, nil
}

// CountByProduct counts routes of a product.
func (r *RouteRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	return r.CountBy(ctx, "product_id", productID)
}

// CountByStation counts route steps performed at a work station.
func (r *RouteRepo) CountByStation(ctx context.Context, stationID id.ID) (int64, error) {
	return r.countWhere(ctx, routeStepsTable, squirrel.Eq{"station_id": stationID})
}
