package storelens

import (
	"context"

	"github.com/pagegrid/storelens/internal/domain/query/request"
	"github.com/pagegrid/storelens/internal/domain/query/result"
	healthuc "github.com/pagegrid/storelens/internal/usecase/health"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
)

// --- queryUseCase mock ---

type mockQueryUC struct {
	executeFn func(ctx context.Context, in request.Input) (result.Result, error)
}

func (m *mockQueryUC) Execute(ctx context.Context, in request.Input) (result.Result, error) {
	return m.executeFn(ctx, in)
}

// --- schemaUseCase mock ---

type mockSchemaUC struct {
	listFn   func(ctx context.Context) []schemauc.CollectionSummary
	detailFn func(ctx context.Context, name string) (schemauc.CollectionDetail, error)
}

func (m *mockSchemaUC) List(ctx context.Context) []schemauc.CollectionSummary {
	return m.listFn(ctx)
}

func (m *mockSchemaUC) Detail(ctx context.Context, name string) (schemauc.CollectionDetail, error) {
	return m.detailFn(ctx, name)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

// --- helpers ---

func testClient(query queryUseCase, schema schemaUseCase, health healthUseCase) *Client {
	return &Client{
		query:  query,
		schema: schema,
		health: health,
	}
}
