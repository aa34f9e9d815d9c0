package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, products []model.Product) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

func TestImporter_Import(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	first := createSeedFile(t, "a.csv.gz",
		seedHeader,
		"SKU-1,Old name,tour,1000,,1,",
		"SKU-2,Second,tour,2000,,2,",
	)
	second := createSeedFile(t, "b.csv.gz",
		seedHeader,
		"SKU-1,New name,tour,1500,,4,",
		"SKU-3,Third,stay,3000,,3,",
	)

	repo := new(MockProductRepository)
	repo.On("Upsert", ctx, mock.MatchedBy(func(ps []model.Product) bool {
		if len(ps) != 3 {
			return false
		}
		return ps[0].SKU == "SKU-1" && ps[0].Name == "New name" && ps[0].StockQuantity == 4 &&
			ps[1].SKU == "SKU-2" && ps[2].SKU == "SKU-3"
	})).Return(3, nil)

	n, err := NewImporter(NewFileLoader(zerolog.Nop()), repo, zerolog.Nop()).Import(ctx, []string{first, second})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	repo.AssertExpectations(t)
}

func TestImporter_Import_LoadFailureWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	good := createSeedFile(t, "good.csv.gz", seedHeader, "SKU-1,Name,tour,1000,,1,")
	repo := new(MockProductRepository)

	_, err := NewImporter(NewFileLoader(zerolog.Nop()), repo, zerolog.Nop()).
		Import(context.Background(), []string{good, "/nonexistent/seed.csv.gz"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/seed.csv.gz")
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestImporter_Import_UpsertFailure(t *testing.T) {
	ctx := context.Background()
	loader := &mockLoader{loadFunc: func(context.Context, string) ([]model.Product, error) {
		return []model.Product{{SKU: "SKU-1"}}, nil
	}}
	repo := new(MockProductRepository)
	repo.On("Upsert", ctx, mock.Anything).Return(0, errors.New("constraint violated"))

	_, err := NewImporter(loader, repo, zerolog.Nop()).Import(ctx, []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import catalog")
}

func TestImporter_Import_NoFiles(t *testing.T) {
	repo := new(MockProductRepository)

	n, err := NewImporter(&mockLoader{}, repo, zerolog.Nop()).Import(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
