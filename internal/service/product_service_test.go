package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{jejuTour(), busanStay()}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.Product
		mockError      error
		expectError    bool
	}{
		{
			name:          "Success with valid pagination",
			limit:         10,
			offset:        0,
			expectedLimit: 10,
			mockReturn:    testProducts,
		},
		{
			name:          "Zero limit uses the default page size",
			limit:         0,
			expectedLimit: 20,
			mockReturn:    testProducts,
		},
		{
			name:          "Limit is capped",
			limit:         500,
			expectedLimit: 100,
			mockReturn:    testProducts,
		},
		{
			name:           "Negative offset starts at zero",
			limit:          5,
			offset:         -3,
			expectedLimit:  5,
			expectedOffset: 0,
			mockReturn:     []model.Product{},
		},
		{
			name:          "Repository error",
			limit:         10,
			expectedLimit: 10,
			mockError:     errors.New("database error"),
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return(tt.mockReturn, tt.mockError)

			products, err := service.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, products)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByID", ctx, int64(1)).Return(ptr(jejuTour()), nil)

		product, err := NewProductService(mockRepo, logger).GetByID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "TOUR-JEJU", product.SKU)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

		product, err := NewProductService(mockRepo, logger).GetByID(ctx, 404)

		assert.Nil(t, product)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Invalid ID skips the repository", func(t *testing.T) {
		mockRepo := new(MockProductRepository)

		_, err := NewProductService(mockRepo, logger).GetByID(ctx, 0)

		assert.ErrorIs(t, err, model.ErrProductNotFound)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Repository error", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByID", ctx, int64(1)).Return(nil, errors.New("boom"))

		_, err := NewProductService(mockRepo, logger).GetByID(ctx, 1)

		require.Error(t, err)
		assert.Equal(t, model.KindUnknown, model.KindOf(err))
	})
}
