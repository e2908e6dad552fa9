package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"reconciler/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	feature := NewFeature(mockClient, "recon", "records", zap.NewNop(), db)
	require.NoError(t, feature.Load(app))
	return app, mockClient
}

func TestLoader(t *testing.T) {
	feature := NewFeature(new(mocks.Client), "recon", "records", zap.NewNop(), nil)
	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
}

func TestHandleStorageCheck(t *testing.T) {
	t.Run("Check Only", func(t *testing.T) {
		app, mockClient := setupTestApp(t, nil)
		mockClient.On("BucketExists", mock.Anything, "recon").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "recon", mock.Anything).Return(mocks.Listing())

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "missing", body["status"])
		mockClient.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fix", func(t *testing.T) {
		app, mockClient := setupTestApp(t, nil)
		mockClient.On("BucketExists", mock.Anything, "recon").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "recon", mock.Anything).Return(nil)
		mockClient.On("PutObject", mock.Anything, "recon", "records/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage?fix=true", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "fixed", body["status"])
		mockClient.AssertExpectations(t)
	})
}

func TestHandleDatabaseCheck(t *testing.T) {
	t.Run("Matched", func(t *testing.T) {
		app, _ := setupTestApp(t, migratedDB(t))

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/database", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, true, body["matched"])
	})

	t.Run("No Database", func(t *testing.T) {
		app, _ := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/database", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "recon").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "recon", mock.Anything).Return(mocks.Listing())

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "missing", body["storage"]["status"])
	assert.Equal(t, "error", body["database"]["status"])
}
