package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	deductionapp "github.com/sacco/backend/internal/application/deduction"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/settlement"
)

type reconciliationTestEnv struct {
	router       *gin.Engine
	batchRepo    *MockBatchRepository
	itemRepo     *MockItemRepository
	suspenseRepo *MockSuspenseRepository
	requestRepo  *MockRequestRepository
	memberRepo   *MockMemberRepository
}

func setupReconciliationTestRouter() *reconciliationTestEnv {
	gin.SetMode(gin.TestMode)

	env := &reconciliationTestEnv{
		batchRepo:    new(MockBatchRepository),
		itemRepo:     new(MockItemRepository),
		suspenseRepo: new(MockSuspenseRepository),
		requestRepo:  new(MockRequestRepository),
		memberRepo:   new(MockMemberRepository),
	}

	reconciliationService := deductionapp.NewReconciliationService(
		env.batchRepo, env.itemRepo, env.suspenseRepo, env.requestRepo,
		env.memberRepo, passthroughTxManager{})
	postingService := deductionapp.NewJournalPostingService(
		env.batchRepo, env.itemRepo, env.requestRepo, env.memberRepo,
		new(MockSavingsRepository), nil, nil,
		new(MockTransactionRepository), passthroughTxManager{}, zap.NewNop())
	handler := NewReconciliationHandler(reconciliationService, postingService, settlement.NewParser())

	env.router = gin.New()
	api := env.router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return env
}

func submittedRequest(tenantID uuid.UUID, year, month int) *deduction.DeductionRequest {
	req := &deduction.DeductionRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Year:                year,
		Month:               month,
		Status:              deduction.DeductionRequestStatusSubmitted,
	}
	return req
}

func settlementUpload(t *testing.T, year, month, csvBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("year", year))
	require.NoError(t, writer.WriteField("month", month))
	part, err := writer.CreateFormFile("file", "settlement.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestReconciliationHandler_Reconcile(t *testing.T) {
	tenantID := uuid.New()

	t.Run("should reconcile an uploaded settlement file", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		request := submittedRequest(tenantID, 2026, 7)
		requested := []deduction.DeductionItem{
			{
				BaseEntity:     shared.NewBaseEntity(),
				RequestID:      request.ID,
				MemberID:       uuid.New(),
				MemberNumber:   "M-001",
				EmployeeNumber: "EMP001",
				Amount:         decimal.NewFromInt(50000),
			},
		}

		env.requestRepo.On("FindByPeriod", mock.Anything, tenantID, 2026, 7).Return(request, nil)
		env.requestRepo.On("FindItems", mock.Anything, request.ID).Return(requested, nil)
		env.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*deduction.ReconciliationBatch")).Return(nil)
		env.itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*deduction.ReconciliationItem")).Return(nil)

		csvBody := "employee_number,member_number,deducted_amount,status,reason\n" +
			"EMP001,M-001,50000,SUCCESS,\n"
		body, contentType := settlementUpload(t, "2026", "7", csvBody)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		parse := data["parse"].(map[string]interface{})
		assert.Equal(t, float64(1), parse["total_rows"])
		assert.Equal(t, float64(1), parse["good_rows"])

		env.requestRepo.AssertExpectations(t)
		env.batchRepo.AssertExpectations(t)
		env.itemRepo.AssertExpectations(t)
	})

	t.Run("should reject an empty settlement file", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		body, contentType := settlementUpload(t, "2026", "7", "")

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "ERR_SETTLEMENT_EMPTY_FILE", errInfo["code"])
	})

	t.Run("should reject a missing file part", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("year", "2026"))
		require.NoError(t, writer.WriteField("month", "7"))
		require.NoError(t, writer.Close())

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject an out of range month", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		body, contentType := settlementUpload(t, "2026", "13", "employee_number,amount,status\nEMP001,100,SUCCESS\n")

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return 401 without tenant header", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		body, contentType := settlementUpload(t, "2026", "7", "employee_number,amount,status\nEMP001,100,SUCCESS\n")

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should return 409 when the period is already reconciled", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		request := submittedRequest(tenantID, 2026, 7)
		env.requestRepo.On("FindByPeriod", mock.Anything, tenantID, 2026, 7).Return(request, nil)
		env.requestRepo.On("FindItems", mock.Anything, request.ID).Return([]deduction.DeductionItem{}, nil)
		env.memberRepo.On("FindByIdentity", mock.Anything, tenantID, "EMP001", "").Return(nil, shared.ErrNotFound)
		env.batchRepo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

		csvBody := "employee_number,amount,status\nEMP001,100,SUCCESS\n"
		body, contentType := settlementUpload(t, "2026", "7", csvBody)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestReconciliationHandler_Get(t *testing.T) {
	tenantID := uuid.New()

	t.Run("should return a batch with items", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		batch, err := deduction.NewReconciliationBatch(tenantID, 2026, 7)
		require.NoError(t, err)

		env.batchRepo.On("FindByID", mock.Anything, tenantID, batch.ID).Return(batch, nil)
		env.itemRepo.On("FindByBatch", mock.Anything, batch.ID).Return([]*deduction.ReconciliationItem{}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations/"+batch.ID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))

		env.batchRepo.AssertExpectations(t)
	})

	t.Run("should return 404 for unknown batch", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		batchID := uuid.New()
		env.batchRepo.On("FindByID", mock.Anything, tenantID, batchID).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations/"+batchID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should return 400 for malformed batch ID", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations/not-a-uuid", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReconciliationHandler_List(t *testing.T) {
	tenantID := uuid.New()

	t.Run("should list batches with pagination meta", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		batch, err := deduction.NewReconciliationBatch(tenantID, 2026, 7)
		require.NoError(t, err)

		env.batchRepo.On("List", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).
			Return(&shared.Paginated[*deduction.ReconciliationBatch]{
				Items:    []*deduction.ReconciliationBatch{batch},
				Total:    1,
				Page:     1,
				PageSize: 20,
			}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations?page=1&page_size=20", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["total"])
	})

	t.Run("should pass year and status filters through", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		env.batchRepo.On("List", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["year"] == 2026 && f.Filters["status"] == "COMPLETED"
		})).Return(&shared.Paginated[*deduction.ReconciliationBatch]{
			Items: []*deduction.ReconciliationBatch{}, Page: 1, PageSize: 20,
		}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations?year=2026&status=COMPLETED", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.batchRepo.AssertExpectations(t)
	})

	t.Run("should reject an unknown status filter", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations?status=BOGUS", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReconciliationHandler_PostJournals(t *testing.T) {
	tenantID := uuid.New()

	t.Run("should post journals for a completed batch with no postable items", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		batch, err := deduction.NewReconciliationBatch(tenantID, 2026, 7)
		require.NoError(t, err)
		require.NoError(t, batch.ApplySummary(deduction.MatchSummary{}))

		env.batchRepo.On("FindByID", mock.Anything, tenantID, batch.ID).Return(batch, nil)
		env.itemRepo.On("FindPostable", mock.Anything, batch.ID).Return([]*deduction.ReconciliationItem{}, nil)
		env.batchRepo.On("SaveWithLock", mock.Anything, batch).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations/"+batch.ID.String()+"/post-journals", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.batchRepo.AssertExpectations(t)
	})

	t.Run("should return 409 when journals were already posted", func(t *testing.T) {
		env := setupReconciliationTestRouter()

		batch, err := deduction.NewReconciliationBatch(tenantID, 2026, 7)
		require.NoError(t, err)
		require.NoError(t, batch.ApplySummary(deduction.MatchSummary{}))
		require.NoError(t, batch.MarkJournalsPosted())

		env.batchRepo.On("FindByID", mock.Anything, tenantID, batch.ID).Return(batch, nil)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reconciliations/"+batch.ID.String()+"/post-journals", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
