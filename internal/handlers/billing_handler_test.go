package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-service/internal/models"
	"finance-service/internal/repository"
	"finance-service/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBillingService scripts the outcomes the handler must map onto HTTP
// responses.
type stubBillingService struct {
	run         *models.AssessmentBillingRun
	generateErr error
}

func (s *stubBillingService) GenerateBillingRun(_ context.Context, _ string, _ uuid.UUID, _ time.Time) (*models.AssessmentBillingRun, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.run, nil
}

func (s *stubBillingService) GetBillingRun(_ context.Context, _ uuid.UUID) (*models.AssessmentBillingRun, error) {
	return s.run, nil
}

func (s *stubBillingService) CreateBillingCycle(_ context.Context, _ *models.CreateBillingCycleRequest) (*models.AssessmentBillingCycle, error) {
	return nil, nil
}

func (s *stubBillingService) ListBillingCycles(_ context.Context, _ string) ([]models.AssessmentBillingCycle, error) {
	return nil, nil
}

func (s *stubBillingService) CalculateLateFees(_ context.Context, _ string) ([]models.LateFeeCharge, error) {
	return nil, nil
}

func (s *stubBillingService) GetAgingReport(_ context.Context, _ string) (*models.AgingReport, error) {
	return nil, nil
}

func postBillingRun(t *testing.T, stub *stubBillingService) *http.Response {
	t.Helper()

	app := fiber.New()
	NewBillingHandler(stub).Register(app)

	body, err := json.Marshal(models.GenerateBillingRunRequest{
		AssociationID:  "assoc-1",
		BillingCycleID: uuid.New(),
		BillingDate:    time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/finance/protected/api/v1/billing/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestBillingHandler_GenerateBillingRun_DuplicatePeriod(t *testing.T) {
	stub := &stubBillingService{
		generateErr: fmt.Errorf("run for cycle: %w", repository.ErrDuplicateRun),
	}

	resp := postBillingRun(t, stub)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var envelope utils.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "DUPLICATE_RUN", envelope.Error.Code)
}

func TestBillingHandler_GenerateBillingRun_UnknownCycle(t *testing.T) {
	stub := &stubBillingService{
		generateErr: fmt.Errorf("billing cycle: %w", repository.ErrNotFound),
	}

	resp := postBillingRun(t, stub)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBillingHandler_GenerateBillingRun_Success(t *testing.T) {
	stub := &stubBillingService{
		run: &models.AssessmentBillingRun{
			ID:            uuid.New(),
			AssociationID: "assoc-1",
			Status:        models.RunCompleted,
		},
	}

	resp := postBillingRun(t, stub)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
