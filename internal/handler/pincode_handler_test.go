package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"luxe/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPincodeService is a mock implementation of service.PincodeService.
type MockPincodeService struct {
	mock.Mock
}

func (m *MockPincodeService) Lookup(ctx context.Context, pincode string) (*model.PincodeLookupResponse, error) {
	args := m.Called(ctx, pincode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PincodeLookupResponse), args.Error(1)
}

func TestPincodeHandler_Lookup_Serviceable(t *testing.T) {
	svc := new(MockPincodeService)
	h := NewPincodeHandler(svc, zerolog.Nop())

	svc.On("Lookup", mock.Anything, "560001").Return(&model.PincodeLookupResponse{
		Serviceable:  true,
		CODAvailable: true,
		DeliveryDays: 2,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pincodes/560001", nil)
	rec := httptest.NewRecorder()

	h.Lookup(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.PincodeLookupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Serviceable)
	assert.True(t, got.CODAvailable)
}

func TestPincodeHandler_Lookup_NotServiceable(t *testing.T) {
	svc := new(MockPincodeService)
	h := NewPincodeHandler(svc, zerolog.Nop())

	svc.On("Lookup", mock.Anything, "999999").
		Return(&model.PincodeLookupResponse{Serviceable: false}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pincodes/999999", nil)
	rec := httptest.NewRecorder()

	h.Lookup(rec, req)

	// Not serviceable is still a 200; the body carries the answer.
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.PincodeLookupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.False(t, got.Serviceable)
}

func TestPincodeHandler_Lookup_MissingPincode(t *testing.T) {
	svc := new(MockPincodeService)
	h := NewPincodeHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/pincodes/", nil)
	rec := httptest.NewRecorder()

	h.Lookup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}
