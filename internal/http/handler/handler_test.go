package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	llmMocks "finvoapi/internal/llm/mocks"
	"finvoapi/internal/model"
	"finvoapi/internal/service"
	serviceMocks "finvoapi/internal/service/mocks"
)

func testAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Model:  config.ModelConfig{Provider: "openai", Name: "gpt-4o"},
		Limits: config.LimitsConfig{MaxFileSizeMB: 10, MaxPDFPages: 8},
	}
}

func successEnvelope() *model.ResponseEnvelope {
	total := 42.25
	return &model.ResponseEnvelope{
		Status:         model.StatusSuccess,
		Data:           &model.FinancialRecord{TotalAmount: &total, Currency: "USD", PaymentMethod: model.PaymentUnknown, ConfidenceScore: 0.9},
		ProcessingTime: 1.2,
		FileInfo:       model.FileInfo{Filename: "receipt.png", Size: 11, Format: "png"},
	}
}

func errorEnvelope(kind model.ErrorKind) *model.ResponseEnvelope {
	return &model.ResponseEnvelope{
		Status:   model.StatusError,
		Error:    &model.ErrorDetail{Kind: string(kind), Message: "failed"},
		FileInfo: model.FileInfo{Filename: "receipt.png", Size: 11},
	}
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health", HealthCheck(testAppConfig()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "openai", body["provider"])
	assert.Equal(t, "gpt-4o", body["model"])
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExtractUpload(t *testing.T) {
	mockSvc := new(serviceMocks.MockExtractionService)
	app := fiber.New()
	app.Post("/api/v1/extract/upload", ExtractUpload(mockSvc, time.Minute))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "receipt.png", []byte("png content"))
		mockSvc.On("Extract", mock.Anything, []byte("png content"), "receipt.png", model.DefaultOptions()).
			Return(successEnvelope(), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var env model.ResponseEnvelope
		json.NewDecoder(resp.Body).Decode(&env)
		assert.Equal(t, model.StatusSuccess, env.Status)
		require.NotNil(t, env.Data)
		assert.InDelta(t, 42.25, *env.Data.TotalAmount, 0.001)
		mockSvc.AssertExpectations(t)
	})

	t.Run("option flags from query", func(t *testing.T) {
		body, ct := multipartBody(t, "receipt.png", []byte("png content"))
		wantOpts := model.ExtractionOptions{ExtractFuelInfo: false, ExtractLineItems: true}
		mockSvc.On("Extract", mock.Anything, mock.Anything, "receipt.png", wantOpts).
			Return(successEnvelope(), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload?extract_fuel_info=false", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var env model.ResponseEnvelope
		json.NewDecoder(resp.Body).Decode(&env)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(model.KindUnsupportedFormat), env.Error.Kind)
	})

	t.Run("pipeline failure maps status", func(t *testing.T) {
		cases := map[model.ErrorKind]int{
			model.KindUnsupportedFormat:    http.StatusBadRequest,
			model.KindFileTooLarge:         http.StatusRequestEntityTooLarge,
			model.KindTooManyPages:         http.StatusBadRequest,
			model.KindMalformedModelOutput: http.StatusBadGateway,
			model.KindExternalServiceError: http.StatusBadGateway,
			model.KindExtractionTimeout:    http.StatusGatewayTimeout,
			model.KindRequestTimeout:       http.StatusGatewayTimeout,
			model.KindRequestCancelled:     StatusClientClosedRequest,
			model.KindInternal:             http.StatusInternalServerError,
		}
		for kind, wantStatus := range cases {
			body, ct := multipartBody(t, "receipt.png", []byte("png content"))
			mockSvc.On("Extract", mock.Anything, mock.Anything, "receipt.png", mock.Anything).
				Return(errorEnvelope(kind), model.NewError(kind, "failed")).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload", body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, wantStatus, resp.StatusCode, "kind %s", kind)

			var env model.ResponseEnvelope
			json.NewDecoder(resp.Body).Decode(&env)
			require.NotNil(t, env.Error, "kind %s", kind)
			assert.Equal(t, string(kind), env.Error.Kind)
		}
		mockSvc.AssertExpectations(t)
	})

	t.Run("deadline set on pipeline context", func(t *testing.T) {
		body, ct := multipartBody(t, "receipt.png", []byte("png content"))
		mockSvc.On("Extract",
			mock.MatchedBy(func(ctx context.Context) bool { _, ok := ctx.Deadline(); return ok }),
			mock.Anything, "receipt.png", mock.Anything).
			Return(successEnvelope(), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

// The configured request timeout must surface as a RequestTimeout
// envelope, not hang the handler.
func TestExtractUploadRequestTimeout(t *testing.T) {
	cfg := testAppConfig()
	invoker := new(llmMocks.MockInvoker)
	svc := service.NewExtractionService(document.NewNormalizer(cfg), invoker, nil, cfg, nil)

	app := fiber.New()
	app.Post("/api/v1/extract/upload", ExtractUpload(svc, time.Nanosecond))

	body, ct := multipartBody(t, "receipt.png", []byte("png content"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/upload", body)
	req.Header.Set("Content-Type", ct)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	var env model.ResponseEnvelope
	json.NewDecoder(resp.Body).Decode(&env)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(model.KindRequestTimeout), env.Error.Kind)
	invoker.AssertNotCalled(t, "Invoke")
}

func TestExtractBase64(t *testing.T) {
	mockSvc := new(serviceMocks.MockExtractionService)
	app := fiber.New()
	app.Post("/api/v1/extract/base64", ExtractBase64(mockSvc, time.Minute))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/base64", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("png content"))
		mockSvc.On("Extract", mock.Anything, []byte("png content"), "receipt.png", model.DefaultOptions()).
			Return(successEnvelope(), nil).Once()

		resp := post(`{"filename": "receipt.png", "image_data": "` + encoded + `"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("data uri prefix tolerated", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("png content"))
		mockSvc.On("Extract", mock.Anything, []byte("png content"), "receipt.png", model.DefaultOptions()).
			Return(successEnvelope(), nil).Once()

		resp := post(`{"filename": "receipt.png", "image_data": "data:image/png;base64,` + encoded + `"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("option flags in body", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("x"))
		wantOpts := model.ExtractionOptions{ExtractFuelInfo: true, ExtractLineItems: false}
		mockSvc.On("Extract", mock.Anything, mock.Anything, "receipt.png", wantOpts).
			Return(successEnvelope(), nil).Once()

		resp := post(`{"filename": "receipt.png", "image_data": "` + encoded + `", "extract_line_items": false}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing filename", func(t *testing.T) {
		resp := post(`{"image_data": "aGk="}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid base64", func(t *testing.T) {
		resp := post(`{"filename": "a.png", "image_data": "%%%not-base64%%%"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := post(`{"filename": `)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSupportedFormats(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/supported-formats", SupportedFormats(testAppConfig()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/supported-formats", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SupportedFormats []string `json:"supported_formats"`
		MaxFileSizeMB    int      `json:"max_file_size_mb"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Contains(t, body.SupportedFormats, ".pdf")
	assert.Contains(t, body.SupportedFormats, ".heic")
	assert.Equal(t, 10, body.MaxFileSizeMB)
}

func TestExtractionSchema(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/schema", ExtractionSchema())

	t.Run("full schema by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var schema map[string]any
		json.NewDecoder(resp.Body).Decode(&schema)
		props := schema["properties"].(map[string]any)
		assert.Contains(t, props, "total_amount")
		assert.Contains(t, props, "items")
		assert.Contains(t, props, "fuel_info")
	})

	t.Run("flags trim optional sections", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schema?extract_fuel_info=false&extract_line_items=false", nil)
		resp, _ := app.Test(req)

		var schema map[string]any
		json.NewDecoder(resp.Body).Decode(&schema)
		props := schema["properties"].(map[string]any)
		assert.NotContains(t, props, "items")
		assert.NotContains(t, props, "fuel_info")
	})
}

func TestExtractionStats(t *testing.T) {
	mockSvc := new(serviceMocks.MockExtractionService)
	mockSvc.On("Stats").Return(service.Stats{TotalRequests: 5, Successful: 4, Failed: 1, AvgProcessingTime: 2.1})

	app := fiber.New()
	app.Get("/api/v1/stats", ExtractionStats(mockSvc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats service.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	assert.Equal(t, int64(5), stats.TotalRequests)
	assert.Equal(t, int64(4), stats.Successful)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})

	mockSvc := new(serviceMocks.MockExtractionService)
	RegisterRoutes(app, testAppConfig(), mockSvc)

	t.Run("demo page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var env model.ResponseEnvelope
		json.NewDecoder(resp.Body).Decode(&env)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NotFound", env.Error.Kind)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var env model.ResponseEnvelope
		json.NewDecoder(resp.Body).Decode(&env)
		require.NotNil(t, env.Error)
		assert.Equal(t, "MethodNotAllowed", env.Error.Kind)
	})
}
