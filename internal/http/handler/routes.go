package handler

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	"finvoapi/internal/model"
	"finvoapi/internal/prompt"
	"finvoapi/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the Fiber app.
func RegisterRoutes(app *fiber.App, cfg *config.AppConfig, svc service.ExtractionService) {
	app.Get("/", DemoPage())
	app.Get("/health", HealthCheck(cfg))
	app.Get("/healthz", LivenessProbe())

	v1 := app.Group("/api/v1")
	v1.Post("/extract/upload", ExtractUpload(svc, cfg.RequestTimeout))
	v1.Post("/extract/base64", ExtractBase64(svc, cfg.RequestTimeout))
	v1.Get("/supported-formats", SupportedFormats(cfg))
	v1.Get("/schema", ExtractionSchema())
	v1.Get("/stats", ExtractionStats(svc))
}

// HealthCheck godoc
// @Summary Service health
// @Description Reports liveness and the configured model backend.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"provider": cfg.Model.Provider,
			"model":    cfg.Model.Name,
		})
	}
}

// LivenessProbe is a bare liveness check for orchestrators.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ExtractUpload godoc
// @Summary Extract financial data from an uploaded document
// @Description Accepts a PDF or image as multipart/form-data (field name: file) and returns the structured record.
// @Tags extract
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "invoice or receipt"
// @Param extract_fuel_info query bool false "include fuel details" default(true)
// @Param extract_line_items query bool false "include line items" default(true)
// @Success 200 {object} model.ResponseEnvelope
// @Failure 400 {object} model.ResponseEnvelope
// @Failure 413 {object} model.ResponseEnvelope
// @Failure 502 {object} model.ResponseEnvelope
// @Failure 504 {object} model.ResponseEnvelope
// @Router /api/v1/extract/upload [post]
func ExtractUpload(svc service.ExtractionService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "cannot open uploaded file")
		}
		defer f.Close()

		raw, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "cannot read uploaded file")
		}

		return runExtraction(c, svc, timeout, raw, fh.Filename, optionsFromQuery(c))
	}
}

// base64Request is the JSON body accepted by the base64 endpoint.
// The option flags default to true when omitted.
type base64Request struct {
	ImageData        string `json:"image_data"` // standard base64, data URI prefix tolerated
	Filename         string `json:"filename"`
	ExtractFuelInfo  *bool  `json:"extract_fuel_info"`
	ExtractLineItems *bool  `json:"extract_line_items"`
}

// ExtractBase64 godoc
// @Summary Extract financial data from a base64-encoded document
// @Description JSON alternative to the multipart upload for clients that cannot send form data.
// @Tags extract
// @Accept json
// @Produce json
// @Param request body base64Request true "encoded document"
// @Success 200 {object} model.ResponseEnvelope
// @Failure 400 {object} model.ResponseEnvelope
// @Router /api/v1/extract/base64 [post]
func ExtractBase64(svc service.ExtractionService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req base64Request
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "invalid JSON body")
		}
		if req.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "filename is required")
		}
		if req.ImageData == "" {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "image_data is required")
		}

		data := req.ImageData
		if i := strings.Index(data, ";base64,"); i != -1 {
			data = data[i+len(";base64,"):]
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, model.KindUnsupportedFormat, "image_data is not valid base64")
		}

		opts := model.DefaultOptions()
		if req.ExtractFuelInfo != nil {
			opts.ExtractFuelInfo = *req.ExtractFuelInfo
		}
		if req.ExtractLineItems != nil {
			opts.ExtractLineItems = *req.ExtractLineItems
		}

		return runExtraction(c, svc, timeout, raw, req.Filename, opts)
	}
}

// SupportedFormats godoc
// @Summary Accepted upload formats
// @Tags extract
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/supported-formats [get]
func SupportedFormats(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"supported_formats": document.SupportedFormats(),
			"max_file_size_mb":  cfg.Limits.MaxFileSizeMB,
			"max_pdf_pages":     cfg.Limits.MaxPDFPages,
		})
	}
}

// ExtractionSchema godoc
// @Summary JSON Schema of the extraction result
// @Description Returns the schema the model is asked to follow, honoring the option flags.
// @Tags extract
// @Produce json
// @Param extract_fuel_info query bool false "include fuel details" default(true)
// @Param extract_line_items query bool false "include line items" default(true)
// @Success 200 {object} map[string]any
// @Router /api/v1/schema [get]
func ExtractionSchema() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(prompt.BuildSchema(optionsFromQuery(c)))
	}
}

// ExtractionStats godoc
// @Summary In-process extraction counters
// @Description Counters since process start; they reset on restart.
// @Tags extract
// @Produce json
// @Success 200 {object} service.Stats
// @Router /api/v1/stats [get]
func ExtractionStats(svc service.ExtractionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Stats())
	}
}

// DemoPage serves a minimal upload form for manual testing.
func DemoPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Invoice Extraction</title>
</head>
<body>
  <h1>Invoice Extraction</h1>
  <form action="/api/v1/extract/upload" method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept=".pdf,.jpg,.jpeg,.png,.gif,.bmp,.webp,.tiff,.tif,.heic,.heif" />
    <button type="submit">Extract</button>
  </form>
  <p>See <a href="/swagger/index.html">API docs</a>.</p>
</body>
</html>`
		return c.Type("html").SendString(html)
	}
}

// runExtraction invokes the pipeline under the request deadline and
// writes the envelope with the status derived from the error kind.
func runExtraction(c *fiber.Ctx, svc service.ExtractionService, timeout time.Duration, raw []byte, filename string, opts model.ExtractionOptions) error {
	ctx := c.UserContext()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	env, err := svc.Extract(ctx, raw, filename, opts)
	if err != nil {
		return c.Status(StatusForKind(model.KindOf(err))).JSON(env)
	}
	return c.JSON(env)
}

// optionsFromQuery reads the option flags from query parameters; both
// default to enabled.
func optionsFromQuery(c *fiber.Ctx) model.ExtractionOptions {
	return model.ExtractionOptions{
		ExtractFuelInfo:  c.QueryBool("extract_fuel_info", true),
		ExtractLineItems: c.QueryBool("extract_line_items", true),
	}
}
