package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	"finvoapi/internal/llm"
	"finvoapi/internal/model"
	"finvoapi/internal/parse"
	"finvoapi/internal/prompt"
	"finvoapi/internal/storage"
)

// ExtractionService defines the use case of turning an uploaded document
// into a structured financial record.
type ExtractionService interface {
	// Extract runs the full pipeline on raw upload bytes. The returned
	// envelope is always populated; a non-nil error carries the typed
	// failure for HTTP status mapping.
	Extract(ctx context.Context, raw []byte, filename string, opts model.ExtractionOptions) (*model.ResponseEnvelope, error)

	// Stats reports in-process counters since startup.
	Stats() Stats
}

// extractionService is the concrete pipeline implementation.
type extractionService struct {
	normalizer *document.Normalizer
	invoker    llm.Invoker
	archive    storage.Archive // nil when archival is disabled
	cfg        *config.AppConfig
	log        *slog.Logger
	stats      statsCounters
	tracer     trace.Tracer
}

// NewExtractionService constructs the pipeline. archive may be nil.
func NewExtractionService(normalizer *document.Normalizer, invoker llm.Invoker, archive storage.Archive, cfg *config.AppConfig, log *slog.Logger) ExtractionService {
	if log == nil {
		log = slog.Default()
	}
	return &extractionService{
		normalizer: normalizer,
		invoker:    invoker,
		archive:    archive,
		cfg:        cfg,
		log:        log,
		tracer:     otel.Tracer("finvoapi/service"),
	}
}

func (s *extractionService) Extract(ctx context.Context, raw []byte, filename string, opts model.ExtractionOptions) (*model.ResponseEnvelope, error) {
	start := time.Now()
	s.stats.requestStarted()

	env := &model.ResponseEnvelope{
		Status: model.StatusError,
		FileInfo: model.FileInfo{
			Filename: filepath.Base(filename),
			Size:     int64(len(raw)),
		},
	}

	record, err := s.run(ctx, raw, filename, opts, env)
	env.ProcessingTime = time.Since(start).Seconds()
	if err != nil {
		env.Error = model.Detail(err)
		s.stats.requestFinished(false, env.ProcessingTime)
		s.log.Warn("extraction failed",
			"filename", env.FileInfo.Filename,
			"kind", string(model.KindOf(err)),
			"elapsed_s", env.ProcessingTime,
		)
		return env, err
	}

	env.Status = model.StatusSuccess
	env.Data = record
	s.stats.requestFinished(true, env.ProcessingTime)
	s.log.Info("extraction ok",
		"filename", env.FileInfo.Filename,
		"format", env.FileInfo.Format,
		"confidence", record.ConfidenceScore,
		"elapsed_s", env.ProcessingTime,
	)
	return env, nil
}

// run executes the pipeline stages in order, filling file info on the
// envelope as soon as it is known.
func (s *extractionService) run(ctx context.Context, raw []byte, filename string, opts model.ExtractionOptions, env *model.ResponseEnvelope) (*model.FinancialRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, requestErr(err)
	}

	ctx, span := s.tracer.Start(ctx, "extract.normalize",
		trace.WithAttributes(attribute.Int("upload.size", len(raw))))
	payload, err := s.normalizer.Normalize(raw, filename)
	span.End()
	if err != nil {
		return nil, err
	}
	env.FileInfo.Format = payload.Format

	instructions := prompt.BuildInstructions(opts)
	schema := prompt.BuildSchema(opts)

	ctx, span = s.tracer.Start(ctx, "extract.invoke",
		trace.WithAttributes(attribute.Int("pages", payload.PageCount())))
	output, err := s.invoker.Invoke(ctx, payload, instructions, schema)
	span.End()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, requestErr(err)
	}

	truncated := false
	if max := s.cfg.Limits.MaxOutputBytes; max > 0 && len(output) > max {
		output = output[:max]
		truncated = true
	}

	_, span = s.tracer.Start(ctx, "extract.parse")
	record, err := parse.Parse(output, opts, schema)
	span.End()
	if err != nil {
		return nil, err
	}
	if truncated {
		record.Warnings = append(record.Warnings,
			fmt.Sprintf("model output exceeded %d bytes and was truncated", s.cfg.Limits.MaxOutputBytes))
	}

	s.archiveUpload(ctx, raw, payload)
	return record, nil
}

// archiveUpload stores the raw document in the archive when enabled.
// Failures are logged and never surface to the caller; the upload ctx is
// detached so a client disconnect does not abort an in-flight put.
func (s *extractionService) archiveUpload(ctx context.Context, raw []byte, payload *document.Payload) {
	if s.archive == nil {
		return
	}
	ext := filepath.Ext(payload.Filename)
	key := "uploads/" + uuid.New().String() + strings.ToLower(ext)

	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := s.archive.Store(putCtx, key, raw, contentTypeFor(payload.Format), map[string]string{
		"original-filename": payload.Filename,
	})
	if err != nil {
		s.log.Warn("archive upload failed", "key", key, "error", err)
		return
	}
	s.log.Debug("archived upload", "key", key, "size", len(raw))
}

func (s *extractionService) Stats() Stats {
	return s.stats.snapshot()
}

// requestErr maps a caller context error onto the request-level kinds.
func requestErr(err error) error {
	if err == context.DeadlineExceeded {
		return model.WrapError(model.KindRequestTimeout, "request deadline exceeded", err)
	}
	return model.WrapError(model.KindRequestCancelled, "request cancelled by client", err)
}

func contentTypeFor(format string) string {
	switch format {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	case "tiff":
		return "image/tiff"
	case "heic", "heif":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
