package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/ports"
)

const inlineSchemaInput = "inline"

var ErrHistoryDisabled = errors.New("validation history is not enabled")

// Report describes one validation run: where the schema came from, how the
// document format was chosen and what the evaluator found.
type Report struct {
	RunID        string
	DocumentPath string
	SchemaInput  string
	SchemaSource domain.SchemaSource
	Format       domain.Format
	FormatOrigin domain.FormatOrigin
	Result       domain.Result
}

// ContentRequest validates a document held in memory. Exactly one of
// SchemaURL and SchemaText is expected; an empty Format means auto-detect.
type ContentRequest struct {
	SchemaURL  string
	SchemaText string
	Document   string
	Format     domain.Format
}

type ValidationService struct {
	factory *ValidatorFactory
	runs    ports.RunRepository
	newID   func() string
	now     func() time.Time
}

type ServiceOption func(*ValidationService)

// WithRunRepository keeps a history record of every run.
func WithRunRepository(runs ports.RunRepository) ServiceOption {
	return func(s *ValidationService) {
		s.runs = runs
	}
}

func NewValidationService(factory *ValidatorFactory, opts ...ServiceOption) *ValidationService {
	s := &ValidationService{
		factory: factory,
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateFile validates the document at documentPath against schemaInput
// (file path or http(s) URL). The report is filled as far as the run got,
// even when an error is returned.
func (s *ValidationService) ValidateFile(ctx context.Context, documentPath, schemaInput string) (Report, error) {
	report := Report{
		RunID:        s.newID(),
		DocumentPath: documentPath,
		SchemaInput:  schemaInput,
		SchemaSource: domain.ClassifySchemaInput(schemaInput),
	}
	err := s.validateFile(ctx, &report)
	s.record(ctx, report, err)
	return report, err
}

func (s *ValidationService) validateFile(ctx context.Context, report *Report) error {
	doc, err := ReadDocument(report.DocumentPath)
	if err != nil {
		return err
	}
	report.Format, report.FormatOrigin = doc.Format, doc.Origin

	validator, err := s.factory.FromInput(ctx, report.SchemaInput)
	if err != nil {
		return err
	}
	value, err := Parse(doc.Format, doc.Content)
	if err != nil {
		return err
	}
	report.Result = validator.Validate(value)
	return report.Result.Err()
}

func (s *ValidationService) ValidateContent(ctx context.Context, req ContentRequest) (Report, error) {
	report := Report{
		RunID:        s.newID(),
		SchemaInput:  inlineSchemaInput,
		SchemaSource: domain.SchemaSourceLocal,
		Format:       req.Format,
		FormatOrigin: domain.OriginExplicit,
	}
	if req.SchemaURL != "" {
		report.SchemaInput = req.SchemaURL
		report.SchemaSource = domain.SchemaSourceRemote
	}
	if report.Format == "" {
		report.Format, report.FormatOrigin = domain.DetectFormat(req.Document), domain.OriginContent
	}

	err := s.validateContent(ctx, req, &report)
	s.record(ctx, report, err)
	return report, err
}

func (s *ValidationService) validateContent(ctx context.Context, req ContentRequest, report *Report) error {
	var (
		validator *Validator
		err       error
	)
	if req.SchemaURL != "" {
		validator, err = s.factory.FromURL(ctx, req.SchemaURL)
	} else {
		validator, err = s.factory.FromSchemaText(ctx, req.SchemaText)
	}
	if err != nil {
		return err
	}
	value, err := Parse(report.Format, req.Document)
	if err != nil {
		return err
	}
	report.Result = validator.Validate(value)
	return report.Result.Err()
}

// History lists recorded runs, newest first.
func (s *ValidationService) History(ctx context.Context, filter domain.RunFilter) ([]domain.ValidationRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.runs.List(ctx, filter)
}

func (s *ValidationService) record(ctx context.Context, report Report, runErr error) {
	if s.runs == nil {
		return
	}
	run := domain.ValidationRun{
		ID:           report.RunID,
		DocumentPath: report.DocumentPath,
		SchemaInput:  report.SchemaInput,
		SchemaSource: report.SchemaSource,
		Format:       report.Format,
		FormatOrigin: report.FormatOrigin,
		Valid:        runErr == nil,
		ErrorCount:   len(report.Result.Violations),
		CreatedAt:    s.now(),
	}
	if runErr != nil {
		run.ErrorKind, _ = domain.KindOf(runErr)
		run.Message = runErr.Error()
	}
	if err := s.runs.Log(ctx, run); err != nil {
		log.Printf("record validation run id=%s: %v", run.ID, err)
	}
}
