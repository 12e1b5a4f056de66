package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"replay_report/internal/config"
	"replay_report/internal/domain/query"
	"replay_report/internal/domain/report"
	sqlinfra "replay_report/internal/infrastructure/sql"
	"replay_report/internal/infrastructure/template"
	"replay_report/internal/storage"

	"github.com/sirupsen/logrus"
)

// QueryExecutor выполняет один шаблон каталога.
type QueryExecutor interface {
	Execute(ctx context.Context, t query.Template, param string) (report.ResultTable, int, error)
}

// Renderer превращает документ отчёта в файл.
type Renderer interface {
	Bytes(doc *report.Document) ([]byte, error)
	Extension() string
	ContentType() string
}

// Artifact описывает записанный файл отчёта.
type Artifact struct {
	Key  string
	URL  string
	Size int
	// Overwritten is set when a file from an earlier run was replaced.
	Overwritten bool
}

// Params собирает зависимости сервиса.
type Params struct {
	Catalog  query.Catalog
	Executor QueryExecutor
	Page     Renderer
	// Workbook is optional; when set together with WriteWorkbook the
	// workbook is written next to the page.
	Workbook      Renderer
	WriteWorkbook bool
	Output        storage.Storage
	// Publisher is optional and receives a copy of every written artifact.
	Publisher storage.Storage
	Logger    *logrus.Logger
}

// ReportService runs the catalog, renders the document and writes it.
type ReportService struct {
	catalog       query.Catalog
	executor      QueryExecutor
	page          Renderer
	workbook      Renderer
	writeWorkbook bool
	output        storage.Storage
	publisher     storage.Storage
	logger        *logrus.Logger
}

// NewReportService создает новый сервис отчетов
func NewReportService(p Params) *ReportService {
	return &ReportService{
		catalog:       p.Catalog,
		executor:      p.Executor,
		page:          p.Page,
		workbook:      p.Workbook,
		writeWorkbook: p.WriteWorkbook,
		output:        p.Output,
		publisher:     p.Publisher,
		logger:        p.Logger,
	}
}

// NewReportServiceFromConfig создает полностью настроенный сервис отчетов
func NewReportServiceFromConfig(cfg config.Config, logger *logrus.Logger) (*ReportService, error) {
	catalog, err := query.ByName(cfg.Report.Catalog)
	if err != nil {
		return nil, err
	}

	page, err := template.NewHTML()
	if err != nil {
		return nil, err
	}

	output, err := storage.NewOutputStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := storage.NewPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewReportService(Params{
		Catalog:       catalog,
		Executor:      sqlinfra.NewExecutor(cfg, logger),
		Page:          page,
		Workbook:      template.NewXLSX(logger),
		WriteWorkbook: cfg.Report.XLSX,
		Output:        output,
		Publisher:     publisher,
		Logger:        logger,
	}), nil
}

// Catalog returns the catalog the service runs.
func (s *ReportService) Catalog() query.Catalog { return s.catalog }

// Build runs every catalog template in order and collects the sections.
// The first failing query aborts the build.
func (s *ReportService) Build(ctx context.Context, param string) (*report.Document, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"report":  param,
		"catalog": s.catalog.Name,
	})
	start := time.Now()

	doc := report.NewDocument(param)
	for _, t := range s.catalog.Templates {
		table, count, err := s.executor.Execute(ctx, t, param)
		if err != nil {
			logger.WithError(err).WithField("bucket", t.Title).Error("bucket query failed")
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"bucket": t.Title,
			"rows":   count,
		}).Info("bucket collected")
		doc.AddSection(t.Title, table)
	}

	logger.WithFields(logrus.Fields{
		"sections": len(doc.Sections),
		"rows":     doc.TotalRows(),
		"duration": time.Since(start),
	}).Info("report data collected")
	return doc, nil
}

// Render builds the document and renders it with the renderer registered
// for ext ("html" or "xlsx").
func (s *ReportService) Render(ctx context.Context, param, ext string) ([]byte, string, error) {
	r := s.renderer(ext)
	if r == nil {
		return nil, "", fmt.Errorf("unsupported report format: %s", ext)
	}
	doc, err := s.Build(ctx, param)
	if err != nil {
		return nil, "", err
	}
	data, err := r.Bytes(doc)
	if err != nil {
		return nil, "", err
	}
	return data, r.ContentType(), nil
}

// Generate builds the document once and writes <param>.html, plus
// <param>.xlsx when the workbook is enabled.
func (s *ReportService) Generate(ctx context.Context, param string) ([]Artifact, error) {
	doc, err := s.Build(ctx, param)
	if err != nil {
		return nil, err
	}

	renderers := []Renderer{s.page}
	if s.writeWorkbook && s.workbook != nil {
		renderers = append(renderers, s.workbook)
	}

	artifacts := make([]Artifact, 0, len(renderers))
	for _, r := range renderers {
		artifact, err := s.write(ctx, doc, r)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func (s *ReportService) write(ctx context.Context, doc *report.Document, r Renderer) (Artifact, error) {
	data, err := r.Bytes(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to render %s report: %w", r.Extension(), err)
	}

	key := FileName(doc.Name, r.Extension())
	existed, err := s.output.Exists(ctx, key)
	if err != nil {
		// не мешает записи, Save сообщит о настоящей проблеме
		s.logger.WithError(err).WithField("file", key).Warn("failed to check previous report")
		existed = false
	}
	if err := s.output.Save(ctx, key, bytes.NewReader(data)); err != nil {
		return Artifact{}, fmt.Errorf("failed to write %s: %w", key, err)
	}

	url, err := s.output.GetURL(ctx, key)
	if err != nil {
		return Artifact{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Save(ctx, key, bytes.NewReader(data)); err != nil {
			return Artifact{}, fmt.Errorf("failed to publish %s: %w", key, err)
		}
	}

	return Artifact{Key: key, URL: url, Size: len(data), Overwritten: existed}, nil
}

func (s *ReportService) renderer(ext string) Renderer {
	for _, r := range []Renderer{s.page, s.workbook} {
		if r != nil && r.Extension() == ext {
			return r
		}
	}
	return nil
}

// FileName is the artifact name for a run parameter.
func FileName(param, ext string) string {
	return param + "." + ext
}
