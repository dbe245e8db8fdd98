package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"mediaflow/internal/csvexport"
	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
)

// RunReportSummary aggregates run outcomes over a reporting window.
type RunReportSummary struct {
	From          string `json:"from"`
	To            string `json:"to"`
	TotalRuns     int    `json:"total_runs"`
	Succeeded     int    `json:"succeeded"`
	RolledBack    int    `json:"rolled_back"`
	Canceled      int    `json:"canceled"`
	TotalRetries  int    `json:"total_retries"`
	LiveEffects   int    `json:"live_effects"`
	AvgDurationMS int64  `json:"avg_duration_ms"`
}

// ReportService provides operator reporting over finished pipeline runs.
type ReportService interface {
	Summary(ctx context.Context, from, to string) (*RunReportSummary, error)
	ExportCSV(ctx context.Context, from, to string) ([]byte, error)
	ExportXLSX(ctx context.Context, from, to string) ([]byte, error)
}

type reportService struct {
	runRepo port.RunRepository
}

// NewReportService creates a new ReportService implementation.
func NewReportService(runRepo port.RunRepository) ReportService {
	return &reportService{runRepo: runRepo}
}

func (s *reportService) Summary(ctx context.Context, from, to string) (*RunReportSummary, error) {
	runs, err := s.runRepo.ListFinishedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &RunReportSummary{From: from, To: to, TotalRuns: len(runs)}
	var totalDuration int64
	for i := range runs {
		run := &runs[i]
		totalDuration += run.DurationMS
		switch run.Status {
		case domain.RunStatusSucceeded:
			summary.Succeeded++
		case domain.RunStatusRolledBack:
			summary.RolledBack++
		}

		if len(run.Result) == 0 {
			continue
		}
		var res pipeline.Result
		if err := json.Unmarshal(run.Result, &res); err != nil {
			continue
		}
		if res.Canceled {
			summary.Canceled++
		}
		for _, o := range res.Stages {
			summary.TotalRetries += o.Retries
		}
		if !res.Succeeded() {
			summary.LiveEffects += len(res.Effects)
		}
	}
	if len(runs) > 0 {
		summary.AvgDurationMS = totalDuration / int64(len(runs))
	}
	return summary, nil
}

func (s *reportService) ExportCSV(ctx context.Context, from, to string) ([]byte, error) {
	runs, err := s.runRepo.ListFinishedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("reportService.ExportCSV header: %w", err)
	}
	if err := w.WriteRuns(runs); err != nil {
		return nil, fmt.Errorf("reportService.ExportCSV rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("reportService.ExportCSV flush: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) ExportXLSX(ctx context.Context, from, to string) ([]byte, error) {
	runs, err := s.runRepo.ListFinishedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Runs"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("reportService.ExportXLSX header: %w", err)
	}

	for i := range runs {
		row := csvexport.RunToRow(&runs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("reportService.ExportXLSX cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("reportService.ExportXLSX row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("reportService.ExportXLSX write: %w", err)
	}
	return buf.Bytes(), nil
}
