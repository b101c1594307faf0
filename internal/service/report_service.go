package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/report"
)

type ReportRepository interface {
	LoadSource(ctx context.Context) (model.ReportSource, error)
}

type ExcelGenerator interface {
	Generate(kind model.ReportKind, filter model.ReportFilter, data interface{}) ([]byte, error)
}

// HealthCheck is one dependency probed by the health report.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

type ReportService struct {
	repo   ReportRepository
	excel  ExcelGenerator
	checks []HealthCheck
	now    func() time.Time
}

func NewReportService(repo ReportRepository, excel ExcelGenerator, checks ...HealthCheck) *ReportService {
	return &ReportService{repo: repo, excel: excel, checks: checks, now: time.Now}
}

type ReportResult struct {
	Kind model.ReportKind
	Data interface{}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ReportService) Generate(ctx context.Context, principal model.Principal, kind model.ReportKind, filter model.ReportFilter) (*ReportResult, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.StartDate.After(filter.EndDate.Time) {
		return nil, fmt.Errorf("%w: startDate must be before or equal to endDate", ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown contract status %q", ErrInvalidInput, filter.Status)
	}

	src, err := s.repo.LoadSource(ctx)
	if err != nil {
		return nil, err
	}
	today := model.DateOf(s.now())

	var data interface{}
	switch kind {
	case model.ReportDashboard:
		data = report.Dashboard(src, today)
	case model.ReportRevenue:
		data = report.Revenue(src, filter)
	case model.ReportContracts:
		data = report.Contracts(src, filter, today)
	case model.ReportDumpsterUtilization:
		data = report.Utilization(src, today)
	case model.ReportExpenses:
		data = report.Expenses(src, filter)
	default:
		return nil, fmt.Errorf("%w: unknown report %q", ErrNotFound, kind)
	}
	return &ReportResult{Kind: kind, Data: data}, nil
}

func (s *ReportService) Export(ctx context.Context, principal model.Principal, kind model.ReportKind, filter model.ReportFilter) (*ExportResult, error) {
	result, err := s.Generate(ctx, principal, kind, filter)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(kind, filter, result.Data)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("report-%s-%s.xlsx", kind, s.now().Format("20060102")),
		Content:  content,
	}, nil
}

// Health probes every dependency. It needs no principal so load balancers can
// call it.
func (s *ReportService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok", Components: make(map[string]string, len(s.checks)), CheckedAt: s.now().UTC()}
	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "degraded"
			status.Components[check.Name] = err.Error()
			continue
		}
		status.Components[check.Name] = "ok"
	}
	return status
}
