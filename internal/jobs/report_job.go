package jobs

import (
	"context"
	"time"

	"github.com/meera-jewels/retail-api/internal/domain"
	"go.uber.org/zap"
)

// ReportJobName is the name of the end-of-day report job
const ReportJobName = "daily_reports"

// ReportGenerator is implemented by the report service. The interface
// keeps the job from importing the service package directly.
type ReportGenerator interface {
	Generate(ctx context.Context, req *domain.GenerateReportRequest) (*domain.SalesReportDTO, error)
}

// ReportJob generates the end-of-day report for every configured floor.
// Each floor is independent: one floor failing never blocks the others.
type ReportJob struct {
	reports ReportGenerator
	floors  []int
	logger  *zap.Logger
	timeout time.Duration
}

func NewReportJob(reports ReportGenerator, floors []int, logger *zap.Logger, timeout time.Duration) *ReportJob {
	return &ReportJob{
		reports: reports,
		floors:  floors,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the report job. Called by the scheduler.
func (j *ReportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	generated := 0

	for _, floor := range j.floors {
		req := &domain.GenerateReportRequest{
			Floor:       floor,
			Period:      domain.ReportPeriodToday,
			SubmittedBy: "scheduler",
		}
		report, err := j.reports.Generate(ctx, req)
		if err != nil {
			j.logger.Error("scheduled report generation failed",
				zap.Int("floor", floor),
				zap.Error(err))
			continue
		}
		generated++
		j.logger.Info("scheduled report generated",
			zap.Int("floor", floor),
			zap.String("report_id", report.ID.String()))
	}

	j.logger.Info("daily report job completed",
		zap.Int("floors", len(j.floors)),
		zap.Int("generated", generated),
		zap.Duration("duration", time.Since(start)))
}

// RegisterReportJob registers the end-of-day report job with the scheduler.
func RegisterReportJob(scheduler *Scheduler, reports ReportGenerator, floors []int, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewReportJob(reports, floors, logger, timeout)
	return scheduler.AddJob(ReportJobName, cronExpr, job.Run)
}
