package jobs

import (
	"context"
	"time"

	"github.com/meera-jewels/retail-api/internal/datawarehouse"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
)

// WarehouseSyncJobName is the name of the warehouse sync job
const WarehouseSyncJobName = "warehouse_sync"

// WarehouseSyncJob pushes report rollups to the finance data warehouse.
// Reports are immutable, so the sync only has to pick up reports newer
// than the last synced one per floor.
type WarehouseSyncJob struct {
	reportRepo *repository.ReportRepository
	warehouse  *datawarehouse.Client
	floors     []int
	logger     *zap.Logger
	timeout    time.Duration
}

func NewWarehouseSyncJob(
	reportRepo *repository.ReportRepository,
	warehouse *datawarehouse.Client,
	floors []int,
	logger *zap.Logger,
	timeout time.Duration,
) *WarehouseSyncJob {
	return &WarehouseSyncJob{
		reportRepo: reportRepo,
		warehouse:  warehouse,
		floors:     floors,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes the warehouse sync. Called by the scheduler.
func (j *WarehouseSyncJob) Run() {
	if !j.warehouse.IsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	synced, failed := 0, 0

	for _, floor := range j.floors {
		lastSynced, err := j.warehouse.LastSyncedAt(ctx, floor)
		if err != nil {
			j.logger.Error("failed to read last warehouse sync time",
				zap.Int("floor", floor),
				zap.Error(err))
			failed++
			continue
		}

		reports, err := j.reportRepo.ListCreatedAfter(ctx, floor, lastSynced)
		if err != nil {
			j.logger.Error("failed to list reports for warehouse sync",
				zap.Int("floor", floor),
				zap.Error(err))
			failed++
			continue
		}

		for i := range reports {
			report := &reports[i]
			rollup := &datawarehouse.ReportRollup{
				ReportID:    report.ID.String(),
				Floor:       report.Floor,
				Period:      string(report.Period),
				StartDate:   report.StartDate,
				EndDate:     report.EndDate,
				LeadCount:   report.LeadCount,
				TotalAmount: report.TotalAmount,
				WonCount:    report.WonCount,
				LostCount:   report.LostCount,
				SubmittedBy: report.SubmittedBy,
				SubmittedAt: report.CreatedAt,
			}
			if err := j.warehouse.UpsertReportRollup(ctx, rollup); err != nil {
				j.logger.Error("warehouse rollup sync failed",
					zap.String("report_id", rollup.ReportID),
					zap.Error(err))
				failed++
				continue
			}
			synced++
		}
	}

	j.logger.Info("warehouse sync job completed",
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterWarehouseSyncJob registers the warehouse sync job with the
// scheduler. Does nothing when the warehouse client is not configured.
func RegisterWarehouseSyncJob(
	scheduler *Scheduler,
	reportRepo *repository.ReportRepository,
	warehouse *datawarehouse.Client,
	floors []int,
	logger *zap.Logger,
	cronExpr string,
	timeout time.Duration,
) error {
	if !warehouse.IsEnabled() {
		logger.Info("warehouse sync job not registered, warehouse disabled")
		return nil
	}
	job := NewWarehouseSyncJob(reportRepo, warehouse, floors, logger, timeout)
	return scheduler.AddJob(WarehouseSyncJobName, cronExpr, job.Run)
}
