package sweeper

import (
	"time"

	"go.uber.org/zap"
)

type jobRun struct {
	job        string
	runID      string
	startedAt  time.Time
	sweptCount int
	errorCount int
}

func (r *jobRun) AddSwept(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.sweptCount += count
}

func (r *jobRun) IncError() {
	if r == nil {
		return
	}
	r.errorCount++
}

func (s *Sweeper) newJobRun(job string) *jobRun {
	return &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: time.Now(),
	}
}

func (s *Sweeper) logJobStart(run *jobRun) {
	s.log.Info("sweeper.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
	)
}

func (s *Sweeper) logJobFinish(run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Int("swept_count", run.sweptCount),
		zap.Int("error_count", run.errorCount),
	}
	if run.errorCount > 0 {
		s.log.Warn("sweeper.job.finish", fields...)
		return
	}
	s.log.Info("sweeper.job.finish", fields...)
}
