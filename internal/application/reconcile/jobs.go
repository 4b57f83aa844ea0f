package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// JobStatus is the lifecycle state of a background reconciliation
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Done reports whether the job has finished, successfully or not
func (s JobStatus) Done() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a reconciliation running in the background
type Job struct {
	ID          string
	Status      JobStatus
	Category    records.Category
	StartedAt   time.Time
	CompletedAt *time.Time
	Progress    matcher.Progress
	Report      *Report
	Error       string
}

// Start runs a reconciliation in the background and returns its job ID.
// An empty category reconciles the whole dataset.
//
// The passed context is not the parent of the job: the job keeps running
// after an HTTP request that started it has returned.
func (s *Service) Start(_ context.Context, category records.Category, req Request) (string, error) {
	base := s.matching
	if category != "" {
		base = base.ForCategory()
	}
	// Fail fast on bad overrides instead of recording a failed job
	if _, _, err := s.resolve(req, base); err != nil {
		return "", err
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobPending,
		Category:  category,
		StartedAt: time.Now(),
	}

	s.jobsMutex.Lock()
	s.jobs[job.ID] = job
	s.jobsMutex.Unlock()

	go s.runJob(job.ID, category, req)

	s.logger.Info("Reconciliation job started",
		"job_id", job.ID,
		"category", string(category),
		"bookings", len(req.Bookings),
		"expenses", len(req.Expenses))

	return job.ID, nil
}

func (s *Service) runJob(jobID string, category records.Category, req Request) {
	s.updateJob(jobID, func(job *Job) { job.Status = JobRunning })

	next := req.OnProgress
	req.OnProgress = func(p matcher.Progress) {
		s.updateJob(jobID, func(job *Job) { job.Progress = p })
		if next != nil {
			next(p)
		}
	}

	var (
		report *Report
		err    error
	)
	if category == "" {
		report, err = s.Reconcile(context.Background(), req)
	} else {
		report, err = s.ReconcileCategory(context.Background(), category, req)
	}

	s.updateJob(jobID, func(job *Job) {
		now := time.Now()
		job.CompletedAt = &now
		if err != nil {
			job.Status = JobFailed
			job.Error = err.Error()
			return
		}
		job.Status = JobCompleted
		job.Report = report
	})

	if err != nil {
		s.logger.Error("Reconciliation job failed", "job_id", jobID, "error", err)
		return
	}
	s.logger.Info("Reconciliation job completed", "job_id", jobID, "matches", report.Stats.Total)
}

func (s *Service) updateJob(jobID string, fn func(*Job)) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		fn(job)
	}
}

// GetJob returns a snapshot of a job
func (s *Service) GetJob(jobID string) (Job, error) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return Job{}, fmt.Errorf("job not found: %s", jobID)
	}
	return *job, nil
}

// ListJobs returns snapshots of all jobs, most recently started first
func (s *Service) ListJobs() []Job {
	s.jobsMutex.RLock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	s.jobsMutex.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs
}

// ActiveJobs counts jobs that have not finished
func (s *Service) ActiveJobs() int {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	active := 0
	for _, job := range s.jobs {
		if !job.Status.Done() {
			active++
		}
	}
	return active
}

// CleanupJobs removes finished jobs that completed more than maxAge ago
func (s *Service) CleanupJobs(maxAge time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range s.jobs {
		if job.Status.Done() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
