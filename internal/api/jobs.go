package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperLectionary/core/calendar"
	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/lectionary"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobRequest is the body of POST /jobs.
type JobRequest struct {
	Rows []lectionary.Row `json:"rows"`

	// Group applies to rows that name none.
	Group string `json:"group,omitempty"`
}

// Job is an asynchronous lectionary build.
type Job struct {
	ID          string                 `json:"id"`
	Status      JobStatus              `json:"status"`
	Progress    int                    `json:"progress"` // 0-100
	Rows        int                    `json:"rows"`
	RunID       string                 `json:"run_id,omitempty"`
	Stats       *lectionary.Stats      `json:"stats,omitempty"`
	Lectionary  *lectionary.Lectionary `json:"lectionary,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
	CompletedAt string                 `json:"completed_at,omitempty"`

	cancel context.CancelFunc
}

// summary drops the assembled lectionary for listings.
func (j Job) summary() Job {
	j.Lectionary = nil
	return j
}

// JobStore keeps jobs in memory. Get and List return copies.
type JobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create registers a pending job for rows. Cancelling the job cancels the
// returned context.
func (s *JobStore) Create(parent context.Context, rows int) (Job, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	now := time.Now().UTC().Format(time.RFC3339)

	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobStatusPending,
		Rows:      rows,
		CreatedAt: now,
		UpdatedAt: now,
		cancel:    cancel,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job, ctx
}

// Get retrieves a job by ID.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// update applies fn to a job that has not yet finished. It reports whether
// fn ran.
func (s *JobStore) update(id string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return false
	}
	fn(job)
	now := time.Now().UTC().Format(time.RFC3339)
	job.UpdatedAt = now
	if job.Status.Terminal() {
		job.CompletedAt = now
		job.cancel()
	}
	return true
}

// List returns job summaries, newest first.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.summary())
	}
	s.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b Job) int {
		if c := strings.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return jobs
}

// Cancel stops a pending or running job.
func (s *JobStore) Cancel(id string) error {
	if _, ok := s.Get(id); !ok {
		return errors.NewNotFound("job", id)
	}
	if !s.update(id, func(j *Job) { j.Status = JobStatusCancelled }) {
		return errors.NewValidation("status", "job has already finished")
	}
	return nil
}

// runJob builds the rows in the background, reporting progress over the hub.
func (s *Server) runJob(ctx context.Context, id string, rows []lectionary.Row) {
	ctx = logging.WithRequestID(ctx, id)

	last := -1
	builder := s.builder.OnProgress(func(done, total int) {
		pct := done * 100 / max(total, 1)
		if pct == last {
			return
		}
		last = pct
		s.jobs.update(id, func(j *Job) {
			j.Status = JobStatusRunning
			j.Progress = pct
		})
		s.hub.Broadcast(ProgressMessage{Type: MessageProgress, JobID: id, Progress: pct, Done: done, Total: total})
	})

	s.jobs.update(id, func(j *Job) { j.Status = JobStatusRunning })
	batch, err := builder.BuildAll(ctx, rows, s.cfg.Workers)
	if err == nil && s.batches != nil {
		err = s.batches.SaveBatch(ctx, batch)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.InfoContext(ctx, "job_cancelled", "job_id", id)
			s.jobs.update(id, func(j *Job) { j.Status = JobStatusCancelled })
			return
		}
		logging.LoggerFromContext(ctx).Error("job_failed", "job_id", id, "error", err)
		s.jobs.update(id, func(j *Job) {
			j.Status = JobStatusFailed
			j.Error = err.Error()
		})
		s.hub.Broadcast(ProgressMessage{Type: MessageError, JobID: id, Message: err.Error()})
		return
	}

	stats := batch.Stats
	s.jobs.update(id, func(j *Job) {
		j.Status = JobStatusCompleted
		j.Progress = 100
		j.RunID = batch.RunID
		j.Stats = &stats
		j.Lectionary = batch.Lectionary()
	})
	s.hub.Broadcast(ProgressMessage{
		Type:     MessageComplete,
		JobID:    id,
		Progress: 100,
		Message:  fmt.Sprintf("%d records from %d rows", stats.Records, stats.Rows),
		Data:     map[string]any{"run_id": batch.RunID, "stats": stats},
	})
}

// handleJobs handles GET /jobs (list) and POST /jobs (start a build).
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs := s.jobs.List()
		respondMeta(w, http.StatusOK, jobs, len(jobs))
	case http.MethodPost:
		s.createJob(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if len(req.Rows) == 0 {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "rows are required")
		return
	}

	for i := range req.Rows {
		row := &req.Rows[i]
		if row.Index == 0 {
			row.Index = i + 1
		}
		if row.Source == "" {
			row.Source = fmt.Sprintf("rows[%d]", i)
		}
		if row.Group == "" {
			row.Group = calendar.Group(req.Group)
		}
	}

	job, ctx := s.jobs.Create(s.baseContext(), len(req.Rows))
	go s.runJob(ctx, job.ID, req.Rows)

	respond(w, http.StatusAccepted, job)
}

// handleJobByID handles GET /jobs/{id} (status and result) and
// DELETE /jobs/{id} (cancel).
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Job ID is required")
		return
	}
	if err := uuid.Validate(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Job ID must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		job, ok := s.jobs.Get(id)
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
			return
		}
		respond(w, http.StatusOK, job)
	case http.MethodDelete:
		if err := s.jobs.Cancel(id); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
				return
			}
			respondError(w, http.StatusConflict, "CANCEL_FAILED", err.Error())
			return
		}
		s.hub.Broadcast(ProgressMessage{Type: MessageError, JobID: id, Message: "cancelled"})
		respond(w, http.StatusOK, map[string]string{"message": "Job cancelled"})
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}
