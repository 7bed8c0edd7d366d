package api

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/internal/batch"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) active() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// Job is an asynchronous transcription of a word list.
type Job struct {
	ID          string          `json:"id"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"` // 0-100
	Total       int             `json:"total"`
	Done        int             `json:"done"`
	Failed      int             `json:"failed"`
	Results     []Transcription `json:"results,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	CompletedAt string          `json:"completed_at,omitempty"`

	created time.Time
	words   []string
	cancel  context.CancelFunc
}

// snapshot must be called with the store lock held.
func (j *Job) snapshot() Job {
	c := *j
	c.Results = slices.Clone(j.Results)
	c.words = nil
	c.cancel = nil
	return c
}

// JobStore runs jobs and keeps them in memory.
type JobStore struct {
	mu         sync.RWMutex
	jobs       map[string]*Job
	phonemiser Phonemiser
	workers    int
	hub        *Hub
	wg         sync.WaitGroup
}

// NewJobStore creates a store whose jobs use up to workers goroutines
// each and report progress on hub.
func NewJobStore(p Phonemiser, workers int, hub *Hub) *JobStore {
	return &JobStore{
		jobs:       make(map[string]*Job),
		phonemiser: p,
		workers:    workers,
		hub:        hub,
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Create registers a job for words and starts it.
func (s *JobStore) Create(words []string) Job {
	ctx, cancel := context.WithCancel(context.Background())
	t := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Status:    JobStatusPending,
		Total:     len(words),
		CreatedAt: t.UTC().Format(time.RFC3339),
		UpdatedAt: t.UTC().Format(time.RFC3339),
		created:   t,
		words:     slices.Clone(words),
		cancel:    cancel,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	snap := job.snapshot()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, job)
	}()
	return snap
}

type jobItem struct {
	index int
	word  string
}

func (s *JobStore) run(ctx context.Context, job *Job) {
	s.mu.Lock()
	if job.Status != JobStatusPending {
		s.mu.Unlock()
		return
	}
	job.Status = JobStatusRunning
	job.UpdatedAt = now()
	words := job.words
	s.mu.Unlock()

	s.hub.Broadcast(ProgressMessage{Type: "progress", Operation: "job", JobID: job.ID, Stage: "running"})

	pool := batch.NewWorkerPool[jobItem, jobItem](s.workers, len(words))
	results := make([]Transcription, len(words))
	pool.Start(ctx, func(_ context.Context, it jobItem) jobItem {
		phones, err := s.phonemiser.Phonemise(it.word)
		if err != nil {
			results[it.index] = Transcription{Word: it.word, Error: err.Error()}
		} else {
			results[it.index] = Transcription{Word: it.word, Phones: phones}
		}
		return it
	})
	for i, w := range words {
		if err := pool.Submit(ctx, jobItem{index: i, word: w}); err != nil {
			break
		}
	}
	pool.Close()

	lastProgress := 0
	for it := range pool.Results() {
		s.mu.Lock()
		job.Done++
		if results[it.index].Error != "" {
			job.Failed++
		}
		job.Progress = job.Done * 100 / max(job.Total, 1)
		job.UpdatedAt = now()
		progress := job.Progress
		s.mu.Unlock()

		if progress != lastProgress {
			lastProgress = progress
			s.hub.Broadcast(ProgressMessage{
				Type:      "progress",
				Operation: "job",
				JobID:     job.ID,
				Stage:     "transcribing",
				Progress:  progress,
			})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || job.Status == JobStatusCancelled {
		return
	}
	job.Status = JobStatusCompleted
	job.Progress = 100
	job.Results = results
	job.UpdatedAt = now()
	job.CompletedAt = job.UpdatedAt
	job.cancel()
	s.hub.Broadcast(ProgressMessage{
		Type:      "complete",
		Operation: "job",
		JobID:     job.ID,
		Progress:  100,
		Data:      map[string]any{"total": job.Total, "failed": job.Failed},
	})
}

// Get returns a snapshot of the job with id.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.snapshot(), true
}

// List returns snapshots of all jobs, oldest first, without results.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snap := job.snapshot()
		snap.Results = nil
		out = append(out, snap)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Job) int {
		if c := a.created.Compare(b.created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Cancel stops an active job.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return errors.NewNotFound("job", id)
	}
	if !job.Status.active() {
		return &errors.ValidationError{Field: "status", Value: string(job.Status), Message: "job is not running"}
	}
	job.cancel()
	job.Status = JobStatusCancelled
	job.UpdatedAt = now()
	job.CompletedAt = job.UpdatedAt
	s.hub.Broadcast(ProgressMessage{Type: "error", Operation: "job", JobID: id, Message: "job cancelled"})
	return nil
}

// Remove deletes a finished job.
func (s *JobStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return errors.NewNotFound("job", id)
	}
	if job.Status.active() {
		return &errors.ValidationError{Field: "status", Value: string(job.Status), Message: "job is still running"}
	}
	delete(s.jobs, id)
	return nil
}

// CancelAll cancels every active job and waits for their goroutines.
func (s *JobStore) CancelAll() {
	s.mu.RLock()
	var ids []string
	for id, job := range s.jobs {
		if job.Status.active() {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		_ = s.Cancel(id)
	}
	s.wg.Wait()
}

// Wait blocks until every started job goroutine has returned.
func (s *JobStore) Wait() {
	s.wg.Wait()
}

// handleJobs handles GET /jobs (list) and POST /jobs (create).
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs := s.jobs.List()
		respondList(w, http.StatusOK, jobs, len(jobs))
	case http.MethodPost:
		words, ok := decodeWords(w, r)
		if !ok || !validWords(w, words) {
			return
		}
		job := s.jobs.Create(words)
		logging.InfoContext(r.Context(), "job created", "job_id", job.ID, "words", len(words))
		respond(w, http.StatusCreated, job)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

// handleJobByID handles GET /jobs/{id} and DELETE /jobs/{id}. DELETE
// cancels an active job and removes a finished one.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Job ID is required")
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
		s.deleteJob(w, r, id)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request, id string) {
	job, ok := s.jobs.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
		return
	}

	var err error
	message := "Job cancelled"
	if job.Status.active() {
		err = s.jobs.Cancel(id)
	} else {
		err = s.jobs.Remove(id)
		message = "Job deleted"
	}
	switch {
	case err == nil:
		logging.InfoContext(r.Context(), strings.ToLower(message), "job_id", id)
		respond(w, http.StatusOK, map[string]string{"message": message})
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		logging.WarnContext(r.Context(), "job state changed during delete", "job_id", id, "error", err)
		respondError(w, http.StatusConflict, "JOB_STATE_CHANGED", err.Error())
	}
}
