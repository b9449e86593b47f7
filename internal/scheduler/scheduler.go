package scheduler

import (
	"context"
	"log"
	"sync"

	"homepanel/internal/db"
	"homepanel/internal/taskqueue"

	"github.com/robfig/cron/v3"
)

// Scheduler runs scene schedules ("every evening at 19:00 run Movie
// Night") by enqueuing scene activations on their cron expressions.
type Scheduler struct {
	cron      *cron.Cron
	db        *db.DB
	queue     *taskqueue.Queue
	jobMap    map[string]cron.EntryID // schedule ID -> cron entry
	jobMapMux sync.RWMutex
}

// NewScheduler creates a scheduler
func NewScheduler(dbConn *db.DB, queue *taskqueue.Queue) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     dbConn,
		queue:  queue,
		jobMap: make(map[string]cron.EntryID),
	}
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}

// LoadSchedules loads all enabled scene schedules from the database
func (s *Scheduler) LoadSchedules(ctx context.Context) error {
	schedules, err := s.db.GetAllSchedules(ctx)
	if err != nil {
		return err
	}
	log.Printf("SCHEDULER: Loading %d schedules", len(schedules))

	for _, sch := range schedules {
		if !sch.Enabled {
			continue
		}
		if err := s.addJob(sch.ID, sch.SceneID, sch.CronExpression); err != nil {
			log.Printf("SCHEDULER: Failed to schedule scene %s with cron %q: %v", sch.SceneID, sch.CronExpression, err)
		}
	}
	return nil
}

// ReloadSchedules drops every scheduled job and reloads from the database.
// Called after schedules are created, updated, or deleted via the API.
func (s *Scheduler) ReloadSchedules(ctx context.Context) error {
	s.jobMapMux.Lock()
	for schedID, entryID := range s.jobMap {
		s.cron.Remove(entryID)
		log.Printf("SCHEDULER: Removed schedule %s", schedID)
	}
	s.jobMap = make(map[string]cron.EntryID)
	s.jobMapMux.Unlock()

	return s.LoadSchedules(ctx)
}

func (s *Scheduler) addJob(scheduleID, sceneID, spec string) error {
	entryID, err := s.cron.AddFunc(spec, func() {
		log.Printf("SCHEDULER: Schedule %s triggered for scene %s", scheduleID, sceneID)
		if err := s.queue.EnqueueSceneRun(sceneID); err != nil {
			log.Printf("SCHEDULER: Failed to enqueue scene %s: %v", sceneID, err)
		}
	})
	if err != nil {
		return err
	}

	s.jobMapMux.Lock()
	s.jobMap[scheduleID] = entryID
	s.jobMapMux.Unlock()

	log.Printf("SCHEDULER: Scheduled scene %s with cron %q (entry %d)", sceneID, spec, entryID)
	return nil
}

// ScheduledJobCount returns the number of active cron entries
func (s *Scheduler) ScheduledJobCount() int {
	s.jobMapMux.RLock()
	defer s.jobMapMux.RUnlock()
	return len(s.jobMap)
}
