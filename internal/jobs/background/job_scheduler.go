package background

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockmed/internal/analytics"
	"stockmed/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the recurring background work: the daily alert emails
// and the periodic dashboard snapshot refresh.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	analyticsSvc *analytics.Service
	dispatcher   *jobs.AlertDispatcher
	alertHour    int
}

func NewJobScheduler(analyticsSvc *analytics.Service, dispatcher *jobs.AlertDispatcher, alertHour int) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		analyticsSvc: analyticsSvc,
		dispatcher:   dispatcher,
		alertHour:    alertHour,
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(js.alertHour), 0, 0))),
		gocron.NewTask(js.runAlertDispatch),
		gocron.WithName("inventory-alert-dispatch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create alert dispatch job: %w", err)
	}

	_, err = js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.refreshDashboard),
		gocron.WithName("dashboard-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create dashboard refresh job: %w", err)
	}
	return nil
}

func (js *JobScheduler) runAlertDispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := js.dispatcher.Dispatch(ctx, time.Now())
	if err != nil {
		log.Printf("alert dispatch finished with errors (sent %d): %v", sent, err)
		return
	}
	log.Printf("alert dispatch complete, sent %d emails", sent)
}

func (js *JobScheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := js.analyticsSvc.Refresh(ctx, time.Now()); err != nil {
		log.Printf("dashboard refresh failed: %v", err)
	}
}
