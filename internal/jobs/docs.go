// Package jobs provides scheduled background tasks for the maintenance
// service.
//
// Jobs are built on github.com/robfig/cron/v3 with a seconds field and skip a
// tick while the previous execution is still running.
//
// # Available Jobs
//
//  1. ApprovalReminderJob - re-notifies target branches about approval
//     requests left PENDING longer than the configured threshold. Requests
//     never expire; the job only stamps the reminder time.
//
// # Usage
//
//	reminder := jobs.NewApprovalReminderJob(remindHandler, jobs.ApprovalReminderConfig{
//		Schedule:  "0 0 * * * *",
//		OlderThan: 24 * time.Hour,
//		BatchSize: 100,
//	}, logger)
//	jobManager := jobs.NewJobManager(logger, reminder)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
package jobs
