// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	enrollmentsfeature "github.com/mentorhq/mentorhub/internal/app/features/enrollments"
	healthfeature "github.com/mentorhq/mentorhub/internal/app/features/health"
	maintenancefeature "github.com/mentorhq/mentorhub/internal/app/features/maintenance"
	meetingsfeature "github.com/mentorhq/mentorhub/internal/app/features/meetings"
	slotsfeature "github.com/mentorhq/mentorhub/internal/app/features/slots"
	enrollmentstore "github.com/mentorhq/mentorhub/internal/app/store/enrollments"
	meetingstore "github.com/mentorhq/mentorhub/internal/app/store/meetings"
	slotstore "github.com/mentorhq/mentorhub/internal/app/store/slotbatches"
	threadstore "github.com/mentorhq/mentorhub/internal/app/store/threads"
	userstore "github.com/mentorhq/mentorhub/internal/app/store/users"
	"github.com/mentorhq/mentorhub/internal/app/system/mailer"
	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MentorHub builds the stores, wires the
// notification pipeline (debounce store, debouncer, SMTP mailer), and
// mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	threads := threadstore.New(db)
	users := userstore.New(db)
	slots := slotstore.New(db)
	enrollments := enrollmentstore.New(db, threads)
	meetings := meetingstore.New(db, appCfg.MeetDomain)

	// Notification pipeline: the debounce store is Redis when configured
	// (entries visible across instances), an in-process TTL cache otherwise.
	var debounceStore notify.Store
	if deps.Redis != nil {
		debounceStore = notify.NewRedis(deps.Redis)
	} else {
		debounceStore = notify.NewMemory(appCfg.NotifyDebounce)
	}
	m := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
		BaseURL:  appCfg.BaseURL,
	}, logger)
	debouncer := notify.NewDebouncer(debounceStore, m, appCfg.NotifyDebounce, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	slotsHandler := &slotsfeature.Handler{
		Slots:           slots,
		Enrollments:     enrollments,
		Meetings:        meetings,
		Threads:         threads,
		Users:           users,
		Notify:          debouncer,
		Log:             logger,
		DefaultTimezone: appCfg.DefaultTimezone,
		BatchExpiryDays: appCfg.BatchExpiryDays,
		BaseURL:         appCfg.BaseURL,
	}
	r.Mount("/slots", slotsfeature.Routes(slotsHandler))

	enrollmentsHandler := &enrollmentsfeature.Handler{
		Enrollments: enrollments,
		Users:       users,
		Notify:      debouncer,
		Log:         logger,
		BaseURL:     appCfg.BaseURL,
	}
	r.Mount("/enrollments", enrollmentsfeature.Routes(enrollmentsHandler))

	meetingsHandler := &meetingsfeature.Handler{
		Meetings: meetings,
		Users:    users,
		Notify:   debouncer,
		Log:      logger,
		BaseURL:  appCfg.BaseURL,
	}
	r.Mount("/meetings", meetingsfeature.Routes(meetingsHandler))

	maintenanceHandler := &maintenancefeature.Handler{
		Enrollments: enrollments,
		Log:         logger,
	}
	r.Mount("/maintenance", maintenancefeature.Routes(maintenanceHandler))

	return r, nil
}
