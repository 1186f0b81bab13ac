package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/chitra/internal/api"
	"github.com/terraincognita07/chitra/internal/cli"
	"github.com/terraincognita07/chitra/internal/config"
	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/i18n"
	"github.com/terraincognita07/chitra/internal/reminders"
	"github.com/terraincognita07/chitra/internal/services"
)

const usage = `usage: chitra [command]

commands:
  serve        run the HTTP server (default)
  reset-pin    replace the PIN with a temporary one and print it
  set-pin      prompt for a new PIN
  disable-pin  turn the PIN lock off`

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config init failed: %v", err)
	}
	time.Local = cfg.Location

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := run(command, cfg); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func run(command string, cfg *config.Config) error {
	ctx := context.Background()
	switch command {
	case "serve":
		return serve(cfg)
	case "reset-pin":
		return cli.RunResetPinCommand(ctx, cfg.DBPath, os.Stdout)
	case "set-pin":
		return cli.RunSetPinCommand(ctx, cfg.DBPath, os.Stdin, os.Stdout)
	case "disable-pin":
		return cli.RunDisablePinCommand(ctx, cfg.DBPath, os.Stdout)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func serve(cfg *config.Config) error {
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.StartupTimeout)
	defer cancelStartup()

	store, err := db.OpenStore(startupCtx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("database close failed: %v", err)
		}
	}()

	preferences := services.NewPreferencesService(store.Preferences, cfg.DefaultLocale)
	if _, err := preferences.Load(startupCtx); err != nil {
		return fmt.Errorf("preferences init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	notifications, err := newNotificationRuntime(startupCtx, cfg.NativeNotifications)
	if err != nil {
		return fmt.Errorf("reminders init failed: %w", err)
	}
	scheduler := reminders.NewScheduler(notifications.backend, preferences)

	catalog, err := i18n.NewManager(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	suite := services.NewSuite(store, preferences, scheduler, cfg.Location, cfg.StorageFolder)
	suite.UseReminderCopy(catalog)
	scheduler.OnAction(suite.Actions.Handle)

	sweeper, err := reminders.NewSweeper(cfg.ReminderSweep)
	if err != nil {
		return fmt.Errorf("reminder sweep init failed: %w", err)
	}
	suite.RegisterPlanners(sweeper)
	if err := sweeper.Start(lifecycleCtx); err != nil {
		return fmt.Errorf("reminder sweep start failed: %w", err)
	}

	handler := api.NewHandler(api.Dependencies{
		Health:       store,
		Preferences:  suite.Preferences,
		Profiles:     suite.Profiles,
		Security:     suite.Security,
		Tracking:     suite.Tracking,
		Vaccinations: suite.Vaccinations,
		Medicine:     suite.Medicine,
		Feeding:      suite.Feeding,
		CarePoints:   suite.CarePoints,
		Payment:      suite.Payment,
		Export:       suite.Export,
		Reminders:    scheduler,
		Rebuilder:    suite.Reminders,
		Bridge:       notifications.bridge,
		Inbox:        notifications.inbox,
		Messages:     catalog,
		SecretKey:    cfg.SecretKey,
		UnlockTTL:    cfg.UnlockTTL,
		CookieSecure: cfg.CookieSecure,
		Location:     cfg.Location,
	})

	app := fiber.New(fiber.Config{
		AppName:               "Chitra",
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Chitra listening on http://0.0.0.0:%s (db: %s, tz: %s, reminders: %s)",
		cfg.Port, cfg.DBPath, cfg.Location.String(), scheduler.BackendName())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// notificationRuntime holds the reminder backend plus whichever delivery
// surface the HTTP layer exposes for it. Exactly one of bridge and inbox is
// set; the other stays a nil interface.
type notificationRuntime struct {
	backend reminders.Backend
	bridge  api.NativeBridge
	inbox   api.ReminderInbox
}

func newNotificationRuntime(ctx context.Context, native bool) (notificationRuntime, error) {
	if native {
		bridge := reminders.NewBridgeNotifier()
		backend, err := reminders.NewNativeBackend(ctx, bridge)
		if err != nil {
			return notificationRuntime{}, err
		}
		return notificationRuntime{backend: backend, bridge: bridge}, nil
	}

	inbox := reminders.NewInboxPresenter(50)
	inbox.Subscribe(func(notification reminders.Notification) {
		log.Printf("reminders: showing %q (%d)", notification.Title, notification.ID)
	})
	return notificationRuntime{backend: reminders.NewTimerBackend(inbox), inbox: inbox}, nil
}
