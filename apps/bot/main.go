package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/altedy/core"
	"github.com/trezcool/altedy/core/classroom"
	"github.com/trezcool/altedy/core/dialog"
	"github.com/trezcool/altedy/core/schedule"
	"github.com/trezcool/altedy/core/user"
	emailsvc "github.com/trezcool/altedy/services/email"
	logsvc "github.com/trezcool/altedy/services/logger"
	telegramsvc "github.com/trezcool/altedy/services/telegram"
	mongodb "github.com/trezcool/altedy/storage/database/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	debug := core.Conf.GetBool("debug")

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "BOT : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)
	logger.Enable(!debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up DB
	db, err := mongodb.Open(ctx)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	bot, err := telegramsvc.NewBot(logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up bot: %v", err), err)
	}

	usrSvc := user.NewService(mongodb.NewUserRepository(db))
	deadlineRepo := mongodb.NewDeadlineRepository(db)
	clsSvc := classroom.NewService(mongodb.NewClassroomRepository(db), deadlineRepo, bot, logger)

	machine := dialog.NewMachine(bot, usrSvc, clsSvc, logger)

	notifier := schedule.NewNotifier(clsSvc, usrSvc, bot, mailSvc, logger)
	scheduler := schedule.NewScheduler(deadlineRepo, notifier, logger)

	// =========================================================================
	// Start

	logger.Info(fmt.Sprintf("Application initializing: env %q", core.Conf.GetString("env")))
	defer logger.Info("Application stopped")

	scheduler.Start(ctx)
	defer scheduler.Stop()

	go bot.Run(ctx, machine)

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	cancel()
}
