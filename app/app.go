package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abakhtin/library-api/config"
	"github.com/abakhtin/library-api/internal/events"
	"github.com/abakhtin/library-api/internal/handler"
	"github.com/abakhtin/library-api/internal/repository"
	"github.com/abakhtin/library-api/internal/server"
	"github.com/abakhtin/library-api/internal/service"
	"github.com/abakhtin/library-api/migrations"
	"github.com/abakhtin/library-api/pkg/kafka"
	"github.com/abakhtin/library-api/pkg/logger"
	"github.com/abakhtin/library-api/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	bookRepo, err := repository.NewBookRepository(db, log)
	if err != nil {
		log.Fatal("book repo", zap.Error(err))
	}
	loanRepo, err := repository.NewLoanRepository(db, log)
	if err != nil {
		log.Fatal("loan repo", zap.Error(err))
	}

	var pub service.EventPublisher = events.NewNopPublisher()
	var kafkaPub *events.Publisher
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		kafkaPub = events.NewPublisher(producer, log)
		pub = kafkaPub
	}

	bookSvc := service.NewBookService(bookRepo, log)
	loanSvc := service.NewLoanService(loanRepo, pub, log)

	h := handler.New(bookSvc, loanSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Error("producer close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
