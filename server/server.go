package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/paramountdax-exchange/affiliate_api/actions"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/aws"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/sendgrid"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/kafka"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/redis"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config  config.Config
	actions *actions.Actions
	service *service.Service
	repo    *queries.Repo
	HTTP    *http.Server
}

// NewServer connects the database and the external integrations and builds the api
func NewServer(cfg config.Config) Server {
	repo, err := queries.NewRepo(cfg.DatabaseCluster)
	if err != nil {
		log.Fatal().Str("section", "server").Err(err).Msg("Unable to connect to the database")
	}

	counter, err := redis.NewCounter(cfg.Redis)
	if err != nil {
		log.Fatal().Str("section", "server").Err(err).Msg("Unable to connect to redis")
	}

	opts := []service.Option{
		service.WithSendgrid(sendgrid.New(cfg.Server.Sendgrid)),
		service.WithPublisher(kafka.NewPublisher(cfg.Kafka)),
		service.WithCounter(counter),
	}
	if cfg.AWS.Enabled() {
		uploader, err := aws.NewUploader(cfg.AWS)
		if err != nil {
			log.Fatal().Str("section", "server").Err(err).Msg("Unable to create the statement uploader")
		}
		opts = append(opts, service.WithUploader(uploader))
	}

	dataServices := service.NewService(cfg, repo, opts...)
	// start the background jobs
	dataServices.Start()

	userActions := actions.NewActions(cfg, dataServices)
	return &server{
		config:  cfg,
		repo:    repo,
		service: dataServices,
		actions: userActions,
		HTTP:    newHTTPServer(cfg, NewRouter(cfg, userActions)),
	}
}

// Listen for http requests until a termination signal is received
func (srv *server) Listen() {
	go srv.ListenToRequests()
	go monitor.LoopProfilingServer(srv.config.Server.Monitoring)

	srv.stopOnSignal()
}

func (srv *server) stopOnSignal() {
	// listen for termination signals
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// define a timeout in which the graceful shutdown procedure should happen before forcing the shutdown
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	monitor.ShutdownServer()
	if srv.HTTP != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.HTTP.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
		}
	}

	srv.service.CloseCrons()
	srv.service.Close()

	featureflags.Close()
	// make sure database connection is closed on program exit
	srv.repo.Close()

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("state", "complete").Msg("All workers terminated")
}
