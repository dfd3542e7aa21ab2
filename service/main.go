package service

import (
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/crons"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/aws"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/sendgrid"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/kafka"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/redis"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

// Service structure
type Service struct {
	cfg       config.Config
	repo      *queries.Repo
	sendgrid  sendgrid.Sendgrid
	events    kafka.Publisher
	counter   redis.Counter
	uploader  aws.Uploader
	generator ContentGenerator
	now       func() time.Time
}

// Option customizes the service dependencies
type Option func(*Service)

func WithSendgrid(sg sendgrid.Sendgrid) Option {
	return func(s *Service) { s.sendgrid = sg }
}

func WithPublisher(p kafka.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithCounter(c redis.Counter) Option {
	return func(s *Service) { s.counter = c }
}

func WithUploader(u aws.Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

func WithContentGenerator(g ContentGenerator) Option {
	return func(s *Service) { s.generator = g }
}

// WithClock replaces the time source, used by tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the service on top of an opened repo. Missing integrations
// fall back to their noop or in memory versions.
func NewService(cfg config.Config, repo *queries.Repo, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		repo:      repo,
		sendgrid:  sendgrid.New(sendgrid.Config{}),
		events:    kafka.NewPublisher(kafka.Config{}),
		generator: TemplateGenerator{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.counter == nil {
		s.counter = redis.NewMemoryCounter(s.now)
	}
	return s
}

// Start the background jobs
func (service *Service) Start() {
	crons.Start(service.cfg.Crons, service.repo)
}

// CloseCrons stops the background jobs
func (service *Service) CloseCrons() {
	crons.Close()
}

// Close the external clients of the service
func (service *Service) Close() {
	if err := service.events.Close(); err != nil {
		log.Error().Err(err).Str("section", "service").Str("action", "close").Msg("Unable to close event publisher")
	}
	if err := service.counter.Close(); err != nil {
		log.Error().Err(err).Str("section", "service").Str("action", "close").Msg("Unable to close quota counter")
	}
}

// GetRepo returns the persistence handle of the service
func (service *Service) GetRepo() *queries.Repo {
	return service.repo
}

// GetConfig godoc
func (service *Service) GetConfig() config.Config {
	return service.cfg
}
