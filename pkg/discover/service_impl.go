package discover

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultHydrationConcurrency = 8
	defaultReconcileBatchSize   = 500
)

// service implements the Service interface
type service struct {
	index     IndexRepository
	sources   SourceRepository
	profiles  ProfileProvider
	mediaURLs MediaURLResolver
	logger    *slog.Logger
	hooks     *Hooks

	resolvers            map[ContentType]ContentResolver
	overrides            []ContentResolver
	hydrationConcurrency int
	reconcileBatchSize   int
	now                  func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithIndexRepository sets the index repository for the service
func WithIndexRepository(repo IndexRepository) Option {
	return func(s *service) {
		s.index = repo
	}
}

// WithSourceRepository sets the source entity lookups used by hydration and reconciliation
func WithSourceRepository(repo SourceRepository) Option {
	return func(s *service) {
		s.sources = repo
	}
}

// WithProfileProvider sets the owner profile provider
func WithProfileProvider(provider ProfileProvider) Option {
	return func(s *service) {
		s.profiles = provider
	}
}

// WithMediaURLResolver sets how media object keys become URLs
func WithMediaURLResolver(resolver MediaURLResolver) Option {
	return func(s *service) {
		s.mediaURLs = resolver
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks sets lifecycle observers
func WithHooks(hooks *Hooks) Option {
	return func(s *service) {
		s.hooks = hooks
	}
}

// WithHydrationConcurrency bounds concurrent lookups per page. 1 hydrates sequentially.
func WithHydrationConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.hydrationConcurrency = n
		}
	}
}

// WithReconcileBatchSize sets the page size of reconciliation and cleanup sweeps
func WithReconcileBatchSize(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.reconcileBatchSize = n
		}
	}
}

// WithResolver replaces the built-in resolver for the content types it declares
func WithResolver(resolver ContentResolver) Option {
	return func(s *service) {
		s.overrides = append(s.overrides, resolver)
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	return newService(options...)
}

func newService(options ...Option) (*service, error) {
	s := &service{
		profiles:             NoopProfileProvider{},
		mediaURLs:            NoopMediaURLResolver{},
		logger:               slog.Default(),
		hooks:                &Hooks{},
		hydrationConcurrency: defaultHydrationConcurrency,
		reconcileBatchSize:   defaultReconcileBatchSize,
		now:                  time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.index == nil {
		return nil, fmt.Errorf("index repository is required")
	}
	if s.sources == nil {
		return nil, fmt.Errorf("source repository is required")
	}
	if s.hooks == nil {
		s.hooks = &Hooks{}
	}

	s.resolvers = make(map[ContentType]ContentResolver)
	for _, r := range defaultResolvers(s.sources, s.mediaURLs) {
		s.register(r)
	}
	for _, r := range s.overrides {
		s.register(r)
	}

	return s, nil
}

func (s *service) register(r ContentResolver) {
	for _, t := range r.ContentTypes() {
		s.resolvers[t] = r
	}
}

func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
