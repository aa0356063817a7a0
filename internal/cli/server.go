package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/catalog"
	"refonte-quiz-service/internal/config"
	"refonte-quiz-service/internal/infra/brevo"
	"refonte-quiz-service/internal/infra/memory"
	"refonte-quiz-service/internal/infra/mongo"
	"refonte-quiz-service/internal/infra/postgres"
	"refonte-quiz-service/internal/infra/rabbitmq"
	redisstore "refonte-quiz-service/internal/infra/redis"
	transport "refonte-quiz-service/internal/transport/http"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRunTTL      = 30 * time.Minute
	defaultCallTimeout = 10 * time.Second
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      svc.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		glog.Infof("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		glog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// service is the wired application plus the connections it owns.
type service struct {
	handler http.Handler
	closers []func()
}

func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildService(ctx context.Context, cfg config.Config) (*service, error) {
	svc := &service{}
	fail := func(err error) (*service, error) {
		svc.Close()
		return nil, err
	}

	contacts, err := brevo.NewClient(cfg.Contact.BaseURL, cfg.Contact.APIKey, config.TTLDuration(cfg.Contact.Timeout, defaultCallTimeout))
	if err != nil {
		return fail(err)
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL); err != nil {
			return fail(err)
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(errors.Wrap(err, "connect postgres"))
		}
		svc.closers = append(svc.closers, pool.Close)
	}

	loader, err := catalogLoader(cfg, pool)
	if err != nil {
		return fail(err)
	}
	quizCatalog, err := loader.LoadCatalog(ctx)
	if err != nil {
		return fail(err)
	}
	glog.Infof("catalog loaded from %s: %d categories", cfg.Catalog.Source, len(quizCatalog.Sections))

	store, err := submissionStore(ctx, cfg, svc)
	if err != nil {
		return fail(err)
	}

	opts := app.SubmissionOptions{
		ListIDs:     cfg.Contact.ListIDs,
		CallTimeout: config.TTLDuration(cfg.Contact.Timeout, defaultCallTimeout),
	}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return fail(err)
		}
		svc.closers = append(svc.closers, publisher.Close)
		opts.Publisher = publisher
	}
	submissions := app.NewSubmissionService(store, contacts, opts)

	var runs app.RunRepository = memory.NewRunStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		runs = redisstore.NewRunStore(client, config.TTLDuration(cfg.Redis.TTL, defaultRunTTL))
	}
	quiz := app.NewQuizService(runs, app.NewStepper(quizCatalog), submissions)

	svc.handler = transport.NewRouter(transport.RouterConfig{
		Submissions:    submissions,
		Quiz:           quiz,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	return svc, nil
}

func catalogLoader(cfg config.Config, pool *pgxpool.Pool) (catalog.Loader, error) {
	switch cfg.Catalog.Source {
	case "embedded":
		return catalog.NewEmbeddedLoader(), nil
	case "file":
		if cfg.Catalog.Path == "" {
			return nil, errors.New("catalog.path required for file source")
		}
		return catalog.NewFileLoader(cfg.Catalog.Path), nil
	case "postgres":
		if pool == nil {
			return nil, errors.New("catalog source postgres requires postgres.url")
		}
		return postgres.NewCatalogStore(pool, cfg.Catalog.Name), nil
	}
	return nil, errors.Errorf("unknown catalog source %q", cfg.Catalog.Source)
}

func submissionStore(ctx context.Context, cfg config.Config, svc *service) (app.SubmissionStore, error) {
	switch cfg.Store.Driver {
	case "memory":
		glog.Warning("submissions are kept in memory and lost on restart")
		return memory.NewSubmissionStore(), nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, errors.New("store driver postgres requires postgres.url")
		}
		db := openBun(cfg.Postgres.URL)
		svc.closers = append(svc.closers, func() { _ = db.Close() })
		return postgres.NewSubmissionStore(db), nil
	case "mongo":
		client, err := mongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = client.Disconnect(context.Background()) })
		return mongo.NewSubmissionStore(client.Database(cfg.Mongo.Database), cfg.Store.Collection), nil
	}
	return nil, errors.Errorf("unknown store driver %q", cfg.Store.Driver)
}
