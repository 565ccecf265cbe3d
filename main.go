package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/artemstakhov/portfolio/internal/config"
	"github.com/artemstakhov/portfolio/internal/contact"
	"github.com/artemstakhov/portfolio/internal/i18n"
	"github.com/artemstakhov/portfolio/internal/logging"
	"github.com/artemstakhov/portfolio/internal/session"
	"github.com/artemstakhov/portfolio/internal/store"
	"github.com/artemstakhov/portfolio/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site with a contact form",
		SilenceUsage: true,
	}
	config.BindFlags(root.PersistentFlags())
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSendCmd())
	return root
}

// setup resolves config and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *logging.ZapLogger, error) {
	cfg, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, cfg, log); err != nil {
				log.Error(ctx, "server stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logging.ZapLogger) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	locales, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	hook := contact.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout)
	defer hook.Close()
	if cfg.WebhookURL == "" {
		log.Warn(ctx, "webhook url is not set, contact submissions will fail")
	}

	pipeline := contact.NewPipeline(contact.Options{Sender: hook, Recorder: db, Logger: log})
	sessions := session.NewStore(session.Limits{
		TTL:                cfg.SessionTTL,
		MaxSessions:        cfg.MaxSessions,
		MaxAttachmentBytes: cfg.AttachmentBudget,
	})

	site, err := web.New(web.Deps{
		Pipeline:           pipeline,
		Sessions:           sessions,
		Locales:            locales,
		Log:                db,
		Logger:             log,
		Profile:            profile,
		Admin:              web.Admin{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		HashSalt:           cfg.HashSalt,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		Retention:          cfg.Retention,
	})
	if err != nil {
		return err
	}
	announceAdmin(ctx, log, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Leave in-flight webhook deliveries time to settle.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.WebhookTimeout+5*time.Second)
		defer cancel()
		log.Info(gctx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		runMaintenance(gctx, log, db, sessions, cfg.Retention, time.Hour)
		return nil
	})
	return g.Wait()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			log.Info(cmd.Context(), "migrations applied", "db", cfg.DatabasePath)
			return db.Close()
		},
	}
}

func newSendCmd() *cobra.Command {
	var (
		fixed  contact.FixedFields
		lang   string
		cvPath string
	)
	values := make(map[contact.FieldType]*string)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a contact form message from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			locales, err := i18n.Load(cfg.DefaultLocale)
			if err != nil {
				return err
			}
			loc := locales.Match(lang, "")

			var entries []contact.Entry
			for _, t := range contact.Catalog() {
				if p, ok := values[t]; ok && *p != "" {
					entries = append(entries, contact.Entry{Type: t, Value: *p})
				}
			}
			if cvPath != "" {
				a, err := readCV(cvPath)
				if err != nil {
					return err
				}
				entries = append(entries, contact.Entry{Type: contact.FieldCV, Attachment: a})
			}

			hook := contact.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout)
			defer hook.Close()
			pipeline := contact.NewPipeline(contact.Options{Sender: hook, Logger: log})

			err = pipeline.SubmitOnce(cmd.Context(), loc.Messages(), contact.Meta{Locale: loc.Code}, fixed, entries)

			var verr *contact.ValidationError
			if errors.As(err, &verr) {
				keys := make([]string, 0, len(verr.Fields))
				for k := range verr.Fields {
					keys = append(keys, k)
				}
				slices.Sort(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", k, verr.Fields[k])
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), loc.Contact.SuccessMessage)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fixed.Name, "name", "", "your name")
	f.StringVar(&fixed.Email, "email", "", "your email")
	f.StringVar(&fixed.Message, "message", "", "message text")
	f.StringVar(&lang, "lang", "", "language of validation messages (en, ru, uk)")
	f.StringVar(&cvPath, "cv", "", "path to a PDF, DOC or DOCX file to attach")
	for _, t := range contact.Catalog() {
		if t.Attachable() {
			continue
		}
		values[t] = f.String(string(t), "", "optional "+string(t)+" contact")
	}
	return cmd
}

func readCV(path string) (*contact.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cv: %w", err)
	}
	return &contact.Attachment{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
