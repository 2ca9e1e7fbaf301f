package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okunev/studybot/internal/flow"
	appI18n "github.com/okunev/studybot/internal/i18n"
	"github.com/okunev/studybot/internal/model"
	"github.com/okunev/studybot/internal/session"
	"github.com/okunev/studybot/internal/store"
	"github.com/okunev/studybot/internal/telegram"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studybot",
		Short: "Telegram course assistant: lectures, labs and quizzes",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `studybot --token ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bot",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("token", "t", "", "Telegram bot token (or set STUDYBOT_TOKEN)")
	f.String("db", "studybot.db", "SQLite database path")
	f.StringP("lang", "l", "ru", "Fallback UI language (en, ru)")
	f.IntSlice("admin-ids", nil, "Telegram user ids seeded as owners")
	f.String("webhook-url", "", "Public webhook URL (empty = long polling)")
	f.StringP("addr", "a", ":8080", "HTTP listen address (webhook and health checks)")
	f.Bool("debug", false, "Log raw Bot API traffic")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export test results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "studybot.db", "SQLite database path")
	f.String("course", "", "Course name for output (required)")
	f.String("date", "", "Export date in YYYY-MM-DD format (default today)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STUDYBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("studybot")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/studybot")
	v.AddConfigPath("/etc/studybot")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	token := v.GetString("token")
	if token == "" {
		return fmt.Errorf("bot token is required: set --token flag or STUDYBOT_TOKEN env var")
	}

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed owner users from configuration.
	if err := seedOwners(db, v.GetIntSlice("admin-ids")); err != nil {
		return fmt.Errorf("seed owners: %w", err)
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	bot, err := telegram.New(telegram.Config{
		Token: token,
		Debug: v.GetBool("debug"),
	}, db)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	engine := flow.New(db, session.NewStore(), bot)
	bot.SetEngine(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	webhookURL := v.GetString("webhook-url")
	if webhookURL != "" {
		if err := bot.SetWebhook(webhookURL); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		r.Post("/webhook", bot.WebhookHandler())
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		slog.Info("starting http server", "addr", addr, "webhook", webhookURL != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("bot started", "lang", lang, "db", v.GetString("db"))
	if webhookURL != "" {
		<-ctx.Done()
		return nil
	}
	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tests, err := db.ExportTests()
	if err != nil {
		return fmt.Errorf("export tests: %w", err)
	}

	date := v.GetString("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	export := model.CourseExport{
		Course: v.GetString("course"),
		Date:   date,
		Tests:  tests,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// seedOwners makes sure every configured Telegram id has an owner account.
func seedOwners(db *store.Store, ids []int) error {
	for _, id := range ids {
		existing, err := db.GetUserByTelegramID(int64(id))
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Role != model.UserRoleOwner {
				if err := db.UpdateUserRole(existing.ID, model.UserRoleOwner); err != nil {
					return err
				}
				slog.Info("promoted user to owner", "telegram_id", id)
			}
			continue
		}
		if _, err := db.CreateUser(model.User{
			TelegramID: int64(id),
			Name:       "Owner",
			Role:       model.UserRoleOwner,
			Active:     true,
		}); err != nil {
			return err
		}
		slog.Info("seeded owner user", "telegram_id", id)
	}
	return nil
}
