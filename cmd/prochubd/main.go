package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MinaWilson92/prochub/db/sqlite"
	hubserver "github.com/MinaWilson92/prochub/server"
	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/harness"
	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/server/monitoring"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/server/notifications/channels/rmailer"
	"github.com/MinaWilson92/prochub/server/procedures"
	"github.com/MinaWilson92/prochub/share/email"
	"github.com/MinaWilson92/prochub/share/logger"
)

type config struct {
	API        hubserver.APIConfig `mapstructure:"api"`
	ListAPI    listapi.Config      `mapstructure:"list_api"`
	SMTP       rmailer.SMTPConfig  `mapstructure:"smtp"`
	Monitoring monitoring.Config   `mapstructure:"monitoring"`

	DataDir  string `mapstructure:"data_dir"`
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	// FallbackEmail receives notifications when the configuration store
	// itself is unreachable.
	FallbackEmail string `mapstructure:"fallback_email"`
}

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "prochubd",
		Short: "Procedures Hub notification service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "location of the config file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config, error) {
	v := viper.New()
	v.SetDefault("api.address", "0.0.0.0:8310")
	v.SetDefault("data_dir", "/var/lib/prochubd")
	v.SetDefault("log_level", "info")
	v.SetDefault("monitoring.run_on_start", true)
	v.SetEnvPrefix("PROCHUB")
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("prochubd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/prochub")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.ListAPI.BaseURL == "" {
		return nil, fmt.Errorf("list_api.base_url is required")
	}
	if cfg.FallbackEmail != "" {
		if err := email.Validate(cfg.FallbackEmail); err != nil {
			return nil, fmt.Errorf("invalid fallback_email: %w", err)
		}
	}
	if cfg.SMTP.SenderEmail != "" {
		if err := email.Validate(cfg.SMTP.SenderEmail); err != nil {
			return nil, fmt.Errorf("invalid smtp.sender_email: %w", err)
		}
	}
	return cfg, nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logOutput := logger.NewLogOutput(cfg.LogFile)
	if err := logOutput.Start(); err != nil {
		return err
	}
	defer logOutput.Shutdown()
	l := logger.NewLogger("prochubd", logOutput, logLevel)

	listClient := listapi.NewClient(cfg.ListAPI, l.Fork("listapi"))

	journal, err := activitylog.NewJournal(cfg.DataDir, sqlite.DataSourceOptions{WALEnabled: true})
	if err != nil {
		return fmt.Errorf("failed to open activity journal: %w", err)
	}
	defer journal.Close()
	activity := activitylog.New(listClient, journal, l.Fork("activitylog"))

	mailer, err := rmailer.NewMailerFromSMTPConfig(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to build mailer: %w", err)
	}

	configProvider := notifications.NewListConfigProvider(listClient, l.Fork("config"))
	resolver := notifications.NewResolver(configProvider, cfg.FallbackEmail, l.Fork("resolver"))
	templates := notifications.NewTemplateStore(listClient, l.Fork("templates"))
	dispatcher := notifications.NewDispatcher(templates, mailer, activity, l.Fork("dispatcher"))
	hooks := notifications.NewHooks(resolver, dispatcher, activity, l.Fork("hooks"))

	procStore := procedures.NewStore(listClient, l.Fork("procedures"))
	scanner := monitoring.NewService(cfg.Monitoring, procStore, resolver, dispatcher, activity, activity, l.Fork("monitoring"))
	runner := harness.NewRunner(hooks, scanner, l.Fork("harness"))

	if res := scanner.Start(); !res.Success {
		return fmt.Errorf("failed to start monitoring: %s", res.Message)
	}
	defer scanner.Stop()

	api := hubserver.NewAPIListener(cfg.API, hooks, scanner, runner, l.Fork("api"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- api.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		l.Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return api.Shutdown(ctx)
	}
}
