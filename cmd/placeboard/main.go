package main

import (
	"context"
	"errors"
	"os"

	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/console"
	"github.com/placeboard/placeboard/internal/client/places"
	"github.com/placeboard/placeboard/internal/client/services"
	"github.com/placeboard/placeboard/internal/client/session"
	"github.com/placeboard/placeboard/internal/config"
	"github.com/placeboard/placeboard/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "placeboard",
		Short: "Placeboard terminal client",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("api-base-url", defaults.GetString("api.base_url"), "Backend API base URL")
	cmd.PersistentFlags().String("maps-api-key", "", "Google Maps API key (overrides env)")
	cmd.PersistentFlags().String("session-path", defaults.GetString("session.path"), "Session file path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "api.base_url", "api-base-url")
	bindFlag(cmd, "maps.api_key", "maps-api-key")
	bindFlag(cmd, "session.path", "session-path")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runClient(ctx context.Context) error {
	appConfig, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewConsoleLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store := session.NewStore(appConfig.SessionPath, logger)
	apiClient := api.NewClient(appConfig.APIBaseURL, store, logger)

	resolver, err := places.NewGoogleResolver(appConfig.MapsAPIKey, logger)
	if err != nil {
		return err
	}

	app := console.NewApp(console.Config{
		Reader:    os.Stdin,
		Writer:    os.Stdout,
		Store:     store,
		APIClient: apiClient,
		Resolver:  resolver,
		Locations: services.NewLocationService(apiClient, logger),
		Comments:  services.NewCommentService(apiClient, logger),
		Logger:    logger,
	})

	app.Run(ctx)
	return nil
}
