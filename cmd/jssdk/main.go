package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardolus/jssdk/api/http"
	"github.com/kardolus/jssdk/cache"
	"github.com/kardolus/jssdk/config"
	"github.com/kardolus/jssdk/internal"
	"github.com/kardolus/jssdk/jssdk"
	"github.com/kardolus/jssdk/metrics"
	"github.com/kardolus/jssdk/server"
	"github.com/kardolus/jssdk/ticket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "JSSDK"

var (
	configPath string
	debug      bool

	refresh bool

	pageURL   string
	nonce     string
	timestamp int64

	apis    []string
	jsDebug bool
	beta    bool
	asJSON  bool

	listenAddr string
)

func main() {
	internal.InitLogger()

	rootCmd := &cobra.Command{
		Use:           "jssdk",
		Short:         "JS-SDK ticket and signature tool",
		Long:          "Fetches and caches jsapi tickets and signs page urls for wx.config.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.jssdk/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log the ticket requests and responses")

	ticketCmd := &cobra.Command{
		Use:   "ticket",
		Short: "Print the current jsapi ticket",
		RunE:  runTicket,
	}
	ticketCmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cache and fetch a new ticket")

	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a page url",
		RunE:  runSign,
	}
	signCmd.Flags().StringVar(&pageURL, "url", "", "Page url (default page_url from the config)")
	signCmd.Flags().StringVar(&nonce, "nonce", "", "Nonce (default random)")
	signCmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Unix timestamp (default now)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the wx.config payload for a page",
		RunE:  runConfig,
	}
	configCmd.Flags().StringVar(&pageURL, "url", "", "Page url (default page_url from the config)")
	configCmd.Flags().StringSliceVar(&apis, "api", nil, "JS API to enable, repeatable (default js_api_list from the config)")
	configCmd.Flags().BoolVar(&jsDebug, "js-debug", false, "Set debug in the payload")
	configCmd.Flags().BoolVar(&beta, "beta", false, "Set beta in the payload")
	configCmd.Flags().BoolVar(&asJSON, "json", true, "Print compact JSON instead of an indented record")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve wx.config payloads over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default listen_addr from the config)")

	showConfigCmd := &cobra.Command{
		Use:   "show-config",
		Short: "Print the effective configuration",
		RunE:  runShowConfig,
	}

	rootCmd.AddCommand(ticketCmd, signCmd, configCmd, serveCmd, showConfigCmd)

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))

	if err := rootCmd.Execute(); err != nil {
		zap.S().Error(err)
		os.Exit(1)
	}
}

func loadConfig() *config.Manager {
	store := config.New()
	if configPath != "" {
		store = store.WithConfigPath(configPath)
	}

	manager := config.NewManager(store).WithEnvironment()
	if viper.GetBool("debug") {
		manager.Config.Debug = true
	}
	if addr := viper.GetString("listen_addr"); addr != "" {
		manager.Config.ListenAddr = addr
	}

	internal.ConfigureLogging(manager.Config.Debug)

	return manager
}

func newManager(cfg config.Config, recorder metrics.Recorder) (*ticket.Manager, error) {
	store, err := cache.NewStore(cfg.CacheBackend, cfg.CacheDir, internal.NewRealTime())
	if err != nil {
		return nil, err
	}

	return ticket.New(http.RealCallerFactory, store, cfg).WithRecorder(recorder), nil
}

func newClient(cfg config.Config, recorder metrics.Recorder) (*jssdk.Client, error) {
	manager, err := newManager(cfg, recorder)
	if err != nil {
		return nil, err
	}

	return jssdk.New(manager, internal.NewRealTime(), cfg).WithRecorder(recorder), nil
}

func runTicket(cmd *cobra.Command, args []string) error {
	cm := loadConfig()
	if err := cm.Validate(); err != nil {
		return err
	}

	manager, err := newManager(cm.Config, metrics.Noop())
	if err != nil {
		return err
	}

	result, err := manager.Ticket(cmd.Context(), refresh)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

func runSign(cmd *cobra.Command, args []string) error {
	cm := loadConfig()
	if err := cm.Validate(); err != nil {
		return err
	}

	client, err := newClient(cm.Config, metrics.Noop())
	if err != nil {
		return err
	}

	result, err := client.Signature(cmd.Context(), signatureOptions(cmd)...)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cm := loadConfig()
	if err := cm.Validate(); err != nil {
		return err
	}

	client, err := newClient(cm.Config, metrics.Noop())
	if err != nil {
		return err
	}

	list := cm.Config.JSAPIList
	if cmd.Flags().Changed("api") {
		list = apis
	}

	if asJSON {
		result, err := client.ConfigJSON(cmd.Context(), list, jsDebug, beta, signatureOptions(cmd)...)
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	}

	result, err := client.Config(cmd.Context(), list, jsDebug, beta, signatureOptions(cmd)...)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runServe(cmd *cobra.Command, args []string) error {
	cm := loadConfig()
	if err := cm.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.Noop()
	registry := prometheus.NewRegistry()

	if cm.Config.Metrics {
		provider, err := metrics.NewPrometheusProvider(registry)
		if err != nil {
			return err
		}
		defer func() {
			_ = provider.Shutdown(context.Background())
		}()

		recorder, err = metrics.NewRecorder(provider.Meter(metrics.MeterName))
		if err != nil {
			return err
		}
	}

	client, err := newClient(cm.Config, recorder)
	if err != nil {
		return err
	}
	client.WithURLResolver(jssdk.RequestResolver{})

	srv := server.New(client, cm.Config)
	if cm.Config.Metrics {
		srv.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return srv.ListenAndServe(ctx)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	result, err := loadConfig().ShowConfig()
	if err != nil {
		return err
	}

	fmt.Print(result)
	return nil
}

func signatureOptions(cmd *cobra.Command) []jssdk.SignatureOption {
	var opts []jssdk.SignatureOption
	if cmd.Flags().Changed("url") {
		opts = append(opts, jssdk.WithURL(pageURL))
	}
	if cmd.Flags().Changed("nonce") {
		opts = append(opts, jssdk.WithNonce(nonce))
	}
	if cmd.Flags().Changed("timestamp") {
		opts = append(opts, jssdk.WithTimestamp(timestamp))
	}
	return opts
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
