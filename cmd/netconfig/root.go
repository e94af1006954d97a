package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/app/service"
	probe "deploy_networks/internal/client"
	"deploy_networks/internal/domain/entity"
	"deploy_networks/internal/infrastructure/configloader"
	"deploy_networks/internal/infrastructure/hdwallet"
	clientprovider "deploy_networks/internal/infrastructure/network/client"
	networkdefinition "deploy_networks/internal/infrastructure/network/definition"
	"deploy_networks/internal/infrastructure/secrets"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/metrics"
	"deploy_networks/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

const (
	keyConfig   = "config"
	keyLogLevel = "log-level"
	keySecrets  = "secret-prefix"
)

type (
	netconfigApp struct {
		baseCmd    *cobra.Command
		baseConfig *baseConfiguration
	}

	baseConfiguration struct {
		ConfigFile   string
		LogLevel     string
		SecretPrefix string

		out      io.Writer
		cfg      *configloader.Config
		networks *networkdefinition.NetworkConfig
		service  port.NetworkService
	}
)

func newApp(out io.Writer) *netconfigApp {
	baseCmd, baseConfig := newBaseCmd(out)
	baseCmd.AddCommand(newNetworksCmd(baseConfig))
	baseCmd.AddCommand(newResolveCmd(baseConfig))
	baseCmd.AddCommand(newAccountsCmd(baseConfig))
	baseCmd.AddCommand(newCheckCmd(baseConfig))
	baseCmd.AddCommand(newSignCmd(baseConfig))
	baseCmd.AddCommand(newServeCmd(baseConfig))
	return &netconfigApp{baseCmd: baseCmd, baseConfig: baseConfig}
}

// Execute runs the command selected by the process arguments.
func (a *netconfigApp) Execute(ctx context.Context) error {
	return a.baseCmd.ExecuteContext(ctx)
}

func newBaseCmd(out io.Writer) (*cobra.Command, *baseConfiguration) {
	config := &baseConfiguration{out: out}
	var baseCmd = &cobra.Command{
		Use:           "netconfig",
		Short:         "Deployment network configuration",
		Long:          `Lists deployment networks, derives their HD wallet accounts, checks their nodes and signs transfers.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.initialize(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}
	baseCmd.SetOut(out)
	baseCmd.PersistentFlags().StringVar(&config.ConfigFile, keyConfig, utils.GetEnv("CONFIG_PATH", "config/config.yml"), "path to the YAML configuration file")
	baseCmd.PersistentFlags().StringVar(&config.LogLevel, keyLogLevel, "", "log level (debug, info, warn, error), overrides the configuration file")
	baseCmd.PersistentFlags().StringVar(&config.SecretPrefix, keySecrets, "", "prefix of the environment variables secrets are read from")
	return baseCmd, config
}

func (c *baseConfiguration) initialize() error {
	cfg, err := configloader.LoadOrDefault(c.ConfigFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.Logging.Level
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	if err := logger.Init(level, cfg.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	metrics.MustRegisterMetrics()

	defs, err := networkdefinition.DefinitionsFromConfig(cfg)
	if err != nil {
		return err
	}

	src := secrets.NewEnvSource(c.SecretPrefix)
	dialer := clientprovider.NewEVMClientDialer(
		time.Duration(cfg.RpcClient.ConnectionTimeoutMs)*time.Millisecond,
		time.Duration(cfg.RpcClient.DefaultTimeoutMs)*time.Millisecond,
		cfg.RpcClient.MaxBatchSize,
		logger.Named("EVMClientDialer"),
	)
	walletLogger := logger.Named("HDWallet")
	c.networks, err = networkdefinition.NewNetworkConfig(defs, func(def entity.NetworkDefinition) port.ProviderFactory {
		return hdwallet.NewFactory(def, src, dialer, walletLogger)
	}, logger.Named("NetworkConfig"))
	if err != nil {
		return err
	}

	prober := probe.NewEndpointProbe(
		time.Duration(cfg.NetworkService.ProbeTimeoutMs)*time.Millisecond,
		logger.Zap().Named("EndpointProbe"),
	)
	c.service = service.NewNetworkService(c.networks, prober, logger.Named("NetworkService"), cfg.NetworkService)
	logger.Debug("Configuration initialized", "config", c.ConfigFile, "networks", c.networks.Names())
	return nil
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printJSON writes v as indented JSON to the command output.
func (c *baseConfiguration) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}
