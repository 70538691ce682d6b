package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/examcoach/internal/agent"
	"github.com/teemow/examcoach/internal/docs"
	"github.com/teemow/examcoach/internal/drive"
	"github.com/teemow/examcoach/internal/identity"
	"github.com/teemow/examcoach/internal/instrumentation"
	"github.com/teemow/examcoach/internal/logging"
	"github.com/teemow/examcoach/internal/memory"
	"github.com/teemow/examcoach/internal/runtime"
)

// defaultRegion is used when neither flags nor the AWS environment
// variables name a region.
const defaultRegion = "eu-west-1"

// ServeConfig holds the fully resolved configuration for the serve command
type ServeConfig struct {
	Debug bool

	// Addr is the invocation listener address.
	Addr string

	// Region is the AWS region used for Bedrock, identity and memory.
	Region string

	// ModelID is the Bedrock model identifier.
	ModelID string

	// ProviderName is the OAuth2 resource credential provider for
	// Google Drive access.
	ProviderName string

	// FolderName is the Google Drive folder holding session documents.
	FolderName string

	// ReturnURL overrides the provider's registered OAuth2 return URL.
	ReturnURL string

	// MemoryID enables long-term memory when non-empty.
	MemoryID string

	// ActorID tags memory events with the acting user.
	ActorID string

	// Namespace is the memory retrieval namespace.
	Namespace string

	// TopK is the number of memory records fetched per retrieval.
	TopK int

	// DocsMCPURL enables AWS documentation tools via MCP when non-empty.
	DocsMCPURL string

	// SystemPrompt overrides the built-in coaching prompt.
	SystemPrompt string

	// Metrics holds the metrics endpoint configuration.
	Metrics MetricsConfig
}

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9464")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode    bool
		addr         string
		region       string
		modelID      string
		providerName string
		folderName   string
		returnURL    string
		memoryID     string
		actorID      string
		namespace    string
		topK         int
		docsMCPURL   string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the agent runtime server",
		Long: `Start the HTTP server implementing the AgentCore Runtime contract.

The server answers POST /invocations with one coaching turn per request
and GET /ping with a health status. Google Drive session storage uses
the OAuth2 token exchange of AgentCore Identity; when user consent is
outstanding the agent relays the authorization URL instead of blocking.

Configuration:
  AWS credentials come from the default credential chain. The region is
  taken from --region, AWS_REGION or AWS_DEFAULT_REGION.

  Long-term memory is enabled by setting --memory-id or MEMORY_ID to an
  AgentCore Memory resource. Without it, turns are answered statelessly.

  AWS documentation tools are enabled by setting --docs-mcp-url or
  DOCS_MCP_URL to a streamable HTTP MCP server. A failed connection is
  logged and the server starts without documentation tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if region == "" {
				region = os.Getenv("AWS_REGION")
			}
			if region == "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			}
			if region == "" {
				region = defaultRegion
			}
			if modelID == "" {
				modelID = os.Getenv("MODEL_ID")
			}
			if providerName == "" {
				providerName = getEnvOrDefault("GOOGLE_OAUTH2_PROVIDER_NAME", "google-drive-provider")
			}
			if folderName == "" {
				folderName = getEnvOrDefault("GOOGLE_DRIVE_FOLDER_NAME", "AgentCoreSessions")
			}
			if returnURL == "" {
				returnURL = os.Getenv("OAUTH2_RETURN_URL")
			}
			if memoryID == "" {
				memoryID = os.Getenv("MEMORY_ID")
			}
			if actorID == "" {
				actorID = getEnvOrDefault("MEMORY_ACTOR_ID", "learner")
			}
			if namespace == "" {
				namespace = getEnvOrDefault("MEMORY_NAMESPACE", "aws_knowledge")
			}
			if !cmd.Flags().Changed("top-k") {
				if v := os.Getenv("MEMORY_TOP_K"); v != "" {
					parsed, err := strconv.Atoi(v)
					if err != nil {
						return fmt.Errorf("invalid MEMORY_TOP_K value %q: %w", v, err)
					}
					topK = parsed
				}
			}
			if docsMCPURL == "" {
				docsMCPURL = os.Getenv("DOCS_MCP_URL")
			}
			if metricsAddr == "" {
				metricsAddr = getEnvOrDefault("METRICS_ADDR", runtime.DefaultMetricsAddr)
			}

			return runServe(ServeConfig{
				Debug:        debugMode,
				Addr:         addr,
				Region:       region,
				ModelID:      modelID,
				ProviderName: providerName,
				FolderName:   folderName,
				ReturnURL:    returnURL,
				MemoryID:     memoryID,
				ActorID:      actorID,
				Namespace:    namespace,
				TopK:         topK,
				DocsMCPURL:   docsMCPURL,
				SystemPrompt: os.Getenv("SYSTEM_PROMPT"),
				Metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&addr, "addr", runtime.DefaultAddr, "Invocation server address")
	cmd.Flags().StringVar(&region, "region", "", "AWS region. Can also use AWS_REGION or AWS_DEFAULT_REGION env vars.")
	cmd.Flags().StringVar(&modelID, "model-id", "", "Bedrock model id. Can also use MODEL_ID env var. Defaults to "+agent.DefaultModel)
	cmd.Flags().StringVar(&providerName, "provider-name", "", "OAuth2 credential provider name for Google Drive. Can also use GOOGLE_OAUTH2_PROVIDER_NAME env var.")
	cmd.Flags().StringVar(&folderName, "folder-name", "", "Google Drive folder for session documents. Can also use GOOGLE_DRIVE_FOLDER_NAME env var.")
	cmd.Flags().StringVar(&returnURL, "return-url", "", "OAuth2 consent return URL. Can also use OAUTH2_RETURN_URL env var.")
	cmd.Flags().StringVar(&memoryID, "memory-id", "", "AgentCore Memory resource id. Can also use MEMORY_ID env var. Empty disables memory.")
	cmd.Flags().StringVar(&actorID, "actor-id", "", "Memory actor id. Can also use MEMORY_ACTOR_ID env var.")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Memory retrieval namespace. Can also use MEMORY_NAMESPACE env var.")
	cmd.Flags().IntVar(&topK, "top-k", 5, "Number of memory records per retrieval. Can also use MEMORY_TOP_K env var.")
	cmd.Flags().StringVar(&docsMCPURL, "docs-mcp-url", "", "AWS documentation MCP server URL. Can also use DOCS_MCP_URL env var. Empty disables documentation tools.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the Prometheus metrics endpoint")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(config ServeConfig) error {
	logger := logging.Setup(config.Debug)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	// Start metrics server if enabled
	var metricsServer *runtime.MetricsServer
	if config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = runtime.NewMetricsServer(runtime.MetricsServerConfig{
			Addr:     config.Metrics.Addr,
			Provider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	// Token acquisition against AgentCore Identity. The session cache
	// lives for the whole process so a consent retry resumes the same
	// OAuth2 session.
	identityAPI, err := identity.NewAgentCoreClient(shutdownCtx, config.Region)
	if err != nil {
		return fmt.Errorf("failed to create identity client: %w", err)
	}
	acquirer := identity.NewAcquirer(identityAPI, identity.NewSessionCache(), identity.AcquirerConfig{
		ProviderName: config.ProviderName,
		Scopes:       []string{drive.Scope},
		ReturnURL:    config.ReturnURL,
		Logger:       logger,
	})
	acquire := func(ctx context.Context) identity.Result {
		result := acquirer.Acquire(ctx, runtime.WorkloadTokenFromContext(ctx))
		metrics.RecordTokenExchange(ctx, result.Outcome.String())
		return result
	}

	store := drive.NewSessionStore(drive.SessionStoreConfig{
		FolderName: config.FolderName,
		Acquire:    acquire,
		Logger:     logger,
	})
	tools := agent.SessionTools(store)

	// Documentation tools are best effort. A coach without live AWS
	// docs still answers from the model.
	if config.DocsMCPURL != "" {
		docsClient, err := docs.Connect(shutdownCtx, config.DocsMCPURL, version, logger)
		if err != nil {
			logger.Warn("documentation MCP server unavailable, continuing without docs tools",
				"url", config.DocsMCPURL, logging.Err(err))
		} else {
			defer func() {
				if err := docsClient.Close(); err != nil {
					logger.Warn("closing documentation client failed", logging.Err(err))
				}
			}()
			tools = append(tools, agent.DocsTools(docsClient)...)
		}
	}
	tools = agent.InstrumentTools(tools, metrics.RecordToolInvocation)

	var memoryAPI memory.API
	if config.MemoryID != "" {
		agentCoreAPI, err := memory.NewAgentCoreAPI(shutdownCtx, config.Region, config.MemoryID, config.Namespace)
		if err != nil {
			return fmt.Errorf("failed to create memory client: %w", err)
		}
		memoryAPI = agentCoreAPI
		logger.Info("long-term memory enabled", "memory_id", config.MemoryID, "namespace", config.Namespace)
	} else {
		logger.Info("long-term memory disabled, set MEMORY_ID to enable")
	}
	memoryClient := memory.NewClient(memory.ClientConfig{
		API:     memoryAPI,
		ActorID: config.ActorID,
		TopK:    config.TopK,
		Logger:  logger,
	})

	generator, err := agent.NewClaudeGenerator(shutdownCtx, agent.GeneratorConfig{
		Region: config.Region,
		Model:  config.ModelID,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create Bedrock generator: %w", err)
	}

	facade := agent.NewFacade(agent.FacadeConfig{
		Generator:    generator,
		Memory:       memoryClient,
		Tools:        tools,
		SystemPrompt: config.SystemPrompt,
		Logger:       logger,
	})

	srv := runtime.NewServer(runtime.ServerConfig{
		Facade:  facade,
		Addr:    config.Addr,
		Metrics: metrics,
		Logger:  logger,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-shutdownCtx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("runtime server failed: %w", err)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), runtime.DefaultShutdownTimeout)
	defer stopCancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		logger.Error("runtime server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
