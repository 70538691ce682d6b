package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/examcoach/internal/callback"
	"github.com/teemow/examcoach/internal/identity"
	"github.com/teemow/examcoach/internal/logging"
)

func newCallbackCmd() *cobra.Command {
	var (
		debugMode bool
		port      int
		path      string
		userID    string
		region    string
	)

	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Run a local OAuth2 consent callback receiver",
		Long: `Run a local HTTP server that receives the OAuth2 consent redirect and
binds the completed grant to a user via AgentCore Identity.

Register the printed callback URL as an allowed return URL on the
workload identity, then pass it to the agent via --return-url or
OAUTH2_RETURN_URL. The user id must match the runtime user id used
when invoking the agent, otherwise the token binding fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				userID = os.Getenv("OAUTH2_USER_ID")
			}
			if userID == "" {
				return fmt.Errorf("a user id is required; set --user-id or OAUTH2_USER_ID")
			}
			if region == "" {
				region = os.Getenv("AWS_REGION")
			}
			if region == "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			}
			if region == "" {
				region = defaultRegion
			}
			return runCallback(debugMode, port, path, userID, region)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().IntVar(&port, "port", callback.DefaultPort, "Local port to listen on")
	cmd.Flags().StringVar(&path, "path", callback.DefaultPath, "Callback path")
	cmd.Flags().StringVar(&userID, "user-id", "", "Runtime user id the grant is bound to. Can also use OAUTH2_USER_ID env var.")
	cmd.Flags().StringVar(&region, "region", "", "AWS region. Can also use AWS_REGION or AWS_DEFAULT_REGION env vars.")

	return cmd
}

func runCallback(debugMode bool, port int, path, userID, region string) error {
	logger := logging.Setup(debugMode)

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	identityAPI, err := identity.NewAgentCoreClient(shutdownCtx, region)
	if err != nil {
		return fmt.Errorf("failed to create identity client: %w", err)
	}

	srv := callback.NewServer(callback.ServerConfig{
		Completer: identityAPI,
		UserID:    userID,
		Path:      path,
		Port:      port,
		Logger:    logger,
	})

	fmt.Printf("Callback server listening on %s\n", srv.CallbackURL())
	fmt.Println("Register this URL as an allowed OAuth2 return URL on the workload identity.")

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
			return fmt.Errorf("callback server failed: %w", err)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return srv.Shutdown(stopCtx)
}
