// ABOUTME: Root command for the intranet CLI
// ABOUTME: Handles global flags and builds the shared runtime for subcommands

package cmd

import (
	"github.com/spf13/cobra"
)

// Exit codes shared by every command
const (
	exitOK               = 0
	exitNotAuthenticated = 1
	exitFailure          = 2
)

var (
	apiURL         string
	jsonOutput     bool
	configDir      string
	logLevel       string
	storageBackend string
)

// rootCmd is the base command. Without a subcommand it opens the TUI.
var rootCmd = &cobra.Command{
	Use:   "intranet",
	Short: "Terminal client for the collaborator intranet",
	Long: `intranet manages the collaborator directory of the administrative intranet.

Run without arguments to open the interactive interface, or use the
subcommands for scripting.

Environment Variables:
  INTRANET_API_URL          API base URL (default: http://localhost:8000/api)
  INTRANET_LOGIN_URL        Profile login endpoint (default: <api>/login)
  INTRANET_LOGIN_CHECK_URL  Token endpoint (default: <api>/login_check)
  INTRANET_STORAGE          Session storage: file or sqlite (default: file)
  INTRANET_HTTP_TIMEOUT     Transport timeout (default: 30s)
  LOG_LEVEL                 debug, info, warn, error (default: info)
  LOG_FORMAT                text or json (default: text)`,
	Run: func(cmd *cobra.Command, args []string) {
		runTUICommand()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides INTRANET_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for config.yaml, session state and logs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "Session storage backend: file or sqlite")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
