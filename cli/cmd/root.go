package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"carereviews/cli/api"
)

var (
	serverURL string
	apiKey    string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "reviewctl",
	Short: "Patient review service CLI",
	Long: "A command-line tool for checking, submitting and moderating de-identified " +
		"patient reviews against a running review service.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("REVIEWS_SERVER", api.DefaultBaseURL), "review service base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("API_KEY"), "moderator API key")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("REVIEWS_TOKEN"), "moderator bearer token")
}

// NewRootCommand returns the configured root command.
func NewRootCommand() *cobra.Command {
	return rootCmd
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *api.Client {
	return api.NewClient(serverURL, api.Credentials{APIKey: apiKey, Token: token})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
