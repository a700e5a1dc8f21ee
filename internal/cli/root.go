// Package cli implements bucketctl, a terminal front end for the Buket API.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/buket/service/internal/client"
)

// app carries the global flags and the pieces tests swap out.
type app struct {
	apiURL  string
	token   string
	timeout time.Duration
	raw     bool

	out  io.Writer
	copy func(string) error
}

// NewRootCmd builds the bucketctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(&app{out: out, copy: clipboard.WriteAll})
}

func newRootCmd(a *app) *cobra.Command {
	out := a.out
	root := &cobra.Command{
		Use:   "bucketctl",
		Short: "Upload images to Buket and get CDN links back",
		Long: styleLabel.Render("bucketctl") + " - Buket image bucket client\n\n" +
			"Uploads, lists, replaces and deletes images through a Buket API server\n" +
			"and prints every URL found in the server response.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("BUKET_API", client.DefaultBaseURL), "Buket API base URL (env BUKET_API)")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("BUKET_TOKEN"), "bearer token for write endpoints (env BUKET_TOKEN)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 60*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&a.raw, "raw", false, "print the raw server response instead of extracted URLs")

	root.AddCommand(
		a.uploadCmd(),
		a.listCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		tokenCmd(out),
	)
	return root
}

// Execute runs bucketctl and exits non-zero on failure.
func Execute() {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) client() (*client.Client, error) {
	return client.New(a.apiURL, a.token, a.timeout)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
