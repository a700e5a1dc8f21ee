package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/buket/service/internal/auth"
)

func tokenCmd(out io.Writer) *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the write endpoints",
		Long: `Mint an HS256 token signed with the server's JWT_SECRET.

Example:
  BUKET_TOKEN=$(bucketctl token --secret "$JWT_SECRET" --subject ci)`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or env JWT_SECRET)")
			}
			tok, err := auth.Issue(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret (env JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "bucketctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")
	return cmd
}
