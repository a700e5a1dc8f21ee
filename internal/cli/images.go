package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) uploadCmd() *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its CDN URL",
		Long: `Upload an image. The server stores it as "<unix millis>-<file name>"
and answers with the CDN URL.

Examples:
  bucketctl upload cat.png
  bucketctl upload --copy ~/Pictures/cat.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			f, err := openImage(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			resp, err := c.Upload(cmdContext(cmd), args[0], f)
			if err != nil {
				return err
			}
			return a.report(resp, copyURL)
		},
	}
	cmd.Flags().BoolVarP(&copyURL, "copy", "c", false, "copy the first URL to the clipboard")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored images",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.List(cmdContext(cmd))
			if err != nil {
				return err
			}
			return a.report(resp, false)
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "update <stored-name> <file>",
		Short: "Replace a stored image, keeping its name",
		Long: `Replace the content of a stored image. The returned URL carries a
?v= version so the CDN serves the new bytes.

Example:
  bucketctl update 1700000000000-cat.png cat-v2.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			f, err := openImage(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			resp, err := c.Update(cmdContext(cmd), args[0], args[1], f)
			if err != nil {
				return err
			}
			return a.report(resp, copyURL)
		},
	}
	cmd.Flags().BoolVarP(&copyURL, "copy", "c", false, "copy the first URL to the clipboard")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <stored-name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored image",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Delete(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if !resp.OK() {
				return a.report(resp, false)
			}
			fmt.Fprintln(a.out, styleSuccess.Render(iconSuccess+" Deleted "+args[0]))
			return nil
		},
	}
}

// maxImageBytes matches the server's default upload limit.
const maxImageBytes = 10 << 20

// openImage opens path after checking that it holds an image no larger
// than maxImageBytes. The returned file is positioned at its start.
func openImage(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxImageBytes {
		f.Close()
		return nil, fmt.Errorf("%s is %d bytes, the limit is %d MB", path, info.Size(), maxImageBytes>>20)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("read image: %w", err)
	}
	if ct := http.DetectContentType(head[:n]); !strings.HasPrefix(ct, "image/") {
		f.Close()
		return nil, fmt.Errorf("%s is not an image (detected %s)", path, ct)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewind image: %w", err)
	}
	return f, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
