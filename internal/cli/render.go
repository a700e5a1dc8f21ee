package cli

import (
	"fmt"
	"io"
	"net/http"

	"github.com/buket/service/internal/client"
	"github.com/buket/service/internal/extract"
)

// report prints the URLs found in resp. A non-2xx answer is printed and
// returned as an error so the process exits non-zero.
func (a *app) report(resp *client.Response, copyFirst bool) error {
	if !resp.OK() {
		fmt.Fprintln(a.out, styleError.Render(fmt.Sprintf("%s %d %s", iconError, resp.StatusCode, http.StatusText(resp.StatusCode))))
		fmt.Fprintln(a.out, string(resp.Body))
		return fmt.Errorf("server answered %d", resp.StatusCode)
	}

	if a.raw {
		fmt.Fprintln(a.out, string(resp.Body))
		return nil
	}

	entries := extract.WithPlaceholder(extract.URLs(extract.Parse(resp.Body)))
	printEntries(a.out, entries)

	if copyFirst {
		for _, e := range entries {
			if e.URL == "" {
				continue
			}
			if err := a.copy(e.URL); err != nil {
				fmt.Fprintln(a.out, styleMuted.Render("(Clipboard access failed, please copy manually)"))
			} else {
				fmt.Fprintln(a.out, styleSuccess.Render(iconSuccess+" Copied "+e.Label+" to clipboard"))
			}
			break
		}
	}
	return nil
}

func printEntries(out io.Writer, entries []extract.Entry) {
	for _, e := range entries {
		if e.URL == "" {
			fmt.Fprintln(out, styleMuted.Render(e.Label))
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", styleLabel.Render(e.Label), styleURL.Render(e.URL))
	}
}

func printError(out io.Writer, err error) {
	fmt.Fprintln(out, styleError.Render(iconError+" "+err.Error()))
}
