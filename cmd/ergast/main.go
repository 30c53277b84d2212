package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/httpclient"
	"github.com/spf13/cobra"
)

type options struct {
	season  int
	limit   int
	offset  int
	baseURL string
	series  string
	timeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "ergast",
		Short:        "Query the Ergast motorsport API",
		Long:         `Fetch drivers, circuits, constructors or seasons from the Ergast API and print them as JSON.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.IntVar(&opts.season, "season", ergast.Unspecified, "championship year, -1 for all seasons")
	flags.IntVar(&opts.limit, "limit", ergast.Unspecified, "page size, -1 for the API default")
	flags.IntVar(&opts.offset, "offset", ergast.Unspecified, "page offset, -1 for the API default")
	flags.StringVar(&opts.baseURL, "base-url", ergast.DefaultBaseURL, "API base url")
	flags.StringVar(&opts.series, "series", ergast.DefaultSeries, "racing series")
	flags.DurationVar(&opts.timeout, "timeout", httpclient.DefaultTimeout, "request timeout")

	for _, r := range ergast.Resources {
		root.AddCommand(newResourceCmd(r, opts, out))
	}
	return root
}

func newResourceCmd(resource ergast.Resource, opts *options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   string(resource),
		Short: fmt.Sprintf("List %s", resource),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := ergast.NewClient(httpclient.NewRestyClient(opts.timeout),
				ergast.WithBaseURL(opts.baseURL),
				ergast.WithSeries(opts.series),
			)
			list, err := fetch(cmd.Context(), client, resource, opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		},
	}
}

func fetch(ctx context.Context, c *ergast.Client, resource ergast.Resource, opts *options) (any, error) {
	switch resource {
	case ergast.ResourceDrivers:
		return c.Drivers(ctx, opts.season, opts.limit, opts.offset)
	case ergast.ResourceCircuits:
		return c.Circuits(ctx, opts.season, opts.limit, opts.offset)
	case ergast.ResourceConstructors:
		return c.Constructors(ctx, opts.season, opts.limit, opts.offset)
	case ergast.ResourceSeasons:
		return c.Seasons(ctx, opts.season, opts.limit, opts.offset)
	default:
		return nil, fmt.Errorf("unsupported resource %q", resource)
	}
}
