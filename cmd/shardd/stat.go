package main

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/YosefMac/Xapiand"
	"github.com/YosefMac/Xapiand/metrics/prom"
)

type statConfig struct {
	Paths   []string
	Remotes []string
	Timeout time.Duration
	Term    string
	Metrics bool
}

func newStatCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := statConfig{}
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Print document counts of one or more shards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}
			locations, err := parseRemotes(cfg.Remotes)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			pool := xapiand.NewPool(
				xapiand.WithLogger(logger),
				xapiand.WithMetricsCollector(prom.New(reg)),
			)
			defer pool.Close()
			if err := stat(cmd, pool, xapiand.ResolveEndpoints(cfg.Paths, locations, cfg.Timeout), cfg.Term, stdout); err != nil {
				return err
			}
			if cfg.Metrics {
				return writeMetrics(reg, stdout)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&cfg.Paths, "path", nil, "Local shard directory. May be repeated.")
	flags.StringSliceVar(&cfg.Remotes, "remote", nil, "Remote shard as host:port. May be repeated.")
	flags.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "Timeout for remote shards.")
	flags.StringVar(&cfg.Term, "term", "", "Also count documents indexed by this term.")
	flags.BoolVar(&cfg.Metrics, "metrics", false, "Print the pool's Prometheus metrics after the counts.")
	return cmd
}

func stat(cmd *cobra.Command, pool *xapiand.Pool, set xapiand.EndpointSet, term string, w io.Writer) error {
	ctx := cmd.Context()
	c, err := pool.Database(ctx, set, false)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tDOCS")
	for i, ep := range c.Endpoints() {
		db := c.Handle(i)
		if db == nil {
			fmt.Fprintf(tw, "%s\tunavailable\n", ep)
			continue
		}
		n, err := db.DocCount(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", ep, err)
		}
		fmt.Fprintf(tw, "%s\t%d\n", ep, n)
	}
	total, err := c.Database().DocCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "total\t%d\n", total)
	if term != "" {
		ids, err := c.Database().TermDocs(ctx, term)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "term %q\t%d\n", term, len(ids))
	}
	return tw.Flush()
}

// writeMetrics prints everything in reg in the Prometheus text format.
func writeMetrics(reg prometheus.Gatherer, w io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func parseRemotes(addrs []string) ([]xapiand.RemoteLocation, error) {
	locations := make([]xapiand.RemoteLocation, 0, len(addrs))
	for _, addr := range addrs {
		host, p, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid remote %q: %w", addr, err)
		}
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid remote port in %q", addr)
		}
		locations = append(locations, xapiand.RemoteLocation{Host: host, Port: port})
	}
	return locations, nil
}
