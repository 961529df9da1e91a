package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/swiss-mcp/mcp-commons/internal/gateway"
	"github.com/swiss-mcp/mcp-commons/pkg/batch"
	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/serialization"
)

type fetchOptions struct {
	acceptEncoding string
	concurrency    int
	indent         bool
}

func newFetchCmd(configPath *string) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch URLs through the cached client and print the negotiated payload",
		Long: `Fetch GETs every URL concurrently and prints one JSON document with a
result per URL. Relative URLs are resolved against upstream.base_url.

With --accept-encoding the document is negotiated like a gateway response:
large payloads are written gzip-compressed and the chosen headers are
printed to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, *configPath, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.acceptEncoding, "accept-encoding", "", "Accept-Encoding header to negotiate the output with")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", batch.DefaultConfig().MaxConcurrency, "Maximum parallel requests")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "Pretty-print the output")

	return cmd
}

func runFetch(cmd *cobra.Command, configPath string, urls []string, opts fetchOptions) error {
	cfg, logger, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = &logger

	reqs := make([]batch.Request, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse %q: %w", raw, err)
		}
		params := u.Query()
		u.RawQuery = ""
		reqs = append(reqs, batch.Request{URL: u.String(), Params: params})
	}

	var results batch.Results
	err = client.With(cmd.Context(), clientCfg, func(ctx context.Context, c *client.Client) error {
		batchCfg := batch.DefaultConfig()
		batchCfg.MaxConcurrency = opts.concurrency
		batchCfg.Logger = &logger

		var err error
		results, err = batch.NewFetcher(c, batchCfg).FetchAll(ctx, reqs)
		return err
	})
	if err != nil {
		return err
	}

	items := make([]any, 0, len(results))
	for _, res := range results {
		item := map[string]any{"url": urls[res.Index]}
		if res.Err != nil {
			item["error"] = gateway.MapError(res.Err, cfg.Upstream.Name, urls[res.Index], cfg.Upstream.Timeout).ToDict()
		} else {
			item["data"] = res.Body
		}
		items = append(items, item)
	}

	serOpts := []serialization.Option{
		serialization.WithAcceptEncoding(opts.acceptEncoding),
		serialization.WithMinCompressSize(cfg.Negotiation.MinCompressSize),
		serialization.WithCharset(cfg.Negotiation.Charset),
		serialization.WithEscapeHTML(false),
	}
	if opts.indent {
		serOpts = append(serOpts, serialization.WithIndent("", "  "))
	}

	p, err := serialization.SerializeWithNegotiation(serialization.Dict{
		"succeeded": results.Succeeded(),
		"results":   items,
	}, serOpts...)
	if err != nil {
		return err
	}

	if opts.acceptEncoding != "" {
		for _, key := range []string{"Content-Type", "Content-Encoding", "Content-Length"} {
			if v := p.Header.Get(key); v != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", key, v)
			}
		}
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(p.Body); err != nil {
		return err
	}
	if !p.Compressed() {
		fmt.Fprintln(out)
	}

	if failed := len(results) - results.Succeeded(); failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}
