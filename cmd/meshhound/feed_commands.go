package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/feed"
	"github.com/spf13/cobra"
)

func newWatchCommand(app *application) *cobra.Command {
	var flags detectionFlags
	var input string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Classify JSON-lines response descriptors from stdin or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, name, closeFn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeFn()

			// Unblock a pending read on interrupt.
			stop := make(chan struct{})
			defer close(stop)
			go func() {
				select {
				case <-cmd.Context().Done():
					closeFn()
				case <-stop:
				}
			}()

			return app.runFeed(cmd, &flags, feed.NewStreamFeed(reader, name, app.logger))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Descriptor file to read instead of stdin")
	return cmd
}

func newCrawlCommand(app *application) *cobra.Command {
	var flags detectionFlags
	var depth int

	cmd := &cobra.Command{
		Use:   "crawl <url>...",
		Short: "Crawl pages from seed URLs and classify everything they reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg.CrawlerConfig
			if cmd.Flags().Changed("depth") {
				cfg.MaxDepth = depth
			}
			src, err := feed.NewCrawlFeed(args, cfg, app.logger)
			if err != nil {
				return err
			}
			return app.runFeed(cmd, &flags, src)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Maximum crawl depth, 0 for unlimited (overrides crawler_config)")
	return cmd
}

func newBrowseCommand(app *application) *cobra.Command {
	var flags detectionFlags

	cmd := &cobra.Command{
		Use:   "browse <url>...",
		Short: "Load pages in headless Chrome and classify every network response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := feed.NewBrowserFeed(args, app.cfg.BrowserConfig, app.logger)
			if err != nil {
				return err
			}
			return app.runFeed(cmd, &flags, src)
		},
	}

	flags.register(cmd)
	return cmd
}

func newProbeCommand(app *application) *cobra.Command {
	var flags detectionFlags
	var list string

	cmd := &cobra.Command{
		Use:   "probe [url]...",
		Short: "Probe URLs with httpx and classify their responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := append([]string(nil), args...)
			if list != "" {
				fromFile, err := readLines(list)
				if err != nil {
					return err
				}
				targets = append(targets, fromFile...)
			}
			src, err := feed.NewProbeFeed(targets, app.cfg.ProbeConfig, app.logger)
			if err != nil {
				return err
			}
			return app.runFeed(cmd, &flags, src)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&list, "list", "l", "", "File with one URL per line")
	return cmd
}

// openInput returns stdin when path is empty. closeFn is idempotent.
func openInput(cmd *cobra.Command, path string) (io.Reader, string, func(), error) {
	if path == "" || path == "-" {
		in := cmd.InOrStdin()
		return in, "stdin", sync.OnceFunc(func() {
			if f, ok := in.(*os.File); ok {
				_ = f.Close()
			}
		}), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", nil, common.WrapErrorf(err, "could not open input %s", path)
	}
	return f, path, sync.OnceFunc(func() { _ = f.Close() }), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapErrorf(err, "could not open target list %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read target list %s: %w", path, err)
	}
	return lines, nil
}
