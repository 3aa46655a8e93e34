// File: cmd/inspect.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/boxgeom/api/schemas"
	"github.com/xkilldash9x/boxgeom/internal/config"
	"github.com/xkilldash9x/boxgeom/internal/dom"
	"github.com/xkilldash9x/boxgeom/internal/geometry"
	"github.com/xkilldash9x/boxgeom/internal/observability"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// viewportTarget selects the viewport in a --scroll request.
const viewportTarget = "viewport"

type inspectOptions struct {
	xpath       string
	relativeTo  string
	scrolls     []string
	concurrency int
}

// scrollRequest is a parsed --scroll value.
type scrollRequest struct {
	target string
	x, y   float64
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Report the geometry of elements selected by XPath",
		Long: `Loads each HTML file, applies the requested scroll offsets in order and
prints a JSON report for every element matched by --xpath.

Coordinates are document coordinates unless --relative-to selects a
reference element, in which case they are measured from its padding edge.`,
		Example: `  boxgeom inspect page.html --xpath "//div[@id='menu']"
  boxgeom inspect a.html b.html --xpath //td --relative-to //table
  boxgeom inspect page.html --xpath //li --scroll "//ul=0,120" --scroll viewport=0,300`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runInspect(cmd.Context(), cmd.OutOrStdout(), cfg, opts, args, observability.GetLogger())
		},
	}

	cmd.Flags().StringVarP(&opts.xpath, "xpath", "x", "", "XPath selecting the elements to report (required)")
	cmd.Flags().StringVarP(&opts.relativeTo, "relative-to", "r", "", "XPath of the element coordinates are measured from")
	cmd.Flags().StringArrayVarP(&opts.scrolls, "scroll", "s", nil, "scroll XPATH=X,Y (or viewport=X,Y) before measuring; repeatable")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "number of files loaded in parallel")
	_ = cmd.MarkFlagRequired("xpath")

	return cmd
}

func runInspect(ctx context.Context, out io.Writer, cfg config.Interface, opts *inspectOptions, files []string, logger *zap.Logger) error {
	scrolls, err := parseScrolls(opts.scrolls)
	if err != nil {
		return err
	}
	limit := opts.concurrency
	if limit < 1 {
		limit = 1
	}

	pages := make([]*dom.Page, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := loadPage(file, cfg.Viewport(), logger)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Inspect every page before failing.
	var errs error
	reports := make([]schemas.PageReport, 0, len(pages))
	for _, p := range pages {
		report, err := inspectPage(p, opts, scrolls)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Source, err))
			continue
		}
		logger.Info("Inspected page",
			zap.String("page_id", report.PageID),
			zap.String("source", p.Source),
			zap.Int("elements", len(report.Elements)),
		)
		reports = append(reports, report)
	}
	if errs != nil {
		return errs
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func loadPage(file string, vc config.ViewportConfig, logger *zap.Logger) (*dom.Page, error) {
	path, err := homedir.Expand(file)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path '%s': %w", file, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", file, err)
	}
	defer f.Close()

	return dom.Load(f, dom.Options{
		Source:       file,
		Viewport:     geometry.Viewport{Width: vc.Width, Height: vc.Height},
		FontSize:     vc.FontSize,
		RootFontSize: vc.RootFontSize,
		Logger:       logger,
	})
}

// inspectPage applies the scroll requests to p in order and describes every
// element matched by opts.xpath.
func inspectPage(p *dom.Page, opts *inspectOptions, scrolls []scrollRequest) (schemas.PageReport, error) {
	for _, s := range scrolls {
		if s.target == viewportTarget {
			p.Resolver.ScrollViewport(s.x, s.y)
			continue
		}
		ids, err := p.QueryAll(s.target)
		if err != nil {
			return schemas.PageReport{}, fmt.Errorf("scroll target: %w", err)
		}
		for _, id := range ids {
			p.Resolver.ScrollTo(id, s.x, s.y)
		}
	}

	relativeTo := geometry.NoNode
	if opts.relativeTo != "" {
		id, err := p.Query(opts.relativeTo)
		if err != nil {
			return schemas.PageReport{}, fmt.Errorf("relative-to: %w", err)
		}
		relativeTo = id
	}

	ids, err := p.QueryAll(opts.xpath)
	if err != nil {
		return schemas.PageReport{}, err
	}
	return p.Report(ids, relativeTo), nil
}

// parseScrolls parses TARGET=X,Y values. The target is split at the last
// '=' so XPath predicates may contain their own.
func parseScrolls(values []string) ([]scrollRequest, error) {
	requests := make([]scrollRequest, 0, len(values))
	for _, value := range values {
		eq := strings.LastIndex(value, "=")
		if eq <= 0 {
			return nil, fmt.Errorf("invalid --scroll '%s': expected TARGET=X,Y", value)
		}
		target := strings.TrimSpace(value[:eq])
		coords := strings.Split(value[eq+1:], ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid --scroll '%s': expected two comma separated offsets", value)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid --scroll '%s': offsets must be numbers", value)
		}
		requests = append(requests, scrollRequest{target: target, x: x, y: y})
	}
	return requests, nil
}
