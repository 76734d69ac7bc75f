package loadgen

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/common"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/ui"
)

var profileSummaries = map[string]string{
	"reads":       "list and detail requests only",
	"mixed":       "list, detail, update-as-read and readiness probes",
	"error-heavy": "malformed and unknown ids that should answer 4xx",
}

type options struct {
	baseURL     string
	profile     string
	duration    time.Duration
	rps         int
	concurrency int
	maxID       int
	seed        int64
	ci          bool
}

func (o *options) config() Config {
	return Config{
		BaseURL:     o.baseURL,
		Profile:     o.profile,
		Duration:    o.duration,
		RPS:         o.rps,
		Concurrency: o.concurrency,
		MaxID:       o.maxID,
		Seed:        o.seed,
	}
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Drive read traffic against the catalog API"}
	f := cmd.PersistentFlags()
	f.StringVar(&opts.baseURL, "base-url", defaultBaseURL, "catalog API base URL")
	f.StringVar(&opts.profile, "profile", "mixed", "traffic profile (see `loadgen profiles`)")
	f.DurationVar(&opts.duration, "duration", 15*time.Second, "how long to send traffic")
	f.IntVar(&opts.rps, "rps", 20, "target requests per second")
	f.IntVar(&opts.concurrency, "concurrency", 6, "concurrent HTTP workers")
	f.IntVar(&opts.maxID, "max-id", 20, "highest product id used for detail requests")
	f.Int64Var(&opts.seed, "seed", 42, "seed for the request mix")
	f.BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts), newProfilesCommand())
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Send traffic for --duration and report status counts",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := profileSummaries[strings.ToLower(opts.profile)]; !ok {
				return fmt.Errorf("unknown profile %q", opts.profile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "loadgen "+opts.profile, func(ctx context.Context) ([]string, error) {
				started := time.Now()
				res, err := Run(ctx, opts.config())
				if err != nil {
					return nil, err
				}
				return summarize(res, time.Since(started)), nil
			})
			common.Finish(opts.ci, "loadgen", "run", details, err, 4)
			return nil
		},
	}
}

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List traffic profiles",
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0, len(profileSummaries))
			for name := range profileSummaries {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, profileSummaries[name])
			}
		},
	}
}

func summarize(res Result, elapsed time.Duration) []string {
	out := []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		out = append(out, fmt.Sprintf("achieved_rps=%.1f", float64(res.TotalRequests)/secs))
	}
	return out
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if !opts.ci {
		return ui.Run(title, fn)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.duration+15*time.Second)
	defer cancel()
	return fn(ctx)
}
