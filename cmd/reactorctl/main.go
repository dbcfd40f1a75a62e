// Command reactorctl runs small, self-contained demonstrations of the
// reactor runtime against a deterministic, fully-synchronous clock: no
// wall-clock sleeping, no goroutines, just repeated calls to Run.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/reactor"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reactorctl",
		Short: "Run demonstration pipelines against the reactor runtime",
	}
	root.AddCommand(newPipelineCmd(), newPingPongCmd())
	return root
}

func newPipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Map+filter a small integer stream and print the survivors",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(cmd.OutOrStdout()).With().Timestamp().Logger()
			executor := reactor.NewExecutor(reactor.WithLogger(logger))
			source := reactor.NewPublisher(executor)

			var results []any
			err := reactor.From(source).
				Map(func(v any) any { return v.(int) * 2 }).
				Filter(func(v any) bool { return v.(int)%3 == 0 }).
				ToFunc(
					func(v any) { results = append(results, v) },
					func(err error) { fmt.Fprintln(cmd.OutOrStdout(), "error:", err) },
					func() { fmt.Fprintln(cmd.OutOrStdout(), "done") },
				)
			if err != nil {
				return err
			}

			for i := 1; i <= 10; i++ {
				source.Submit(i)
			}
			source.Close()

			executor.Run()

			fmt.Fprintln(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newPingPongCmd() *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:   "pingpong",
		Short: "Bounce a promise chain back and forth N times",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor := reactor.NewExecutor()

			var bounce func(n int) *reactor.Promise
			bounce = func(n int) *reactor.Promise {
				p := reactor.NewPromise(executor)
				_ = p.Resolve(n)
				return p.Then(func(value any) any {
					count := value.(int)
					fmt.Fprintf(cmd.OutOrStdout(), "bounce %d\n", count)
					if count >= rounds {
						return count
					}
					return bounce(count + 1)
				}, nil)
			}

			bounce(1)
			executor.Run()
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 5, "number of bounces")
	return cmd
}
