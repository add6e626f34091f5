package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2021-03-16T00:00+0000"
	stackDumpOnPanic bool
	// runCtx is cancelled on SIGINT or SIGTERM.
	runCtx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   "s2s",
	Short: "Incrementally load Survey123 submissions into SQL tables",
	Long: `s2s downloads every submission of a Survey123 form from an ArcGIS portal and inserts
the ones dated after the newest date already in the target table.

- Survey dates are normalised to YYYY-MM-DD in the chosen time zone
- Submissions dated today are skipped by default so partial days are never loaded
- Multi-select answers fan out to one row per selected option
- All rows are inserted in one transaction, so a failed run leaves the target unchanged
- Run it as often as you like: the only state is the data in the target table`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var stop context.CancelFunc
	runCtx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := execute(); err != nil {
		stop()
		os.Exit(1)
	}
	stop()
}

func execute() error {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
			return nil
		}
		return execute12FactorMode(twelveFactorActions) // logs the error.
	}
	return rootCmd.Execute() // prints the error.
}
