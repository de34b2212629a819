package main

import (
	"os"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
)

var logger zerolog.Logger

func main() {
	root := &cobra.Command{
		Use:   "condense",
		Short: "Build-time macro preprocessor for JavaScript",
		Long: "condense resolves @common:if / @common:define-inline macros in\n" +
			"JavaScript source against a JSON configuration, then removes the\n" +
			"declarations and bundler modules the substitutions made unreachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}

	root.PersistentFlags().StringP("config", "c", "{}",
		"JSON configuration: inline JSON or a path to a JSON file")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("condense")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(newBuildCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fatal(err)
	}
}

func setupLogger() {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	runID, _ := uuid.NewV4()
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !useColor()}
	logger = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID.String()).
		Logger()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("condense %s (%s)\n", version, commit)
		},
	}
}
