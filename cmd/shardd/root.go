package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/YosefMac/Xapiand"
)

const envPrefix = "XAPIAND"

// NewRootCommand returns the shardd command tree. Output of subcommands goes
// to stdout, logs go to stderr.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:           "shardd",
		Short:         "Serve and inspect xapiand shards.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")
	rc.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error.")

	rc.AddCommand(newServeCommand(stdout, stderr))
	rc.AddCommand(newStatCommand(stdout, stderr))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig applies, in order of priority, command line flags,
// XAPIAND_* environment variables and the TOML configuration file to flags.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading configuration file %q: %w", c, err)
		}
		for _, key := range v.AllKeys() {
			if flags.Lookup(key) == nil {
				return fmt.Errorf("invalid option in configuration file: %s", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			// A TOML array is not a string, so join it the way the flag
			// would have been spelled.
			value = strings.Join(v.GetStringSlice(f.Name), ",")
		} else {
			value = v.GetString(f.Name)
		}
		flagErr = flags.Set(f.Name, value)
	})
	return flagErr
}

func newLogger(cmd *cobra.Command, w io.Writer) (*xapiand.Logger, error) {
	name, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", name)
	}
	return xapiand.NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
