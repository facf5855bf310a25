package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	settings = viper.New()
	conf     *config
)

var rootCmd = &cobra.Command{
	Use:           "chq",
	Short:         "Build and run ClickHouse queries over HTTP",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(settings)
		if err != nil {
			return err
		}
		conf = c
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "HTTP interface URL, e.g. http://localhost:8123/?database=default")
	flags.Bool("with-names", false, "Request column names with every result")
	flags.BoolP("verbose", "v", false, "Log statements")

	_ = settings.BindPFlag("url", flags.Lookup("url"))
	_ = settings.BindPFlag("with_names", flags.Lookup("with-names"))
	_ = settings.BindPFlag("verbose", flags.Lookup("verbose"))
}
