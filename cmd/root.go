// Package cmd implements the command-line interface for mpvsource.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/constant"
	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/style"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., emoji, plain, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("engine", "", "Decode engine executable")
	lo.Must0(viper.BindPFlag(key.EngineBinary, rootCmd.PersistentFlags().Lookup("engine")))
}

// rootCmd defines the entry point for the mpvsource application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Play media playlists through an mpv-backed media source",
	Long: style.Bold(constant.SourceName) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Play media playlists through an mpv-backed media source"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}
		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
