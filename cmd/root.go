package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bundlegen",
	Short: "r.js module and bundle config generator",
	Long: "Bundlegen scans a tree of AMD scripts, infers which identifiers every module must " +
		"exclude and writes the module, bundle and aggregation files an r.js build needs.",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .bundlegen.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("entry", "", "entry script declaring the library paths (default scripts/main.js)")
	flags.String("scripts", "", "scripts root that module paths are relative to (default scripts)")
	flags.String("shared", "", "folder whose subfolders are shared modules (default scripts/shared)")
	flags.String("build-config", "", "TOML build config (default bundlegen.toml)")
	flags.IntP("concurrency", "j", 0, "aggregation files written at once (default 4)")

	bindFlag("verbose", "verbose")
	bindFlag("entry_file", "entry")
	bindFlag("scripts_root", "scripts")
	bindFlag("shared_dir", "shared")
	bindFlag("build_config", "build-config")
	bindFlag("concurrency", "concurrency")
}

// bindFlag binds a persistent flag to a viper key. Unset flags leave the
// config file, environment and defaults in charge.
func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

func initConfig() {
	// A missing .env is fine; BUNDLEGEN_* may come from the real environment.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".bundlegen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("BUNDLEGEN")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
