package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2md/internal/container"
	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/internal/pipeline"
	"github.com/pdiddy/doc2md/pkg/types"
)

const defaultTimeout = 5 * time.Minute

// conversionFlags registers the engine and worker flags shared by convert
// and serve.
func conversionFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", "markitdown", "conversion engine: markitdown or remote")
	cmd.Flags().String("image", convert.DefaultImage, "markitdown container image")
	cmd.Flags().String("remote-url", "", "base URL of a remote conversion service")
	cmd.Flags().Duration("timeout", defaultTimeout, "per-document conversion timeout")
	cmd.Flags().Int("parallel", pipeline.DefaultParallel, "concurrent conversions")
}

// engineConfig assembles the engine configuration from flags, config file,
// environment and secrets.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	return types.EngineConfig{
		Kind:    types.EngineKind(settingString(cmd, "engine")),
		Image:   settingString(cmd, "image"),
		Timeout: settingDuration(cmd, "timeout"),
		Remote: types.RemoteConfig{
			URL:    settingString(cmd, "remote-url"),
			APIKey: secretDefault("remote-api-key", viper.GetString("remote-api-key")),
		},
	}
}

// buildEngine constructs the configured engine, bounded by the timeout.
func buildEngine(cmd *cobra.Command) (convert.Engine, types.EngineConfig, error) {
	cfg := engineConfig(cmd)

	var (
		eng convert.Engine
		err error
	)
	switch cfg.Kind {
	case types.EngineMarkitdown:
		var rt container.Runtime
		rt, err = container.DetectRuntime()
		if err == nil {
			eng, err = convert.NewMarkitdownEngine(rt, cfg.Image)
		}
	case types.EngineRemote:
		eng, err = convert.NewRemoteEngine(&http.Client{}, cfg.Remote)
	default:
		err = fmt.Errorf("unknown engine %q: use markitdown or remote", cfg.Kind)
	}
	if err != nil {
		return nil, cfg, err
	}
	return convert.WithTimeout(eng, cfg.Timeout), cfg, nil
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Report conversion engine availability",
	Long: `Engines checks which conversion backends this machine can use: the
container runtime and markitdown image behind the default engine, and the
remote service configuration when one is set.`,
	RunE: runEngines,
}

func runEngines(cmd *cobra.Command, args []string) error {
	image := settingString(cmd, "image")

	rt, err := container.DetectRuntime()
	if err != nil {
		fmt.Println("container runtime: none detected")
	} else {
		fmt.Printf("container runtime: %s\n", rt.Name())
		if err := rt.ImageExists(image); err != nil {
			fmt.Printf("image %s: missing\n", image)
		} else {
			fmt.Printf("image %s: present\n", image)
		}
	}

	url := settingString(cmd, "remote-url")
	if url == "" {
		fmt.Println("remote engine: not configured")
		return nil
	}
	keyState := "no api key"
	if secretDefault("remote-api-key", viper.GetString("remote-api-key")) != "" {
		keyState = "api key set"
	}
	fmt.Printf("remote engine: %s (%s)\n", url, keyState)
	return nil
}

func init() {
	enginesCmd.Flags().String("image", convert.DefaultImage, "markitdown container image to check")
	enginesCmd.Flags().String("remote-url", "", "base URL of a remote conversion service")

	rootCmd.AddCommand(enginesCmd)
}
