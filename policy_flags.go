package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"dupefinder/logging"
	"dupefinder/policy"
	"dupefinder/utils"
)

func addPolicyFlags(flags *pflag.FlagSet) {
	flags.String("modes", "exact", "similarity methods: exact, dhash, phash (comma separated)")
	flags.Bool("thumbnails", false, "treat reduced-size copies as duplicates (needs phash)")
	flags.Bool("videos", false, "include videos through their first-frame fingerprints")
}

// resolvePolicy builds the similarity policy: the config file (or defaults), then
// DUPEFINDER_* variables, then flags given on the command line
func resolvePolicy(flags *pflag.FlagSet, configFile string) (policy.Config, error) {
	cfg := policy.DefaultConfig()
	if configFile != "" {
		loaded, err := policy.LoadConfig(configFile)
		if err != nil {
			return policy.Config{}, err
		}
		cfg = loaded
	}

	cfg, err := policy.ConfigFromEnv(cfg)
	if err != nil {
		return policy.Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	if flags.Changed("modes") {
		value, _ := flags.GetString("modes")
		modes, err := utils.ParseModes(value)
		if err != nil {
			return policy.Config{}, err
		}
		cfg.UseExactHash = modes.Exact
		cfg.UseDHash = modes.DHash
		cfg.UsePHash = modes.PHash
	}
	if flags.Changed("thumbnails") {
		cfg.DetectThumbnails, _ = flags.GetBool("thumbnails")
	}
	if flags.Changed("videos") {
		cfg.AnalyzeVideos, _ = flags.GetBool("videos")
	}

	if err := cfg.Validate(); err != nil {
		return policy.Config{}, err
	}
	logging.DebugLog("Similarity policy: %s", cfg)
	return cfg, nil
}
