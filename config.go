package orbital

import (
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	cfgOnce sync.Once
	config  = _orbitalconfig{}
)

// _orbitalconfig is a "hidden" struct, just use `orbitalConfig`
type _orbitalconfig struct {
	outputDir    string
	passStep     time.Duration
	minElevation float64
	illumination bool
}

// orbitalConfig returns the library configuration, loading it on first use.
// The file is optional: without ORBITAL_CONFIG in the environment, or
// without a conf.toml in the directory it names, every knob keeps its
// default.
func orbitalConfig() _orbitalconfig {
	cfgOnce.Do(func() {
		viper.SetDefault("general.output_path", "./")
		viper.SetDefault("passes.step_seconds", 60)
		viper.SetDefault("passes.min_elevation", DefaultMinElevation)
		viper.SetDefault("passes.illumination", true)
		if confPath := os.Getenv("ORBITAL_CONFIG"); confPath != "" {
			viper.SetConfigName("conf")
			viper.AddConfigPath(confPath)
			// A missing or broken file is fine, the defaults cover it.
			viper.ReadInConfig()
		}
		config = _orbitalconfig{
			outputDir:    viper.GetString("general.output_path"),
			passStep:     time.Duration(viper.GetInt("passes.step_seconds")) * time.Second,
			minElevation: viper.GetFloat64("passes.min_elevation"),
			illumination: viper.GetBool("passes.illumination"),
		}
	})
	return config
}
