package learning

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries the learning settings: the game record directory and
// the search/iteration knobs.
type Config struct {
	Kifu      string
	Threads   int
	Depth     int
	Iteration int
}

// LoadConfig reads learn.yaml from the working directory.
func LoadConfig() (Config, error) {
	viper.SetConfigName("learn")
	viper.AddConfigPath(".")
	viper.SetDefault("threads", max(1, runtime.NumCPU()/2))
	viper.SetDefault("depth", 5)
	viper.SetDefault("iteration", 16)
	if err := viper.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	var cfg = Config{
		Kifu:      viper.GetString("kifu"),
		Threads:   viper.GetInt("threads"),
		Depth:     viper.GetInt("depth"),
		Iteration: viper.GetInt("iteration"),
	}
	if cfg.Kifu == "" {
		return Config{}, errors.New("config: kifu directory is required")
	}
	if cfg.Threads < 1 {
		return Config{}, errors.Errorf("config: bad thread count %v", cfg.Threads)
	}
	return cfg, nil
}
