package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"susrolld/internal/structures"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "SUSROLLD_LOG_LEVEL")
	v.BindEnv("persistence.saveInterval", "SUSROLLD_SAVE_INTERVAL")
	v.BindEnv("source.endpoint", "SUSROLLD_SOURCE_ENDPOINT")
	v.BindEnv("cache.enabled", "SUSROLLD_CACHE_ENABLED")
	v.BindEnv("cache.size", "SUSROLLD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	applyGachaDefaults(&conf)

	conf.AppName = "SusRollsDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// applyGachaDefaults fills the tunables the config file may omit with
// the product constants: 10 rolls per period, 10 fetch attempts, a page
// space of 5000 at 25 records per page, 600ms base throttle and a 500ms
// card reveal.
func applyGachaDefaults(conf *structures.Config) {
	if conf.Gacha.MaxRolls <= 0 {
		conf.Gacha.MaxRolls = 10
	}
	if conf.Gacha.RevealDelay <= 0 {
		conf.Gacha.RevealDelay = 500 * time.Millisecond
	}
	if conf.Source.MaxAttempts <= 0 {
		conf.Source.MaxAttempts = 10
	}
	if conf.Source.PageSpace <= 0 {
		conf.Source.PageSpace = 5000
	}
	if conf.Source.PerPage <= 0 {
		conf.Source.PerPage = 25
	}
	if conf.Source.MinDelay <= 0 {
		conf.Source.MinDelay = 600 * time.Millisecond
	}
}
