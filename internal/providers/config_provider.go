package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"ade/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "ADE_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "ADE_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "ADE_CACHE_ENABLED")
	viper.BindEnv("cache.size", "ADE_CACHE_SIZE")
	viper.BindEnv("engine.display.minInterval", "ADE_DISPLAY_MIN_INTERVAL")
	viper.BindEnv("engine.display.maxInterval", "ADE_DISPLAY_MAX_INTERVAL")
	viper.BindEnv("engine.playback.countdownTicks", "ADE_COUNTDOWN_DURATION")
	viper.BindEnv("engine.playback.skipDelayTicks", "ADE_SKIP_DELAY_IMAGE")
	viper.BindEnv("engine.playback.skipVideoPercent", "ADE_SKIP_DELAY_VIDEO_PERCENT")
	viper.BindEnv("engine.adService.baseUrl", "ADE_AD_SERVICE_URL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "AdDecisionEngine"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
