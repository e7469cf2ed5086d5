package providers

import (
	"fmt"

	"ade/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	return cv.validateEngine()
}

// validateEngine covers the cross-field rules struct tags cannot express.
func (cv *CnfValidator) validateEngine() error {
	eng := &cv.conf.Engine

	if eng.Display.MaxInterval < eng.Display.MinInterval {
		return fmt.Errorf("engine.display: maxInterval (%s) must not be below minInterval (%s)",
			eng.Display.MaxInterval, eng.Display.MinInterval)
	}
	if eng.Playback.SkipDelayTicks < 0 {
		return fmt.Errorf("engine.playback: skipDelayTicks must not be negative")
	}
	if eng.Playback.SkipDelayTicks > eng.Playback.CountdownTicks {
		return fmt.Errorf("engine.playback: skipDelayTicks (%d) must not exceed countdownTicks (%d)",
			eng.Playback.SkipDelayTicks, eng.Playback.CountdownTicks)
	}
	if eng.Playback.SkipVideoPercent < 0 || eng.Playback.SkipVideoPercent > 1 {
		return fmt.Errorf("engine.playback: skipVideoPercent must be within [0, 1]")
	}
	if eng.FrequencyCap.Enabled {
		if eng.FrequencyCap.Daily <= 0 || eng.FrequencyCap.Weekly <= 0 || eng.FrequencyCap.Monthly <= 0 {
			return fmt.Errorf("engine.frequencyCap: enabled caps require positive daily, weekly and monthly limits")
		}
	}
	if eng.ABTest.Enabled && len(eng.ABTest.Variants) == 0 {
		return fmt.Errorf("engine.abTest: enabled A/B testing requires at least one variant")
	}
	return nil
}
