package cmd

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

func TestConfigDefaultsMatchConstants(t *testing.T) {
	if got := viper.GetDuration("probe.timeout"); got != constants.DefaultProbeTimeout {
		t.Errorf("probe.timeout default = %v, want %v", got, constants.DefaultProbeTimeout)
	}
	if got := viper.GetInt("probe.rps"); got != constants.DefaultOutboundRPS {
		t.Errorf("probe.rps default = %d, want %d", got, constants.DefaultOutboundRPS)
	}
	if got := viper.GetDuration("analyzer.timeout"); got != constants.DefaultAnalyzerTimeout {
		t.Errorf("analyzer.timeout default = %v, want %v", got, constants.DefaultAnalyzerTimeout)
	}
	if got := viper.GetFloat64("analyzer.smoothing_alpha"); got != constants.DefaultSmoothingAlpha {
		t.Errorf("analyzer.smoothing_alpha default = %v, want %v", got, constants.DefaultSmoothingAlpha)
	}
	if got := viper.GetFloat64("analyzer.deviation_threshold"); got != constants.DefaultDeviationThreshold {
		t.Errorf("analyzer.deviation_threshold default = %v, want %v", got, constants.DefaultDeviationThreshold)
	}
	if got := viper.GetDuration("notify.cooldown"); got != constants.NotifyCooldown {
		t.Errorf("notify.cooldown default = %v, want %v", got, constants.NotifyCooldown)
	}
	if got := viper.GetDuration("scheduler.tick"); got != constants.DefaultTickInterval {
		t.Errorf("scheduler.tick default = %v, want %v", got, constants.DefaultTickInterval)
	}
	if got := viper.GetInt("scheduler.workers"); got != constants.DefaultWorkers {
		t.Errorf("scheduler.workers default = %d, want %d", got, constants.DefaultWorkers)
	}
}
