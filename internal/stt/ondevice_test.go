package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMSEnergyOfSilenceIsBelowFloor(t *testing.T) {
	samples := make([]float32, 256)
	assert.Less(t, rmsEnergy(samples), float64(OnDeviceEnergyFloor))
}

func TestRMSEnergyOfLoudSignalExceedsFloor(t *testing.T) {
	samples := make([]float32, 256)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.5
		} else {
			samples[i] = -0.5
		}
	}
	assert.Greater(t, rmsEnergy(samples), float64(OnDeviceEnergyFloor))
}

func TestRMSEnergyOfEmptyIsZero(t *testing.T) {
	assert.Equal(t, float64(0), rmsEnergy(nil))
}
