package bia

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskgraph/pkg/models"
)

func stepTimes(steps []models.EscalationStep) []int {
	times := make([]int, len(steps))
	for i, s := range steps {
		times[i] = s.TimeMinutes
	}
	return times
}

func TestDeriveDefaultCurve(t *testing.T) {
	tests := []struct {
		mtpd  int
		times []int
	}{
		{mtpd: 120, times: []int{30, 60, 90, 120}},
		{mtpd: 10, times: []int{3, 5, 8, 10}},
		{mtpd: 2, times: []int{1, 2, 3, 4}},
		{mtpd: 1, times: []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			curve := DeriveDefaultCurve(tt.mtpd)

			assert.Equal(t, tt.times, stepTimes(curve))
			assert.Equal(t, models.ImpactMinor, curve[0].Level)
			assert.Equal(t, models.ImpactCritical, curve[3].Level)
			assert.NoError(t, ValidateEscalationCurve(models.NewEscalationCurve(curve...), tt.mtpd))
		})
	}
}

func TestDeriveDefaultCurveWithoutMTPD(t *testing.T) {
	assert.Nil(t, DeriveDefaultCurve(0))
	assert.Nil(t, DeriveDefaultCurve(-60))
}
