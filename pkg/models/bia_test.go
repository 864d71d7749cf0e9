package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalationCurveUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		steps     int
		malformed bool
		broken    bool
	}{
		{name: "list", payload: `[{"time_minutes":30,"level":"MINOR"},{"time_minutes":60,"level":"SEVERE"}]`, steps: 2},
		{name: "null", payload: `null`},
		{name: "empty object", payload: `{}`},
		{name: "empty string", payload: `""`},
		{name: "object", payload: `{"time_minutes":30}`, malformed: true},
		{name: "number", payload: `42`, malformed: true},
		{name: "non-object step", payload: `[1]`, steps: 1, broken: true},
		{name: "missing level", payload: `[{"time_minutes":30}]`, steps: 1, broken: true},
		{name: "string time", payload: `[{"time_minutes":"30","level":"MINOR"}]`, steps: 1, broken: true},
		{name: "null time", payload: `[{"time_minutes":null,"level":"MINOR"}]`, steps: 1, broken: true},
		{name: "integral float time", payload: `[{"time_minutes":30.0,"level":"MINOR"}]`, steps: 1},
		{name: "unknown level", payload: `[{"time_minutes":30,"level":"BAD"}]`, steps: 1, broken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profile BIAProfile
			err := json.Unmarshal([]byte(`{"service_id":"s","impact_escalation_curve":`+tt.payload+`}`), &profile)
			require.NoError(t, err)

			curve := profile.EscalationCurve
			assert.Len(t, curve.Steps, tt.steps)
			assert.Equal(t, tt.malformed, curve.Malformed)
			assert.Equal(t, tt.broken, curve.HasBrokenSteps())
		})
	}
}

func TestEscalationCurveMarshal(t *testing.T) {
	data, err := json.Marshal(NewEscalationCurve(EscalationStep{TimeMinutes: 30, Level: ImpactMinor}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"time_minutes":30,"level":"MINOR"}]`, string(data))

	data, err = json.Marshal(EscalationCurve{Malformed: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestImpactLevelSeverity(t *testing.T) {
	assert.Equal(t, 0, ImpactUnknown.Severity())
	assert.Equal(t, 0, ImpactLevel("bogus").Severity())
	assert.Equal(t, 5, ImpactCatastrophic.Severity())
	assert.True(t, ImpactMinor.Valid())
	assert.False(t, ImpactUnknown.Valid())

	_, err := ParseImpactLevel("UNKNOWN")
	assert.Error(t, err)
}
