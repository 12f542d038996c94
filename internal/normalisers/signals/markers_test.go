package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Production OUTAGE in eu-west", []string{"outage"}))
	assert.False(t, ContainsAny("all quiet", []string{"outage", ""}))
	assert.False(t, ContainsAny("anything", nil))
}

func TestDetector_ChatSignals(t *testing.T) {
	d := Detector{Handles: []string{"@sam"}}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "deploy finished", nil},
		{"direct request", "could you take a look", []string{domain.SignalDirectRequest}},
		{"handle mention", "@sam the runbook is updated", []string{domain.SignalDirectRequest}},
		{"urgent", "SEV2 declared for checkout", []string{domain.SignalUrgentKeyword}},
		{"question with action verb", "does anyone need the dashboard?", []string{domain.SignalUnansweredRequest}},
		{"question without action verb", "lunch at noon?", nil},
		{"all three", "Please help, the outage is spreading?", []string{
			domain.SignalDirectRequest, domain.SignalUrgentKeyword, domain.SignalUnansweredRequest,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ChatSignals(tt.text))
		})
	}
}

func TestDetector_EmailSignals(t *testing.T) {
	d := Detector{}

	assert.Equal(t, []string{domain.SignalLowSignal}, d.EmailSignals("Weekly newsletter", false))
	assert.Equal(t, []string{domain.SignalLowSignal}, d.EmailSignals("Hello there", true))
	assert.Equal(t, []string{domain.SignalUnansweredRequest}, d.EmailSignals("Is action required?", false))
	assert.Nil(t, d.EmailSignals("Receipt for your order", false))
}

func TestIsUrgentMatchesSubstrings(t *testing.T) {
	// "sev" is matched as a substring, so words containing it count too.
	assert.True(t, IsUrgent("several updates"))
	assert.True(t, IsLowSignal("Flash SALE today"))
	assert.False(t, IsUrgent("routine sync"))
}
