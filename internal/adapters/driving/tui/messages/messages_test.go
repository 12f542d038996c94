package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	assert.Equal(t, "brief", ViewBrief.String())
	assert.Equal(t, "events", ViewEvents.String())
	assert.Equal(t, "help", ViewHelp.String())
	assert.Equal(t, "unknown", ViewType(99).String())
}
