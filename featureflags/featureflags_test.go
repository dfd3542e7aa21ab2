package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.NoError(t, Initialize(Config{}))
	assert.True(t, IsEnabled(ApplicationsAutoApprove))
	assert.False(t, IsEnabled("api.unknown"))

	SetDefault(ApplicationsAutoApprove, false)
	defer SetDefault(ApplicationsAutoApprove, true)
	assert.False(t, IsEnabled(ApplicationsAutoApprove))

	Close()
}
