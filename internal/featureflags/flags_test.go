package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabledFromEnv(t *testing.T) {
	t.Setenv("FLAG_DEMO_LOGIN", "Yes")
	t.Setenv("FLAG_GENERATIVE_CHAT", "0")

	assert.True(t, Enabled(DemoLogin))
	assert.False(t, Enabled(GenerativeChat))
	assert.False(t, Enabled("UNSET_FLAG"))
}

func TestStatic(t *testing.T) {
	f := Static(map[string]bool{DemoLogin: true})
	assert.True(t, f.Enabled(DemoLogin))
	assert.True(t, f.Enabled("demo_login"))
	assert.False(t, f.Enabled(GenerativeChat))
	assert.False(t, Flags{}.Enabled(DemoLogin))
}
