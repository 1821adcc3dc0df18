package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("OH_INT", "12")
	t.Setenv("OH_BAD_INT", "twelve")
	t.Setenv("OH_DUR", "90s")
	t.Setenv("OH_DUR_SECS", "30")
	t.Setenv("OH_BOOL", "Yes")
	t.Setenv("OH_LIST", "a, b;;c\n")

	assert.Equal(t, 12, GetInt("OH_INT", 1))
	assert.Equal(t, 1, GetInt("OH_BAD_INT", 1))
	assert.Equal(t, 7, GetInt("OH_UNSET", 7))
	assert.Equal(t, 90*time.Second, GetDuration("OH_DUR", time.Minute))
	assert.Equal(t, 30*time.Second, GetDuration("OH_DUR_SECS", time.Minute))
	assert.True(t, GetBool("OH_BOOL", false))
	assert.True(t, GetBool("OH_UNSET", true))
	assert.Equal(t, []string{"a", "b", "c"}, GetList("OH_LIST"))
	assert.Equal(t, "fallback", Get("OH_UNSET", "fallback"))
}
