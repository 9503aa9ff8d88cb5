package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	dets := []Detection{
		{Category: CategoryPasswordForm, HTML: "<form>a</form>"},
		{Category: CategoryAuthForm, HTML: "<form>a</form>"},
		{Category: CategoryAuthLink, HTML: `<a href="/login">x</a>`},
		{Category: CategoryAuthLink, HTML: `<a href="/signin">y</a>`},
	}
	r := BuildReport(dets)

	assert.True(t, r.Found)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, map[string]int{
		"password_field_form": 1,
		"auth_form":           1,
		"auth_link":           2,
	}, r.Counts)
	assert.Equal(t,
		"Found 4 auth component(s): Login Form (contains password field), Authentication Form, Auth Link",
		r.Summary)
	require.Len(t, r.Components, 4)
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil)

	assert.False(t, r.Found)
	assert.Zero(t, r.Total)
	assert.NotNil(t, r.Components, "components must serialize as an empty array")
	assert.Empty(t, r.Components)
	assert.Equal(t, "No authentication components detected on this page.", r.Summary)
}
