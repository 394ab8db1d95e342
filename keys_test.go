package viewpoint_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/viewpoint"
)

func TestKeyString(t *testing.T) {
	require.Equal(t, "viewpoint context key: SessionKey", viewpoint.SessionKey.String())
	require.Equal(t, "viewpoint context key: ", viewpoint.Key("").String())
}
