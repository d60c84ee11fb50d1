/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package fixtures

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devtoolbox/mockapi/config"
	"github.com/devtoolbox/mockapi/query"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, config.NewDefaultLoader("").Load(cfg))
		require.Equal(t, NewDefaultConfig(), cfg)
		require.Equal(t, 50, cfg.MaxLimit("users"))
		require.Equal(t, 10, cfg.MaxLimit("quotes"))
		require.Equal(t, query.MaxLimit, cfg.MaxLimit("posts"))
	})

	t.Run("from yaml", func(t *testing.T) {
		cfgData := `
fixtures:
  dir: /tmp/fixtures
  resources:
    posts:
      maxLimit: 20
    users:
      maxLimit: 0
`
		cfg := NewConfig()
		err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBufferString(cfgData), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, "/tmp/fixtures", cfg.Dir)
		require.Equal(t, 20, cfg.MaxLimit("posts"))
		require.Equal(t, query.MaxLimit, cfg.MaxLimit("users"))
		require.Equal(t, 50, cfg.MaxLimit("comments"))
	})

	t.Run("negative max limit", func(t *testing.T) {
		cfgData := `
fixtures:
  resources:
    posts:
      maxLimit: -1
`
		cfg := NewConfig()
		err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBufferString(cfgData), config.DataTypeYAML, cfg)
		require.EqualError(t, err, `fixtures.resources.posts.maxLimit: cannot be negative`)
	})
}
