package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahlab/labctl/internal/registry"
)

func TestConfirmOverwrite(t *testing.T) {
	reg := registry.New(t.TempDir())
	// A profile named after a detected snpEff version, as runRegister
	// defaults it when --name is omitted.
	require.NoError(t, os.WriteFile(reg.ProfilePath("5.2f"), []byte("#!/bin/bash\n"), 0o644))

	t.Run("existing profile prompts even for a defaulted name", func(t *testing.T) {
		prompted := false
		err := confirmOverwrite(reg, "5.2f", func(string) (bool, error) {
			prompted = true
			return false, nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declined")
		assert.True(t, prompted)
	})

	t.Run("accepted prompt proceeds", func(t *testing.T) {
		err := confirmOverwrite(reg, "5.2f", func(string) (bool, error) { return true, nil })
		assert.NoError(t, err)
	})

	t.Run("missing profile needs no prompt", func(t *testing.T) {
		err := confirmOverwrite(reg, "fresh", func(string) (bool, error) {
			t.Fatal("prompt fired for a profile that does not exist")
			return false, nil
		})
		assert.NoError(t, err)
	})
}
