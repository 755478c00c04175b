package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	in := []string{"--server.port=9090", "run", "--debug", "--tag=a", "--tag=b", "-v", "--empty="}

	args, err := ParseArguments(in)
	require.NoError(t, err)

	assert.Equal(t, in, args.SourceArgs())
	assert.Equal(t, []string{"server.port", "debug", "tag", "empty"}, args.OptionNames())
	assert.Equal(t, []string{"9090"}, args.OptionValues("server.port"))
	assert.Equal(t, []string{"a", "b"}, args.OptionValues("tag"))
	assert.Equal(t, []string{""}, args.OptionValues("empty"))

	assert.True(t, args.ContainsOption("debug"))
	assert.NotNil(t, args.OptionValues("debug"))
	assert.Empty(t, args.OptionValues("debug"))

	assert.False(t, args.ContainsOption("missing"))
	assert.Nil(t, args.OptionValues("missing"))

	assert.Equal(t, []string{"run", "-v"}, args.NonOptionArgs())
}

func TestParseArgumentsKeepsSourceIsolated(t *testing.T) {
	in := []string{"a", "b"}
	args, err := ParseArguments(in)
	require.NoError(t, err)

	in[0] = "changed"
	out := args.SourceArgs()
	assert.Equal(t, []string{"a", "b"}, out)

	out[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, args.SourceArgs())
}

func TestParseArgumentsEmpty(t *testing.T) {
	args, err := ParseArguments(nil)
	require.NoError(t, err)

	assert.Empty(t, args.SourceArgs())
	assert.Empty(t, args.OptionNames())
	assert.Empty(t, args.NonOptionArgs())
}

func TestParseArgumentsInvalid(t *testing.T) {
	for _, arg := range []string{"--", "--=value", "-- =x"} {
		_, err := ParseArguments([]string{arg})
		assert.ErrorIs(t, err, ErrInvalidArgument, arg)
	}
}
