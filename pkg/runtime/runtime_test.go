package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{StackSize: 4096, NetworkPollers: 2}
}

func TestNewStripsProgramName(t *testing.T) {
	r, err := New(testConfig(), nil, []string{"prog", "a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.State().Argv)
}

func TestNewWithEmptyArgv(t *testing.T) {
	r, err := New(testConfig(), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, r.State().Argv)
}

func TestNewCarriesCountsAndPrototypes(t *testing.T) {
	counts := MethodCounts{3, 1, 0}
	r, err := New(testConfig(), counts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, counts, r.State().Counts)
	assert.Contains(t, r.State().Prototypes, ClassReadOnlyFile)
	assert.Contains(t, r.State().Prototypes, ClassWriteOnlyFile)
	assert.Contains(t, r.State().Prototypes, ClassReadWriteFile)
}

func TestStackMaskMasksPageAlignedBase(t *testing.T) {
	r, err := New(testConfig(), nil, nil, nil)
	require.NoError(t, err)

	mask := r.StackMask()

	// Any address that is itself a multiple of the rounded stack size
	// should be unchanged when ANDed with its own mask.
	total := ^mask + 1
	base := total * 3
	assert.Equal(t, base, base&mask)
}

func TestStartRunsEntryAndReturns(t *testing.T) {
	r, err := New(testConfig(), nil, []string{"prog"}, nil)
	require.NoError(t, err)

	var ran bool
	err = r.Start(func(p *Process, s *State) error {
		ran = true
		assert.NotNil(t, p.Stack)
		assert.NotZero(t, p.StackMask)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestStartPropagatesEntryError(t *testing.T) {
	r, err := New(testConfig(), nil, nil, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = r.Start(func(p *Process, s *State) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestStateArgvAfterStart(t *testing.T) {
	r, err := New(testConfig(), nil, []string{"prog", "a", "b"}, nil)
	require.NoError(t, err)

	var argv []string
	err = r.Start(func(p *Process, s *State) error {
		argv = s.Argv
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, argv)
}
