package tele

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugmirror/kasa"
	"plugmirror/log2"
)

func TestDisabledIsNoop(t *testing.T) {
	t.Parallel()

	teler, err := New(log2.NewTest(t, log2.LDebug), Config{})
	require.NoError(t, err)
	assert.Equal(t, Noop{}, teler)

	// all methods are safe on the noop
	teler.State(kasa.On)
	teler.Error(errors.New("x"))
	teler.Close()
}

func TestEnabledNeedsBroker(t *testing.T) {
	t.Parallel()

	_, err := New(log2.NewTest(t, log2.LDebug), Config{Enable: true})
	require.Error(t, err)
}

func TestTopicSet(t *testing.T) {
	t.Parallel()

	ts := newTopicSet("plugmirror")
	assert.Equal(t, "plugmirror/c", ts.connect)
	assert.Equal(t, "plugmirror/w/1s", ts.state)
	assert.Equal(t, "plugmirror/w/1e", ts.errors)
}
