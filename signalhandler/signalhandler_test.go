package signalhandler

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOptimalProcs(t *testing.T) {
	procs := GetOptimalProcs()
	assert.GreaterOrEqual(t, procs, 1)
	assert.LessOrEqual(t, procs, runtime.NumCPU())
}

func TestGetMaxProcs(t *testing.T) {
	assert.Equal(t, GetOptimalProcs(), GetMaxProcs(0))
	assert.Equal(t, GetOptimalProcs(), GetMaxProcs(-3))
	assert.Equal(t, 1, GetMaxProcs(1))
	assert.Equal(t, runtime.NumCPU(), GetMaxProcs(runtime.NumCPU()+10))
}

func TestSetupHandlerStop(t *testing.T) {
	called := false
	stop := SetupHandler(func() { called = true })
	stop()
	assert.False(t, called)
}
