package respbuilder_test

import (
	"testing"

	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer/respbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Success(t *testing.T) {
	b := respbuilder.New("req-1")
	b.StartJob("linux", api.Vitals{Age: 53}, []float64{0.5, 0, 0, 0})
	b.FinishClient(&api.ClientRun{ExitCode: 1})
	b.Warn("completed", "client exited with code 1")
	size := int64(2048)
	b.FinishSuccess(0.73, "high", &api.CiphertextInfo{SizeBytes: &size})

	res := b.Response()
	assert.Equal(t, "req-1", res.RequestUuid)
	assert.Equal(t, api.Success, res.Status)
	assert.Equal(t, "success", res.State)
	require.NotNil(t, res.Probability)
	assert.Equal(t, 0.73, *res.Probability)
	assert.Equal(t, "high", *res.RiskBand)
	assert.Equal(t, []string{"completed: client exited with code 1"}, res.Warnings)
	assert.Equal(t, int64(1), res.Client.ExitCode)
	assert.Equal(t, []float64{0.5, 0, 0, 0}, res.Features)
	require.NotNil(t, res.SystemInfo)
	assert.Equal(t, "linux", *res.SystemInfo)
}

func TestBuilder_ErrorKinds(t *testing.T) {
	cases := map[string]api.DiagnoseStatus{
		"timeout":       api.TimeoutError,
		"configuration": api.ConfigurationError,
		"cancelled":     api.Cancelled,
		"protocol":      api.ProtocolError,
		"input":         api.InvalidInput,
	}
	for kind, want := range cases {
		b := respbuilder.New("r")
		b.FinishError("some_state", kind, "boom", []string{"hint"})
		res := b.Response()
		assert.Equal(t, want, res.Status, kind)
		assert.Equal(t, "some_state", res.State)
		assert.Equal(t, "boom", *res.ErrorMessage)
		assert.Equal(t, []string{"hint"}, res.Hints)
		assert.Nil(t, res.Probability)
		assert.Nil(t, res.SystemInfo)
	}
}
