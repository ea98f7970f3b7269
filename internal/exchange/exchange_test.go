package exchange_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayout(t *testing.T) exchange.Layout {
	t.Helper()
	l := exchange.NewLayout(t.TempDir())
	require.NoError(t, os.MkdirAll(l.SharedPath(), 0755))
	return l
}

func writeArtifact(t *testing.T, l exchange.Layout, a exchange.Artifact, content string) {
	t.Helper()
	path := l.Path(a)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLayout_Paths(t *testing.T) {
	l := exchange.NewLayout("/app")
	assert.Equal(t, "/app/raw_data.txt", l.Path(exchange.RawInput))
	assert.Equal(t, "/app/Client_Hospital/result.txt", l.Path(exchange.Result))
	assert.Equal(t, "/app/Shared_Channel/ciphertext_info.txt", l.Path(exchange.CiphertextInfo))
	assert.Equal(t, "/app/Shared_Channel/ciphertext_size.txt", l.Path(exchange.CiphertextSize))
	assert.Equal(t, "/app/Shared_Channel/ciphertext_binary.dat", l.Path(exchange.CiphertextBinary))
	assert.Equal(t, "/app/weights.txt", l.Path(exchange.Weights))
	assert.Equal(t, "/app/bias.txt", l.Path(exchange.Bias))
	assert.Equal(t, "/app/Shared_Channel/request.ckks", l.Path(exchange.RequestSentinel))
	assert.Equal(t, "/app/Shared_Channel/response.ckks", l.Path(exchange.ResponseSentinel))

	l.ResultPath = "result.txt"
	assert.Equal(t, "/app/result.txt", l.Path(exchange.Result))
}

func TestFormatRawInput(t *testing.T) {
	v := vitals.FeatureVector{0.4375, 0.245283018867, 1, 0}
	assert.Equal(t, "0.437500\n0.245283\n1.000000\n0.000000", exchange.FormatRawInput(v))
}

func TestRawInput_RoundTrip(t *testing.T) {
	l := newLayout(t)
	v := vitals.DefaultTable.Normalize(vitals.ClinicalSample{Age: 63, BloodPressure: 145, Cholesterol: 233, MaxHeartRate: 150})

	require.NoError(t, exchange.WriteRawInput(l, v))
	got, err := exchange.ReadRawInput(l)
	require.NoError(t, err)
	for i := range v {
		assert.InDelta(t, v[i], got[i], 1e-6)
	}
}

func TestParseRawInput_Tolerance(t *testing.T) {
	want := vitals.FeatureVector{0.1, 0.2, 0.3, 0.4}
	for name, content := range map[string]string{
		"no trailing newline": "0.100000\n0.200000\n0.300000\n0.400000",
		"trailing newline":    "0.100000\n0.200000\n0.300000\n0.400000\n",
		"crlf":                "0.100000\r\n0.200000\r\n0.300000\r\n0.400000\r\n",
		"blank lines":         "\n0.100000\n\n0.200000\n0.300000\n0.400000\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := exchange.ParseRawInput(content)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseRawInput_Errors(t *testing.T) {
	_, err := exchange.ParseRawInput("0.1\n0.2\n0.3")
	require.ErrorContains(t, err, "has 3 values")

	_, err = exchange.ParseRawInput("0.1\n0.2\n0.3\n0.4\n0.5")
	require.ErrorContains(t, err, "more than 4")

	_, err = exchange.ParseRawInput("0.1\nabc\n0.3\n0.4")
	require.ErrorContains(t, err, "line 2")
}

func TestWriteRawInput_ReplacesStale(t *testing.T) {
	l := newLayout(t)
	writeArtifact(t, l, exchange.RawInput, "0.9\n0.9\n0.9\n0.9\n0.9\n0.9\n")

	require.NoError(t, exchange.WriteRawInput(l, vitals.FeatureVector{0, 0.5, 1, 0.25}))
	data, err := os.ReadFile(l.Path(exchange.RawInput))
	require.NoError(t, err)
	assert.Equal(t, "0.000000\n0.500000\n1.000000\n0.250000", string(data))
}

func TestReadResult(t *testing.T) {
	l := newLayout(t)

	_, err := exchange.ReadResult(l)
	require.ErrorIs(t, err, exchange.ErrResultMissing)

	writeArtifact(t, l, exchange.Result, "  \n")
	_, err = exchange.ReadResult(l)
	require.ErrorIs(t, err, exchange.ErrResultEmpty)

	writeArtifact(t, l, exchange.Result, "abc\n")
	_, err = exchange.ReadResult(l)
	var invalid *exchange.InvalidResultError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "abc", invalid.Raw)
	assert.Contains(t, err.Error(), "abc")

	writeArtifact(t, l, exchange.Result, "0.73\n")
	p, err := exchange.ReadResult(l)
	require.NoError(t, err)
	assert.Equal(t, 0.73, p)
}

func TestParseResult_NonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "inf", "-Inf"} {
		_, err := exchange.ParseResult(raw)
		var invalid *exchange.InvalidResultError
		assert.ErrorAs(t, err, &invalid, raw)
	}
}

func TestRemoveResult(t *testing.T) {
	l := newLayout(t)
	require.NoError(t, exchange.RemoveResult(l))
	assert.DirExists(t, filepath.Dir(l.Path(exchange.Result)))

	writeArtifact(t, l, exchange.Result, "0.5")
	require.NoError(t, exchange.RemoveResult(l))
	_, err := os.Stat(l.Path(exchange.Result))
	assert.True(t, os.IsNotExist(err))
}

func TestReadCiphertext_Missing(t *testing.T) {
	l := exchange.NewLayout(t.TempDir())
	info := exchange.ReadCiphertext(l)
	assert.False(t, info.Found())
	assert.False(t, info.SharedDirExists)
	assert.Equal(t, []exchange.Artifact{exchange.CiphertextInfo, exchange.CiphertextSize, exchange.CiphertextBinary}, info.Missing())
}

func TestReadCiphertext_Present(t *testing.T) {
	l := newLayout(t)
	writeArtifact(t, l, exchange.CiphertextInfo, "Ciphertext Information\nPoly Modulus Degree: 8192\n")
	writeArtifact(t, l, exchange.CiphertextSize, "2097152\n")
	writeArtifact(t, l, exchange.CiphertextBinary, "\x00\x01\x02")

	info := exchange.ReadCiphertext(l)
	assert.True(t, info.Found())
	assert.Empty(t, info.Missing())
	assert.Contains(t, info.Text, "8192")
	assert.Equal(t, int64(2097152), info.SizeBytes)
	assert.True(t, info.SharedDirExists)
	assert.Equal(t, []string{"ciphertext_binary.dat", "ciphertext_info.txt", "ciphertext_size.txt"}, info.SharedFiles)

	data, err := exchange.ReadCiphertextBinary(l)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)
}

func TestReadCiphertext_BadSize(t *testing.T) {
	l := newLayout(t)
	writeArtifact(t, l, exchange.CiphertextSize, "lots")

	info := exchange.ReadCiphertext(l)
	assert.True(t, info.HasSize)
	assert.Zero(t, info.SizeBytes)
	require.Error(t, info.SizeErr)
}

func TestModel_WriteRead(t *testing.T) {
	l := newLayout(t)
	m := exchange.Model{Weights: [4]float64{0.123456789, -0.5, 0.25, -1.0000004}, Bias: 0.4567891}

	require.NoError(t, exchange.WriteModel(l, m))

	wData, err := os.ReadFile(l.Path(exchange.Weights))
	require.NoError(t, err)
	assert.Equal(t, "0.123457 -0.500000 0.250000 -1.000000", string(wData))
	bData, err := os.ReadFile(l.Path(exchange.Bias))
	require.NoError(t, err)
	assert.Equal(t, "0.456789", string(bData))

	got, err := exchange.ReadModel(l)
	require.NoError(t, err)
	for i := range m.Weights {
		assert.InDelta(t, m.Weights[i], got.Weights[i], 1e-6)
	}
	assert.InDelta(t, m.Bias, got.Bias, 1e-6)
}

func TestParseWeights_NumpyTrailingSpace(t *testing.T) {
	w, err := exchange.ParseWeights("0.100000 0.200000 -0.300000 0.400000 ")
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0.1, 0.2, -0.3, 0.4}, w)

	_, err = exchange.ParseWeights("0.1 0.2 0.3")
	require.Error(t, err)
}

func TestModel_Predict(t *testing.T) {
	m := exchange.Model{Weights: [4]float64{1, 2, 3, 4}, Bias: 0.5}
	assert.InDelta(t, 0.5+0.1+0.4+0.9+1.6, m.Predict(vitals.FeatureVector{0.1, 0.2, 0.3, 0.4}), 1e-12)
}

func TestProbeServer(t *testing.T) {
	l := newLayout(t)
	assert.Equal(t, exchange.ServerIdle, exchange.ProbeServer(l))

	writeArtifact(t, l, exchange.ResponseSentinel, "")
	assert.Equal(t, exchange.ServerResponseSent, exchange.ProbeServer(l))

	writeArtifact(t, l, exchange.RequestSentinel, "")
	assert.Equal(t, exchange.ServerRequestDetected, exchange.ProbeServer(l))
}
