package natsgath_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer/natsgath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	msgs     [][]byte
	err      error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subjects = append(f.subjects, subj)
	f.msgs = append(f.msgs, data)
	return f.err
}

func TestNatsGatherer_Messages(t *testing.T) {
	nc := &fakeConn{}
	g := natsgath.New(nc, "req-7", "_INBOX.abc", nil)

	g.StartJob("sys", api.Vitals{Age: 60}, []float64{0.6})
	g.StartClient("/opt/client")
	g.FinishClient(&api.ClientRun{Stdout: strings.Repeat("y", 200), ExitCode: 0})
	g.Warn("success", "probability 1.2 is outside [0, 1]")
	g.FinishSuccess(1.2, "high", nil)

	require.Len(t, nc.msgs, 5)
	for _, s := range nc.subjects {
		assert.Equal(t, "_INBOX.abc", s)
	}

	var start api.StartJob
	require.NoError(t, json.Unmarshal(nc.msgs[0], &start))
	assert.Equal(t, "req-7", start.RequestUuid)
	assert.Equal(t, api.StartJobMsg, start.MsgType)
	assert.Equal(t, 60.0, start.Vitals.Age)

	var fin api.FinishClient
	require.NoError(t, json.Unmarshal(nc.msgs[2], &fin))
	assert.Len(t, fin.Client.Stdout, api.MaxClientOutputWidth+len("[...]"))

	var job api.FinishJob
	require.NoError(t, json.Unmarshal(nc.msgs[4], &job))
	assert.Equal(t, api.FinishJobMsg, job.MsgType)
	assert.Equal(t, "success", job.State)
	assert.Equal(t, 1.2, *job.Probability)
	assert.Nil(t, job.ErrorKind)
}

func TestNatsGatherer_PublishErrorIsLogged(t *testing.T) {
	nc := &fakeConn{err: errors.New("disconnected")}
	g := natsgath.New(nc, "req", "inbox", nil)
	assert.NotPanics(t, func() {
		g.FinishError("timed_out", "timeout", "client did not finish", nil)
	})
	assert.Len(t, nc.msgs, 1)
}
