package sqsgath_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer/sqsgath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSqs struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSqs) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("m")}, nil
}

func TestSqsGatherer_SendsToQueue(t *testing.T) {
	client := &fakeSqs{}
	url := "https://sqs.eu-central-1.amazonaws.com/1234/cardiorisk-responses"
	g := sqsgath.New(client, "req-9", url, nil)

	g.StartClient("client")
	g.FinishError("result_invalid", "protocol", "result file is malformed: \"abc\"", []string{"inspect the client log"})

	require.Len(t, client.inputs, 2)
	for _, in := range client.inputs {
		assert.Equal(t, url, aws.ToString(in.QueueUrl))
	}

	var job api.FinishJob
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[1].MessageBody)), &job))
	assert.Equal(t, "req-9", job.RequestUuid)
	assert.Equal(t, "result_invalid", job.State)
	assert.Equal(t, "protocol", *job.ErrorKind)
	assert.Equal(t, []string{"inspect the client log"}, job.Hints)
}
