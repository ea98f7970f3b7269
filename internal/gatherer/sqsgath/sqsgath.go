// Package sqsgath sends diagnosis events to an SQS response queue.
package sqsgath

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
)

const sendTimeout = 10 * time.Second

// SendMessageAPI is the subset of *sqs.Client used here.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsResQueueGatherer struct {
	sqsClient   SendMessageAPI
	queueUrl    string
	requestUuid string
	logger      *slog.Logger
}

func New(client SendMessageAPI, requestUuid string, responseSqsUrl string, logger *slog.Logger) gatherer.ResultGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqsResQueueGatherer{
		sqsClient:   client,
		queueUrl:    responseSqsUrl,
		requestUuid: requestUuid,
		logger:      logger,
	}
}

func (s *sqsResQueueGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	_, err = s.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		s.logger.Error("failed to send message", "queue", s.queueUrl, "error", err)
	}
}

func (s *sqsResQueueGatherer) StartJob(systemInfo string, vitals api.Vitals, features []float64) {
	s.send(api.NewStartJob(s.requestUuid, systemInfo, vitals, features))
}

func (s *sqsResQueueGatherer) StartClient(clientPath string) {
	s.send(api.NewStartClient(s.requestUuid, clientPath))
}

func (s *sqsResQueueGatherer) FinishClient(run *api.ClientRun) {
	s.send(api.NewFinishClient(s.requestUuid, gatherer.TrimClientRun(run)))
}

func (s *sqsResQueueGatherer) Warn(state string, msg string) {
	s.send(api.NewWarning(s.requestUuid, state, msg))
}

func (s *sqsResQueueGatherer) FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo) {
	s.send(api.NewFinishSuccess(s.requestUuid, probability, riskBand, ct))
}

func (s *sqsResQueueGatherer) FinishError(state string, kind string, msg string, hints []string) {
	s.send(api.NewFinishError(s.requestUuid, state, kind, msg, hints))
}
