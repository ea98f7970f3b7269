// Package natsgath streams diagnosis events to a NATS inbox as JSON.
package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type natsGatherer struct {
	nc          Publisher
	inbox       string
	requestUuid string
	logger      *slog.Logger
}

// New creates a new NATS gatherer that streams responses to the given inbox subject.
func New(nc Publisher, requestUuid string, inbox string, logger *slog.Logger) gatherer.ResultGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsGatherer{
		nc:          nc,
		inbox:       inbox,
		requestUuid: requestUuid,
		logger:      logger,
	}
}

func (s *natsGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "error", err)
		return
	}

	if err := s.nc.Publish(s.inbox, b); err != nil {
		s.logger.Error("failed to publish message to NATS", "inbox", s.inbox, "error", err)
	}
}

func (s *natsGatherer) StartJob(systemInfo string, vitals api.Vitals, features []float64) {
	s.send(api.NewStartJob(s.requestUuid, systemInfo, vitals, features))
}

func (s *natsGatherer) StartClient(clientPath string) {
	s.send(api.NewStartClient(s.requestUuid, clientPath))
}

func (s *natsGatherer) FinishClient(run *api.ClientRun) {
	s.send(api.NewFinishClient(s.requestUuid, gatherer.TrimClientRun(run)))
}

func (s *natsGatherer) Warn(state string, msg string) {
	s.send(api.NewWarning(s.requestUuid, state, msg))
}

func (s *natsGatherer) FinishSuccess(probability float64, riskBand string, ct *api.CiphertextInfo) {
	s.send(api.NewFinishSuccess(s.requestUuid, probability, riskBand, ct))
}

func (s *natsGatherer) FinishError(state string, kind string, msg string, hints []string) {
	s.send(api.NewFinishError(s.requestUuid, state, kind, msg, hints))
}
