package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/cardiorisk/api"
	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/gatherer"
	"github.com/programme-lv/cardiorisk/internal/gatherer/natsgath"
	"github.com/programme-lv/cardiorisk/internal/gatherer/sqsgath"
	"github.com/programme-lv/cardiorisk/internal/monitor"
	"github.com/programme-lv/cardiorisk/internal/orchestrator"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const requestQueueSize = 64

func listenCmd(a *app) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "NATS server",
			Sources: cli.EnvVars(environment.EnvNatsURL),
		},
		&cli.StringFlag{
			Name:    "subject",
			Usage:   "subject receiving api.DiagnoseReq messages",
			Sources: cli.EnvVars(environment.EnvNatsSubject),
		},
		&cli.StringFlag{
			Name:    "status-subject",
			Usage:   "subject server status changes are published to",
			Sources: cli.EnvVars(environment.EnvStatusSubject),
		},
	}
	return &cli.Command{
		Name:  "listen",
		Usage: "serve diagnosis requests over NATS",
		Flags: append(flags, orchestratorFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			o, err := a.newOrchestrator(cmd)
			if err != nil {
				return err
			}
			url, subject, statusSubject := a.cfg.NatsURL, a.cfg.NatsSubject, a.cfg.StatusSubject
			if cmd.IsSet("nats-url") {
				url = cmd.String("nats-url")
			}
			if cmd.IsSet("subject") {
				subject = cmd.String("subject")
			}
			if cmd.IsSet("status-subject") {
				statusSubject = cmd.String("status-subject")
			}

			a.logger.Info("connecting to NATS", "url", url)
			nc, err := nats.Connect(url, nats.Name(appName))
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer nc.Close()

			reqs := make(chan *nats.Msg, requestQueueSize)
			sub, err := nc.ChanSubscribe(subject, reqs)
			if err != nil {
				return fmt.Errorf("subscribe to %s: %w", subject, err)
			}

			mon, err := monitor.New(o.Layout, a.logger)
			if err != nil {
				return err
			}
			if err := mon.Start(ctx); err != nil {
				return err
			}
			defer mon.Stop()

			s := &server{
				a:   a,
				o:   o,
				nc:  nc,
				sqs: &sqsClient{region: a.cfg.AwsRegion},
			}

			errs, ctx := errgroup.WithContext(ctx)
			errs.Go(func() error {
				return s.serve(ctx, reqs)
			})
			errs.Go(func() error {
				return s.publishStatus(ctx, mon, statusSubject)
			})
			a.logger.Info("listening for diagnosis requests", "subject", subject, "status_subject", statusSubject)

			err = errs.Wait()
			_ = sub.Unsubscribe()
			if drainErr := nc.Drain(); drainErr != nil {
				a.logger.Warn("failed to drain NATS connection", "error", drainErr)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

type server struct {
	a   *app
	o   *orchestrator.Orchestrator
	nc  *nats.Conn
	sqs *sqsClient
}

func (s *server) serve(ctx context.Context, reqs <-chan *nats.Msg) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-reqs:
			s.handle(ctx, msg)
		}
	}
}

func (s *server) handle(ctx context.Context, msg *nats.Msg) {
	logger := s.a.logger

	var req api.DiagnoseReq
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		logger.Warn("malformed diagnosis request", "error", err)
		if msg.Reply != "" {
			natsgath.New(s.nc, "", msg.Reply, logger).
				FinishError(string(orchestrator.Idle), string(orchestrator.KindInput), "malformed request: "+err.Error(), nil)
		}
		return
	}
	if req.RequestUuid == "" {
		req.RequestUuid = uuid.NewString()
	}

	g := gatherer.Multi{}
	if msg.Reply != "" {
		g = append(g, natsgath.New(s.nc, req.RequestUuid, msg.Reply, logger))
	}
	if req.ResSqsUrl != "" {
		client, err := s.sqs.get(ctx)
		if err != nil {
			logger.Error("SQS unavailable, response queue skipped", "error", err)
		} else {
			g = append(g, sqsgath.New(client, req.RequestUuid, req.ResSqsUrl, logger))
		}
	}

	policy := s.o.Policy
	if req.Policy != "" {
		p, err := vitals.ParsePolicy(req.Policy)
		if err != nil {
			g.FinishError(string(orchestrator.Idle), string(orchestrator.KindInput), err.Error(), nil)
			return
		}
		policy = p
	}

	logger.Info("diagnosis request", "request_uuid", req.RequestUuid, "reply", msg.Reply)
	out := s.o.DiagnoseWith(ctx, req.RequestUuid, orchestrator.FromApiVitals(req.Vitals), policy, g)
	logger.Info("diagnosis request done", "request_uuid", req.RequestUuid, "state", string(out.State()), "elapsed", out.Elapsed)
}

func (s *server) publishStatus(ctx context.Context, mon *monitor.Monitor, subject string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-mon.Events():
			if !ok {
				return ctx.Err()
			}
			b, err := json.Marshal(api.NewServerStatus(string(ev.Status)))
			if err != nil {
				return err
			}
			if err := s.nc.Publish(subject, b); err != nil {
				s.a.logger.Warn("failed to publish server status", "error", err)
			}
		}
	}
}
