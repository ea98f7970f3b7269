package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/gatherer/sqsgath"
	"github.com/programme-lv/cardiorisk/internal/orchestrator"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/urfave/cli/v3"
)

// orchestratorFlags are shared by every command that runs the client.
func orchestratorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "client",
			Usage:   "encrypted inference client executable, relative to the root",
			Sources: cli.EnvVars(environment.EnvClient),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "how long the client may run before it is killed",
			Sources: cli.EnvVars(environment.EnvTimeout),
		},
		&cli.StringFlag{
			Name:    "policy",
			Usage:   "out-of-range vitals: reject, clamp or extrapolate",
			Sources: cli.EnvVars(environment.EnvRangePolicy),
		},
	}
}

func (a *app) newOrchestrator(cmd *cli.Command) (*orchestrator.Orchestrator, error) {
	o := orchestrator.New(a.cfg.Layout(), a.cfg.Client, vitals.DefaultTable, a.logger)
	o.Timeout = a.cfg.Timeout
	o.Policy = a.cfg.Policy
	o.SystemInfo = systemInfo()

	if cmd.IsSet("client") {
		o.Client = cmd.String("client")
	}
	if cmd.IsSet("timeout") {
		if cmd.Duration("timeout") <= 0 {
			return nil, fmt.Errorf("timeout must be positive")
		}
		o.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("policy") {
		p, err := vitals.ParsePolicy(cmd.String("policy"))
		if err != nil {
			return nil, err
		}
		o.Policy = p
	}
	return o, nil
}

// sqsClient is created on first use; most runs never report to SQS.
type sqsClient struct {
	once   sync.Once
	region string
	client *sqs.Client
	err    error
}

func (s *sqsClient) get(ctx context.Context) (*sqs.Client, error) {
	s.once.Do(func() {
		s.client, s.err = sqsgath.NewClient(ctx, s.region)
	})
	return s.client, s.err
}
