package config

import "github.com/urfave/cli/v3"

// Queue holds event queue configuration
type Queue struct {
	Topic       string
	Buffer      int64
	FailOnError bool
}

// Flags returns CLI flags for queue configuration
func (c *Queue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "queue-topic",
			Usage:       "Topic name for enqueued webhook events",
			Value:       "webhook-events",
			Destination: &c.Topic,
			Sources:     cli.EnvVars("DROVER_QUEUE_TOPIC"),
		},
		&cli.Int64Flag{
			Name:        "queue-buffer",
			Usage:       "Queue output channel buffer size",
			Value:       64,
			Destination: &c.Buffer,
			Sources:     cli.EnvVars("DROVER_QUEUE_BUFFER"),
		},
		&cli.BoolFlag{
			Name:        "queue-fail-on-error",
			Usage:       "Nack failed messages for redelivery instead of acknowledging them",
			Value:       false,
			Destination: &c.FailOnError,
			Sources:     cli.EnvVars("DROVER_QUEUE_FAIL_ON_ERROR"),
		},
	}
}
