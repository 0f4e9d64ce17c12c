package notify

import (
	"fmt"

	"appointment-booking/pkg/mq"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

// New builds a Dispatcher on the configured driver.
func New(config utils.MessagingConfig, appName string, log *zap.Logger) (*Dispatcher, error) {
	var (
		pub Publisher
		err error
	)

	switch config.Driver {
	case "amqp":
		pub, err = mq.NewPublisher(config.AMQPURL, config.AMQPExchange)
	case "nats":
		pub, err = NewNATSPublisher(config.NATSURL, config.NATSSubject, appName, log)
	case "", "log":
		pub = NewLogPublisher(log)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", config.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s publisher: %w", config.Driver, err)
	}

	log.Info("Notification driver ready", zap.String("driver", config.Driver))
	return NewDispatcher(pub, log), nil
}
