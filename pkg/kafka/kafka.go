package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
}

const (
	LoanTopic = "loan-events"
)

type EventType string

const (
	EventLoanCreated  EventType = "LOAN_CREATED"
	EventLoanReturned EventType = "LOAN_RETURNED"
	EventLoanOverdue  EventType = "LOAN_OVERDUE"
)

// EventLoan is the payload published to LoanTopic on loan lifecycle
// changes and overdue sweeps.
type EventLoan struct {
	EventID   string    `json:"eventId"`
	EventType EventType `json:"eventType"`
	LoanID    int64     `json:"loanId"`
	BookID    int64     `json:"bookId"`
	ISBN      string    `json:"isbn"`
	Customer  string    `json:"customer"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
