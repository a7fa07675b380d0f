package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// AuditConsumer appends every auth event to a log file.
type AuditConsumer struct {
    URL     string
    LogPath string
}

// NewAuditConsumer writes to logs/auth_audit.log when logPath is empty.
func NewAuditConsumer(url, logPath string) *AuditConsumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "auth_audit.log")
    }
    return &AuditConsumer{URL: url, LogPath: logPath}
}

// Run connects to the broker and consumes until ctx is cancelled, dialing
// again with exponential backoff whenever the connection drops.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: dial failed")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn().Err(err).Msg("audit-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn().Err(err).Msg("audit-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(AuthEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(AuthEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := a.HandleMessage(d.Body); err != nil {
                log.Error().Err(err).Msg("audit-consumer: handle message failed")
                _ = d.Nack(false, false) // do not requeue poison messages
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event and appends it to the audit log.
func (a *AuditConsumer) HandleMessage(body []byte) error {
    var ev AuthEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(a.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] %s | event_id=%s | user_id=%d | email=%q\n",
        ev.OccurredAt, ev.Type, ev.ID, ev.UserID, ev.Email)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
