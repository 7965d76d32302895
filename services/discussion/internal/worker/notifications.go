package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/tanya-platform/internal/platform/events"
)

// StartNotificationsConsumer subscribes to discussion.comments.posted and
// records a notification row for the parent comment's author whenever a
// reply lands. Self-replies are skipped. Failures are logged and the message
// is redelivered; the consumer never takes the service down.
func StartNotificationsConsumer(ctx context.Context, nc *nats.Conn, pool *pgxpool.Pool, log *zap.Logger) {
	js, err := nc.JetStream()
	if err != nil {
		log.Warn("notifications: jetstream unavailable", zap.Error(err))
		return
	}

	sub, err := js.PullSubscribe(events.SubjectCommentPosted, "discussion_notifications")
	if err != nil {
		log.Warn("notifications: subscribe failed", zap.Error(err))
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgs, err := sub.Fetch(50, nats.MaxWait(2*time.Second))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				log.Warn("notifications: fetch failed", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, m := range msgs {
				if err := handleCommentPosted(ctx, pool, m.Data); err != nil {
					log.Warn("notifications: handle failed", zap.Error(err))
					_ = m.Nak()
					continue
				}
				_ = m.Ack()
			}
		}
	}()
}

func handleCommentPosted(ctx context.Context, pool *pgxpool.Pool, data []byte) error {
	var ev events.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}

	parentID, _ := ev.Properties["parent_id"].(string)
	commentID, _ := ev.Properties["comment_id"].(string)
	if parentID == "" || commentID == "" {
		// Top-level comments notify nobody.
		return nil
	}

	var recipient string
	if err := pool.QueryRow(ctx,
		`SELECT user_id FROM comments WHERE id = $1`, parentID).Scan(&recipient); err != nil {
		return err
	}
	if recipient == ev.UserID {
		return nil
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO notifications (user_id, actor_id, comment_id) VALUES ($1, $2, $3)`,
		recipient, ev.UserID, commentID)
	return err
}
