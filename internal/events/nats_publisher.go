package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"go.uber.org/zap"
)

// NATSPublisher 将事件发布到 <prefix>.<type> 主题
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect 建立 NATS 连接
func Connect(cfg config.NATSConfig, log *logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("tenancy-management"),
		nats.Timeout(cfg.ConnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "tenancy"
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}
	return p.nc.Publish(p.Subject(event.Type), data)
}

// Close 刷新缓冲后关闭连接
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
