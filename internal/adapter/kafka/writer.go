package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
)

// Writer publishes resolved day values to a Kafka topic.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer  *kafkago.Writer
	palette *domain.Palette
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, palette *domain.Palette, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, palette: palette, logger: logger}
}

// DayMessage is the JSON value of one exported day.
type DayMessage struct {
	SnapshotID uuid.UUID         `json:"snapshot_id"`
	Source     string            `json:"source"`
	SourceType domain.SourceType `json:"source_type"`
	City       string            `json:"city"`
	CityName   string            `json:"city_name"`
	Date       domain.Date       `json:"date"`
	Level      int               `json:"level"`
	Color      string            `json:"color"`
	URL        string            `json:"url"`
	BuiltAt    time.Time         `json:"built_at"`
}

// LoadSnapshot publishes one message per covered day of snap in a single
// WriteMessages call. Messages for the same source and city hash to the same
// partition, so they stay in date order.
func (w *Writer) LoadSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if len(snap.Days) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(snap.Days))
	for _, dv := range snap.SortedDays() {
		msg, err := serializeToMessage(snap, dv, w.palette.ColorFor(snap.Source.Type, dv.Level))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d day values: %w", len(msgs), err)
	}
	w.logger.Debug("day values published", "topic", w.writer.Topic, "count", len(msgs), "snapshot_id", snap.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey addresses a day of a source's city: "domain/city/date".
func MessageKey(src domain.Source, city domain.City, d domain.Date) string {
	return src.URL.Domain + "/" + city.Path + "/" + d.String()
}

// serializeToMessage marshals a day value into a Kafka message.
func serializeToMessage(snap *domain.Snapshot, dv domain.DayValue, color string) (kafkago.Message, error) {
	data, err := json.Marshal(DayMessage{
		SnapshotID: snap.ID,
		Source:     snap.Source.URL.Domain,
		SourceType: snap.Source.Type,
		City:       snap.City.Path,
		CityName:   snap.City.Name.In(domain.DefaultLocale),
		Date:       dv.Date,
		Level:      dv.Level,
		Color:      color,
		URL:        dv.URL,
		BuiltAt:    snap.BuiltAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day value: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(snap.Source, snap.City, dv.Date)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_type", Value: []byte(snap.Source.Type)},
			{Key: "snapshot_id", Value: []byte(snap.ID.String())},
		},
	}, nil
}
