//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hotelstay/service-booking/internal/application"
	"github.com/hotelstay/service-booking/internal/common/database"
	"github.com/hotelstay/service-booking/internal/common/kafka"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	"github.com/hotelstay/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up service components.
type bookingStack struct {
	Bookings     *application.BookingService
	Availability *application.AvailabilityService
	Reconciler   *application.ReconcileService
	Cleanup      func()
}

// setupPostgres starts a PostgreSQL container and applies the SQL migrations.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Open(cfg.DSN())
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", zap.NewNop()))

	return &testInfra{
		DB: db,
		Cleanup: func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				t.Logf("failed to terminate PostgreSQL container: %v", err)
			}
		},
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	infra := setupPostgres(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, "booking.events", "room.events", "property.events")

	pgCleanup := infra.Cleanup
	infra.KafkaBrokers = kafkaBrokers
	infra.Cleanup = func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		pgCleanup()
	}
	return infra
}

// setupBookingStack wires the services over db. brokers may be empty.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger := zap.NewNop()

	bookingRepo := repository.NewGormBookingRepository(db, 5*time.Second)
	roomRepo := repository.NewGormRoomRepository(db, 5*time.Second)
	hotelRepo := repository.NewGormHotelRepository(db, 5*time.Second)

	var publisher application.EventPublisher
	cleanup := func() {}
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = producer
		cleanup = func() { _ = producer.Close() }
	}

	pricing := bookingDomain.NewStandardPricingStrategy()

	return &bookingStack{
		Bookings:     application.NewBookingService(bookingRepo, roomRepo, hotelRepo, pricing, nil, publisher, logger),
		Availability: application.NewAvailabilityService(roomRepo, hotelRepo, bookingRepo, pricing, nil, 2, logger),
		Reconciler:   application.NewReconcileService(roomRepo, nil, publisher, logger),
		Cleanup:      cleanup,
	}
}

// seedRoom inserts a hotel with one room and returns the room.
func seedRoom(t *testing.T, db *gorm.DB, pricePerNightCents int64, maxGuests int) repository.RoomModel {
	t.Helper()
	now := time.Now().UTC()
	hotel := repository.HotelModel{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "Integration Inn",
		City:      "Lisbon",
		Address:   "1 Rua Augusta",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&hotel).Error, "failed to seed hotel")

	room := repository.RoomModel{
		ID:                 uuid.New(),
		HotelID:            hotel.ID,
		RoomNumber:         "101",
		RoomType:           "double",
		PricePerNightCents: pricePerNightCents,
		MaxGuests:          maxGuests,
		IsAvailable:        true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, db.Create(&room).Error, "failed to seed room")
	return room
}

// roomFlag reads the availability flag of a room.
func roomFlag(t *testing.T, db *gorm.DB, roomID uuid.UUID) bool {
	t.Helper()
	var room repository.RoomModel
	require.NoError(t, db.Select("is_available").Where("id = ?", roomID).First(&room).Error)
	return room.IsAvailable
}

// countBookings counts booking rows of a room.
func countBookings(t *testing.T, db *gorm.DB, roomID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&repository.BookingModel{}).Where("room_id = ?", roomID).Count(&n).Error)
	return n
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
