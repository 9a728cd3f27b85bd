package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/mindwell/internal/migrations"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

const postgresPort nat.Port = "5432/tcp"

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает подтверждённого пользователя со статусом free и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO users (id, username, email, password_hash, role, email_verified)
		VALUES ($1, $2, $3, 'hash', 'user', TRUE)`, id, username, email)
	require.NoError(t, err)
	return id
}

// CreatePremiumUser создает пользователя с premium до expiresAt
func (f *TestDataFactory) CreatePremiumUser(t *testing.T, username, email string, expiresAt time.Time) string {
	t.Helper()
	id := f.CreateUser(t, username, email)
	_, err := f.storage.DB.Exec(`UPDATE users SET subscription_status = 'premium', subscription_expires_at = $2
		WHERE id = $1`, id, expiresAt)
	require.NoError(t, err)
	return id
}

// CreateMoodAt создает отметку настроения с заданным временем
func (f *TestDataFactory) CreateMoodAt(t *testing.T, userID string, mood int, at time.Time) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO moods (user_id, mood, created_at) VALUES ($1, $2, $3)`,
		userID, mood, at)
	require.NoError(t, err)
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyUserSubscriptionStatus проверяет статус подписки пользователя
func (v *TestVerification) VerifyUserSubscriptionStatus(t *testing.T, userID, expectedStatus string) {
	t.Helper()
	var status string
	err := v.storage.DB.QueryRow("SELECT subscription_status FROM users WHERE id = $1", userID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// CountPayments возвращает число записей в журнале платежей пользователя
func (v *TestVerification) CountPayments(t *testing.T, userID string) int {
	t.Helper()
	var n int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM payments WHERE user_id = $1", userID).Scan(&n)
	require.NoError(t, err)
	return n
}

// RawPayload возвращает сохранённое тело ответа шлюза
func (v *TestVerification) RawPayload(t *testing.T, reference string) []byte {
	t.Helper()
	var raw []byte
	err := v.storage.DB.QueryRow("SELECT raw_payload FROM payments WHERE external_reference = $1", reference).Scan(&raw)
	require.NoError(t, err)
	return raw
}

func testPayment(userID, reference string) models.Payment {
	return models.Payment{
		UserID:            userID,
		ExternalReference: reference,
		Amount:            500000,
		Currency:          "KES",
		Status:            models.PaymentSuccess,
		RawPayload:        []byte(`{"event":"charge.success"}`),
	}
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и накатывает миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "failed to get host")
	port, err := postgresContainer.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
