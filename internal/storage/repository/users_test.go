package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id, err := storage.CreateUser(ctx, models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	t.Run("new user starts free and unverified", func(t *testing.T) {
		u, err := storage.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionFree, u.SubscriptionStatus)
		assert.Equal(t, models.RoleUser, u.Role)
		assert.False(t, u.EmailVerified)
		assert.Nil(t, u.SubscriptionExpiresAt)
	})

	t.Run("duplicate username or email", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrUserExists)
		_, err = storage.CreateUser(ctx, models.User{Username: "other", Email: "alice@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("login by username or email", func(t *testing.T) {
		byName, err := storage.GetUserByLogin(ctx, "alice")
		require.NoError(t, err)
		byEmail, err := storage.GetUserByLogin(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, byName.ID, byEmail.ID)

		_, err = storage.GetUserByLogin(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("verification token is replaced and cleared on verify", func(t *testing.T) {
		expires := time.Now().Add(24 * time.Hour)
		require.NoError(t, storage.SetVerificationToken(ctx, id, "first", expires))
		require.NoError(t, storage.SetVerificationToken(ctx, id, "second", expires))

		err := storage.WithinTx(ctx, func(ctx context.Context) error {
			_, err := storage.GetUserByVerificationToken(ctx, "first")
			return err
		})
		assert.ErrorIs(t, err, ErrNotFound)

		err = storage.WithinTx(ctx, func(ctx context.Context) error {
			u, err := storage.GetUserByVerificationToken(ctx, "second")
			if err != nil {
				return err
			}
			return storage.MarkEmailVerified(ctx, u.ID)
		})
		require.NoError(t, err)

		u, err := storage.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, u.EmailVerified)
		assert.Nil(t, u.EmailVerificationToken)
		assert.Nil(t, u.EmailVerificationExpires)
	})

	t.Run("password reset clears token", func(t *testing.T) {
		require.NoError(t, storage.SetPasswordResetToken(ctx, id, "reset", time.Now().Add(time.Hour)))
		require.NoError(t, storage.UpdatePassword(ctx, id, "new-hash"))

		u, err := storage.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)
		assert.Nil(t, u.PasswordResetToken)
	})

	t.Run("update unknown user", func(t *testing.T) {
		err := storage.MarkEmailVerified(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_SubscriptionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)
	now := time.Now()

	t.Run("expire only when premium and past expiry", func(t *testing.T) {
		expired := factory.CreatePremiumUser(t, "expired", "expired@example.com", now.Add(-time.Hour))
		active := factory.CreatePremiumUser(t, "active", "active@example.com", now.Add(time.Hour))

		changed, err := storage.ExpireSubscription(ctx, expired, now)
		require.NoError(t, err)
		assert.True(t, changed)
		verify.VerifyUserSubscriptionStatus(t, expired, models.SubscriptionExpired)

		changed, err = storage.ExpireSubscription(ctx, expired, now)
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = storage.ExpireSubscription(ctx, active, now)
		require.NoError(t, err)
		assert.False(t, changed)
		verify.VerifyUserSubscriptionStatus(t, active, models.SubscriptionPremium)
	})

	t.Run("cancel keeps expiry", func(t *testing.T) {
		expiresAt := now.Add(48 * time.Hour).Truncate(time.Microsecond)
		id := factory.CreatePremiumUser(t, "canceller", "canceller@example.com", expiresAt)

		ok, err := storage.CancelSubscription(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		u, err := storage.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionCancelled, u.SubscriptionStatus)
		require.NotNil(t, u.SubscriptionExpiresAt)
		assert.True(t, expiresAt.Equal(*u.SubscriptionExpiresAt))

		ok, err = storage.CancelSubscription(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("premium requires expiry", func(t *testing.T) {
		id := factory.CreateUser(t, "broken", "broken@example.com")
		_, err := storage.DB.ExecContext(ctx, `UPDATE users SET subscription_status = 'premium' WHERE id = $1`, id)
		assert.Error(t, err)
	})

	t.Run("list expiring in window", func(t *testing.T) {
		soon := factory.CreatePremiumUser(t, "soon", "soon@example.com", now.Add(24*time.Hour))
		factory.CreatePremiumUser(t, "later", "later@example.com", now.Add(10*24*time.Hour))

		list, err := storage.ListExpiringSubscriptions(ctx, now, now.Add(72*time.Hour))
		require.NoError(t, err)

		var ids []string
		for _, e := range list {
			ids = append(ids, e.UserID)
		}
		assert.Contains(t, ids, soon)
		assert.Len(t, list, 2) // soon + active из предыдущего подтеста
	})

	t.Run("window includes from and excludes to", func(t *testing.T) {
		from := now.Add(100 * 24 * time.Hour).Truncate(time.Microsecond)
		to := from.Add(24 * time.Hour)
		atFrom := factory.CreatePremiumUser(t, "at-from", "at-from@example.com", from)
		factory.CreatePremiumUser(t, "at-to", "at-to@example.com", to)

		list, err := storage.ListExpiringSubscriptions(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, atFrom, list[0].UserID)

		// следующее окно забирает границу to
		next, err := storage.ListExpiringSubscriptions(ctx, to, to.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, next, 1)
		assert.True(t, to.Equal(next[0].ExpiresAt))
	})
}

func TestStorage_Payments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)

	userID := factory.CreateUser(t, "payer", "payer@example.com")

	t.Run("ledger update commits payment and premium together", func(t *testing.T) {
		expiresAt := time.Now().Add(30 * 24 * time.Hour)
		err := storage.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := storage.InsertPayment(ctx, testPayment(userID, "ref-1")); err != nil {
				return err
			}
			return storage.ActivatePremium(ctx, userID, expiresAt)
		})
		require.NoError(t, err)

		exists, err := storage.PaymentExists(ctx, "ref-1")
		require.NoError(t, err)
		assert.True(t, exists)
		verify.VerifyUserSubscriptionStatus(t, userID, models.SubscriptionPremium)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		_, err := storage.InsertPayment(ctx, testPayment(userID, "ref-1"))
		assert.ErrorIs(t, err, ErrDuplicateReference)
		assert.Equal(t, 1, verify.CountPayments(t, userID))
	})

	t.Run("failure rolls back both writes", func(t *testing.T) {
		other := factory.CreateUser(t, "rollback", "rollback@example.com")
		boom := errors.New("boom")
		err := storage.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := storage.InsertPayment(ctx, testPayment(other, "ref-2")); err != nil {
				return err
			}
			if err := storage.ActivatePremium(ctx, other, time.Now().Add(time.Hour)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		exists, err := storage.PaymentExists(ctx, "ref-2")
		require.NoError(t, err)
		assert.False(t, exists)
		verify.VerifyUserSubscriptionStatus(t, other, models.SubscriptionFree)
	})

	t.Run("history newest first", func(t *testing.T) {
		_, err := storage.InsertPayment(ctx, testPayment(userID, "ref-3"))
		require.NoError(t, err)

		list, err := storage.ListPayments(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ref-3", list[0].ExternalReference)
		assert.Equal(t, "ref-1", list[1].ExternalReference)
	})

	t.Run("raw payload kept byte for byte", func(t *testing.T) {
		raw := []byte("{\"event\": \"charge.success\",  \"data\": {\"z\": 1, \"a\": 2}}\n")
		p := testPayment(userID, "ref-4")
		p.RawPayload = raw
		_, err := storage.InsertPayment(ctx, p)
		require.NoError(t, err)

		assert.Equal(t, raw, verify.RawPayload(t, "ref-4"))
	})
}
