package services

import (
	"context"
	"errors"
	"testing"

	"homescout/internal/server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoRow = errors.New("no rows in result set")

type fakeUsers struct {
	rows map[string]*repository.UserRow
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: make(map[string]*repository.UserRow)}
}

func (f *fakeUsers) Create(ctx context.Context, user *repository.UserRow) error {
	f.rows[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*repository.UserRow, error) {
	if u, ok := f.rows[id]; ok {
		return u, nil
	}
	return nil, errNoRow
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*repository.UserRow, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNoRow
}

func (f *fakeUsers) GetByPhone(ctx context.Context, phone string) (*repository.UserRow, error) {
	for _, u := range f.rows {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, errNoRow
}

func (f *fakeUsers) GetByFirebaseUID(ctx context.Context, uid string) (*repository.UserRow, error) {
	for _, u := range f.rows {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, errNoRow
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, user *repository.UserRow) error {
	if _, ok := f.rows[user.ID]; !ok {
		return errNoRow
	}
	f.rows[user.ID] = user
	return nil
}

func (f *fakeUsers) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	u, ok := f.rows[userID]
	if !ok {
		return errNoRow
	}
	u.PushToken = pushToken
	return nil
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret")

	user, token, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUsers(), "test-secret")

	_, _, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Other", "asha@example.com", "9876543211", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginByEmailAndByPhone(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUsers(), "test-secret")
	registered, _, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "asha@example.com", "", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	user, _, err = svc.Login(ctx, "", "9876543210", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUsers(), "test-secret")
	_, _, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "asha@example.com", "", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFederatedLoginCreatesOnFirstSight(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret")

	first, token, err := svc.FederatedLogin(ctx, "fb-42", "Ravi", "", "9123456789", "assertion")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, first.FirebaseUID)
	assert.Equal(t, "fb-42", *first.FirebaseUID)

	// The same UID resolves to the same account, not a second one.
	second, _, err := svc.FederatedLogin(ctx, "fb-42", "Ravi", "", "9123456789", "assertion")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, users.rows, 1)
}

func TestFederatedLoginRequiresAssertion(t *testing.T) {
	svc := NewAuthService(newFakeUsers(), "test-secret")
	_, _, err := svc.FederatedLogin(context.Background(), "fb-42", "Ravi", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateJWTRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUsers(), "test-secret")
	_, token, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	other := NewAuthService(newFakeUsers(), "other-secret")
	_, err = other.ValidateJWT(token)
	assert.Error(t, err)
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUsers(), "test-secret")
	user, _, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	name := "Asha P"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha P", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email)
	assert.Equal(t, "9876543210", updated.Phone)
}

func TestSetPushTokenClearsOnEmpty(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret")
	user, _, err := svc.Register(ctx, "Asha", "asha@example.com", "9876543210", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.SetPushToken(ctx, user.ID, "device-token"))
	require.NotNil(t, users.rows[user.ID].PushToken)
	assert.Equal(t, "device-token", *users.rows[user.ID].PushToken)

	require.NoError(t, svc.SetPushToken(ctx, user.ID, ""))
	assert.Nil(t, users.rows[user.ID].PushToken)
}
