package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopedev/scopepad/internal/apperr"
	"github.com/scopedev/scopepad/internal/core"
	"github.com/scopedev/scopepad/internal/store"
	"github.com/scopedev/scopepad/internal/testutil"
)

func setup(t *testing.T) (*core.IdentityService, *core.TargetService, *store.User, *store.User) {
	t.Helper()
	s := testutil.TestStore(t)
	identity := core.NewIdentityService(s)
	targets := core.NewTargetService(s)

	ctx := context.Background()
	alice, err := identity.Register(ctx, "Alice", "pw-a")
	require.NoError(t, err)
	bob, err := identity.Register(ctx, "bob", "pw-b")
	require.NoError(t, err)
	return identity, targets, alice, bob
}

func TestRegisterCaseInsensitiveUnique(t *testing.T) {
	identity, _, alice, _ := setup(t)
	ctx := context.Background()

	assert.Equal(t, "alice", alice.Username, "usernames are stored lower-case")

	_, err := identity.Register(ctx, "ALICE", "other")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestAuthenticate(t *testing.T) {
	identity, _, _, _ := setup(t)
	ctx := context.Background()

	user, err := identity.Authenticate(ctx, "ALICE", "pw-a")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = identity.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = identity.Authenticate(ctx, "ghost", "pw-a")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCreateTargetIdempotent(t *testing.T) {
	_, targets, alice, _ := setup(t)
	ctx := context.Background()

	first, err := targets.CreateTarget(ctx, alice, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", first.Target.Name)

	second, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.Target.ID, second.Target.ID, "repeated creation must return the same target")

	list, err := targets.ListTargets(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateTargetUnknownRecipient(t *testing.T) {
	_, targets, alice, _ := setup(t)

	_, err := targets.CreateTarget(context.Background(), alice, "ghost")
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}

// Alice opens a target toward bob and sends one message. Alice sees one
// sent=true message; bob gains a mirror target named "alice" holding the
// sent=false copy.
func TestSendMessageMirrors(t *testing.T) {
	_, targets, alice, bob := setup(t)
	ctx := context.Background()

	created, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)

	view, err := targets.SendMessage(ctx, alice, created.Target.ID, "bob", "hi", "t", false)
	require.NoError(t, err)
	require.Len(t, view.Messages, 1)
	assert.True(t, view.Messages[0].Sent)
	assert.Equal(t, "hi", view.Messages[0].Text)
	assert.Equal(t, "t", view.Messages[0].Title)
	assert.False(t, view.Messages[0].Code)

	bobTargets, err := targets.ListTargets(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobTargets, 1)
	assert.Equal(t, "alice", bobTargets[0].Target.Name)
	require.Len(t, bobTargets[0].Messages, 1)
	assert.False(t, bobTargets[0].Messages[0].Sent)
	assert.Equal(t, "hi", bobTargets[0].Messages[0].Text)
	assert.NotEqual(t, view.Messages[0].ID, bobTargets[0].Messages[0].ID)
}

func TestSendMessageUnknownTargetOrRecipient(t *testing.T) {
	_, targets, alice, _ := setup(t)
	ctx := context.Background()

	_, err := targets.SendMessage(ctx, alice, 999, "bob", "hi", "t", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	created, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = targets.SendMessage(ctx, alice, created.Target.ID, "ghost", "hi", "t", false)
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}

func TestDeleteTargetSuccessorAndCascade(t *testing.T) {
	identity, targets, alice, _ := setup(t)
	ctx := context.Background()

	// Three conversation partners, so alice has targets [carol, bob, dave]
	// in creation (= id) order.
	_, err := identity.Register(ctx, "carol", "pw")
	require.NoError(t, err)
	_, err = identity.Register(ctx, "dave", "pw")
	require.NoError(t, err)

	carolT, err := targets.CreateTarget(ctx, alice, "carol")
	require.NoError(t, err)
	bobT, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)
	daveT, err := targets.CreateTarget(ctx, alice, "dave")
	require.NoError(t, err)

	// Deleting the first reports the next one.
	next, err := targets.DeleteTarget(ctx, alice.ID, carolT.Target.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, bobT.Target.ID, next.Target.ID)

	// Deleting the last of two reports the previous one.
	next, err = targets.DeleteTarget(ctx, alice.ID, daveT.Target.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, bobT.Target.ID, next.Target.ID)

	// Deleting the only remaining target reports nothing.
	next, err = targets.DeleteTarget(ctx, alice.ID, bobT.Target.ID)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = targets.DeleteTarget(ctx, alice.ID, bobT.Target.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteTargetLeavesMirrorIntact(t *testing.T) {
	_, targets, alice, bob := setup(t)
	ctx := context.Background()

	created, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = targets.SendMessage(ctx, alice, created.Target.ID, "bob", "hi", "t", false)
	require.NoError(t, err)

	_, err = targets.DeleteTarget(ctx, alice.ID, created.Target.ID)
	require.NoError(t, err)

	bobTargets, err := targets.ListTargets(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobTargets, 1)
	assert.Len(t, bobTargets[0].Messages, 1, "mirror rows have independent lifecycles")
}

// A target with zero messages is a valid conversation, distinct from one
// that does not exist.
func TestEmptyTargetIsValid(t *testing.T) {
	_, targets, alice, _ := setup(t)
	ctx := context.Background()

	created, err := targets.CreateTarget(ctx, alice, "bob")
	require.NoError(t, err)

	got, err := targets.GetTarget(ctx, alice.ID, created.Target.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)

	_, err = targets.GetTarget(ctx, alice.ID, created.Target.ID+1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
