package relational

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Options{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestOpen_RetriesConnect(t *testing.T) {
	_, err := Open(Options{
		Driver:  "sqlite",
		DSN:     "file:/nonexistent-dir/mediahub.db",
		Connect: retry.Policy{Attempts: 2, InitialDelay: time.Millisecond},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 2 attempts")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	role := &domain.Role{Name: "user", Permissions: []string{"message:view"}}
	require.NoError(t, roles.Create(ctx, role))

	u := &domain.User{Name: "alice", PasswordHash: "hash", RoleIDs: []domain.RoleID{role.ID}}
	require.NoError(t, users.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := users.Create(ctx, &domain.User{Name: "alice", PasswordHash: "other"})
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	got, err := users.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []domain.RoleID{role.ID}, got.RoleIDs)

	_, err = users.GetByID(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, users.AddPoints(ctx, u.ID, 5))
	require.NoError(t, users.AddPoints(ctx, u.ID, -2))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Points)
	assert.True(t, errors.Is(users.AddPoints(ctx, 999, 1), domain.ErrNotFound))

	got.PasswordHash = "new-hash"
	require.NoError(t, users.Update(ctx, got))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	require.NoError(t, users.UnassignRole(ctx, u.ID, role.ID))
	ids, err := users.RoleIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.True(t, errors.Is(users.UnassignRole(ctx, u.ID, role.ID), domain.ErrNotFound))

	require.NoError(t, users.AssignRole(ctx, u.ID, role.ID))
	require.NoError(t, users.AssignRole(ctx, u.ID, role.ID))
	ids, err = users.RoleIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.RoleID{role.ID}, ids)

	require.NoError(t, users.Create(ctx, &domain.User{Name: "bob", PasswordHash: "h"}))
	list, err := users.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Name)

	page, err := users.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Name)
}

func TestRoleRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	editor := &domain.Role{Name: "editor", Description: "edits tags", Permissions: []string{"tag:view", "tag:edit"}}
	require.NoError(t, roles.Create(ctx, editor))
	viewer := &domain.Role{Name: "viewer", Permissions: []string{"tag:view", "message:view"}}
	require.NoError(t, roles.Create(ctx, viewer))

	err := roles.Create(ctx, &domain.Role{Name: "editor"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := roles.GetByName(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, []string{"tag:edit", "tag:view"}, got.Permissions)
	assert.Equal(t, "edits tags", got.Description)

	codes, err := roles.PermissionCodes(ctx, editor.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"message:view", "tag:edit", "tag:view"}, codes)

	codes, err = roles.PermissionCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)

	require.NoError(t, roles.Grant(ctx, viewer.ID, "comment:view"))
	require.NoError(t, roles.Grant(ctx, viewer.ID, "comment:view"))
	assert.True(t, errors.Is(roles.Grant(ctx, 999, "comment:view"), domain.ErrNotFound))

	require.NoError(t, roles.Revoke(ctx, viewer.ID, "tag:view"))
	assert.True(t, errors.Is(roles.Revoke(ctx, viewer.ID, "tag:view"), domain.ErrNotFound))

	got, err = roles.GetByID(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"comment:view", "message:view"}, got.Permissions)

	u := &domain.User{Name: "carol", PasswordHash: "h", RoleIDs: []domain.RoleID{editor.ID}}
	require.NoError(t, users.Create(ctx, u))
	assert.True(t, errors.Is(roles.Delete(ctx, editor.ID), domain.ErrConflict))

	require.NoError(t, users.UnassignRole(ctx, u.ID, editor.ID))
	require.NoError(t, roles.Delete(ctx, editor.ID))
	_, err = roles.GetByID(ctx, editor.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(roles.Delete(ctx, editor.ID), domain.ErrNotFound))

	all, err := roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "viewer", all[0].Name)
}

func TestRoleRepository_ForeignKeys(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	role := &domain.Role{Name: "editor", Permissions: []string{"tag:edit"}}
	require.NoError(t, roles.Create(ctx, role))
	u := &domain.User{Name: "dave", PasswordHash: "h", RoleIDs: []domain.RoleID{role.ID}}
	require.NoError(t, users.Create(ctx, u))

	// a delete that skips the holder count is still refused by the schema
	err := db.WithContext(ctx).Delete(&roleModel{}, uint64(role.ID)).Error
	require.Error(t, err)
	assert.True(t, errors.Is(classify(err, "role %d", role.ID), domain.ErrConflict), "got %v", err)

	_, err = roles.GetByID(ctx, role.ID)
	require.NoError(t, err)

	assert.True(t, errors.Is(users.AssignRole(ctx, u.ID, 999), domain.ErrNotFound))
	assert.True(t, errors.Is(users.AssignRole(ctx, 999, role.ID), domain.ErrNotFound))

	err = users.Create(ctx, &domain.User{Name: "erin", PasswordHash: "h", RoleIDs: []domain.RoleID{999}})
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)
	_, err = users.GetByName(ctx, "erin")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "the user insert is rolled back")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file:mediahub.db?cache=shared&_foreign_keys=on", sqliteDSN("file:mediahub.db?cache=shared"))
	assert.Equal(t, "file:mediahub.db?_foreign_keys=on", sqliteDSN("file:mediahub.db?_foreign_keys=on"))
}

func TestBindingRepository(t *testing.T) {
	ctx := context.Background()
	bindings := NewBindingRepository(newTestDB(t))

	b := &domain.Binding{UserID: 1, Platform: domain.PlatformQQ, ExternalID: "10001"}
	require.NoError(t, bindings.Add(ctx, b))
	assert.NotZero(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	err := bindings.Add(ctx, &domain.Binding{UserID: 2, Platform: domain.PlatformQQ, ExternalID: "10001"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, bindings.Add(ctx, &domain.Binding{UserID: 1, Platform: domain.PlatformWeb, ExternalID: "10001"}))

	list, err := bindings.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.True(t, errors.Is(bindings.Remove(ctx, 2, b.ID), domain.ErrNotFound))
	require.NoError(t, bindings.Remove(ctx, 1, b.ID))

	list, err = bindings.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PlatformWeb, list[0].Platform)
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenRepository(newTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	live := &domain.AuthToken{Token: "live", UserID: 1, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	old := &domain.AuthToken{Token: "old", UserID: 1, IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, tokens.Save(ctx, live))
	require.NoError(t, tokens.Save(ctx, old))
	assert.True(t, errors.Is(tokens.Save(ctx, live), domain.ErrConflict))

	got, err := tokens.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenActive, got.State(now))

	_, err = tokens.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, tokens.Revoke(ctx, "live", now))
	require.NoError(t, tokens.Revoke(ctx, "live", now.Add(time.Minute)))
	got, err = tokens.Get(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.True(t, got.RevokedAt.Equal(now))
	assert.Equal(t, domain.TokenRevoked, got.State(now))
	assert.True(t, errors.Is(tokens.Revoke(ctx, "missing", now), domain.ErrNotFound))

	n, err := tokens.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = tokens.Get(ctx, "old")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPasswordResetRepository(t *testing.T) {
	ctx := context.Background()
	resets := NewPasswordResetRepository(newTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, resets.Save(ctx, &domain.PasswordReset{Code: "abc", UserID: 7, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, resets.Save(ctx, &domain.PasswordReset{Code: "stale", UserID: 7, ExpiresAt: now.Add(-time.Minute)}))

	got, err := resets.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(7), got.UserID)
	assert.True(t, got.Usable(now))

	require.NoError(t, resets.MarkUsed(ctx, "abc", now))
	assert.True(t, errors.Is(resets.MarkUsed(ctx, "abc", now), domain.ErrNotFound))

	got, err = resets.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, got.Usable(now))

	n, err := resets.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	comments := NewCommentRepository(newTestDB(t))

	first := &domain.Comment{MessageID: "m1", UserID: 1, Content: "first"}
	require.NoError(t, comments.Create(ctx, first))
	second := &domain.Comment{MessageID: "m1", UserID: 2, Content: "second"}
	require.NoError(t, comments.Create(ctx, second))
	require.NoError(t, comments.Create(ctx, &domain.Comment{MessageID: "m2", UserID: 1, Content: "elsewhere"}))

	list, err := comments.ListByMessage(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)

	got, err := comments.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(2), got.UserID)

	require.NoError(t, comments.Delete(ctx, first.ID))
	assert.True(t, errors.Is(comments.Delete(ctx, first.ID), domain.ErrNotFound))

	require.NoError(t, comments.DeleteByMessage(ctx, "m1"))
	list, err = comments.ListByMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = comments.ListByMessage(ctx, "m2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
