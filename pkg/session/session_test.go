package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	sess := New("id", "tok", time.Now().Add(time.Hour))
	require.True(t, sess.Changed(), "unsaved session must be written")
	require.False(t, sess.IsAuthenticated())
	require.Empty(t, sess.AuthenticatedUserID())
	require.NotNil(t, sess.Values)
	require.False(t, sess.expired(time.Now()))
}

func TestSession_PendingAuthorization(t *testing.T) {
	t.Parallel()

	sess := New("id", "tok", time.Now().Add(time.Hour))
	sess.saved()

	sess.SetValue("oauth.alias", "github")
	sess.SetValue("oauth.state", "abc")
	require.True(t, sess.Changed())

	sess.saved()
	sess.SetValue("oauth.state", "abc")
	require.False(t, sess.Changed(), "same value is not a change")

	state, ok := sess.GetValue("oauth.state")
	require.True(t, ok)
	require.Equal(t, "abc", state)

	sess.DeleteValue("oauth.state")
	require.True(t, sess.Changed())
	_, ok = sess.GetValue("oauth.state")
	require.False(t, ok)

	sess.saved()
	sess.DeleteValue("oauth.state")
	require.False(t, sess.Changed(), "deleting an absent key is not a change")
}

func TestSession_Authenticate(t *testing.T) {
	t.Parallel()

	sess := New("id", "tok", time.Now().Add(time.Hour))
	sess.saved()

	sess.Authenticate("user-1")
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "user-1", sess.AuthenticatedUserID())
	require.True(t, sess.Changed())

	sess.saved()
	sess.Authenticate("user-1")
	require.False(t, sess.Changed())
}

func TestSession_Take(t *testing.T) {
	t.Parallel()

	sess := New("id", "tok", time.Now().Add(time.Hour))
	sess.SetValue("oauth.alias", "github")
	sess.SetValue("oauth.state", "abc")
	sess.saved()

	taken := sess.take([]string{"oauth.state", "missing"})
	require.Equal(t, map[string]string{"oauth.state": "abc"}, taken)
	require.False(t, sess.Changed(), "take mirrors a store-side removal")
	_, ok := sess.GetValue("oauth.state")
	require.False(t, ok)

	c := sess.clone()
	sess.SetValue("oauth.alias", "google")
	require.True(t, sess.Changed())
	require.False(t, c.Changed())
	alias, _ := c.GetValue("oauth.alias")
	require.Equal(t, "github", alias)
}

func TestSession_ZeroValueMap(t *testing.T) {
	t.Parallel()

	var sess Session
	_, ok := sess.GetValue("missing")
	require.False(t, ok)
	sess.DeleteValue("missing")

	sess.SetValue("k", "v")
	v, ok := sess.GetValue("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestSession_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess := New("id", "tok", now.Add(time.Minute))
	require.False(t, sess.expired(now))
	require.True(t, sess.expired(now.Add(2*time.Minute)))
}

func TestSession_Clone(t *testing.T) {
	t.Parallel()

	sess := New("id", "tok", time.Now().Add(time.Hour))
	sess.Authenticate("user-1")
	sess.SetValue("oauth.state", "abc")

	c := sess.clone()
	c.SetValue("oauth.state", "changed")
	c.Authenticate("user-2")

	state, _ := sess.GetValue("oauth.state")
	require.Equal(t, "abc", state)
	require.Equal(t, "user-1", sess.AuthenticatedUserID())
}

func TestSession_JSONOmitsToken(t *testing.T) {
	t.Parallel()

	sess := New("id", "secret-token", time.Now().Add(time.Hour))
	sess.Authenticate("user-1")
	sess.SetValue("oauth.alias", "google")

	data, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret-token")

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "user-1", decoded.UserID)
	alias, ok := decoded.GetValue("oauth.alias")
	require.True(t, ok)
	require.Equal(t, "google", alias)
}
