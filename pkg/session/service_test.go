package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankx-ai/frankx/pkg/apierr"
)

// echoDispatcher replies with a fixed transform of the message and
// records how much history it saw on each call.
type echoDispatcher struct {
	mu          sync.Mutex
	degraded    bool
	historyLens []int
}

func (d *echoDispatcher) Dispatch(ctx context.Context, agentID string, history []Turn, message string) (Reply, error) {
	d.mu.Lock()
	d.historyLens = append(d.historyLens, len(history))
	d.mu.Unlock()
	return Reply{Text: "echo: " + message, Degraded: d.degraded}, nil
}

func TestService_CreateConversation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Empty(t, res.InitialResponse)

	sess, err := svc.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "frankbot", sess.AgentID)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Empty(t, sess.Turns)
}

func TestService_CreateConversationWithInitialMessage(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", res.InitialResponse)

	sess, err := svc.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, RoleUser, sess.Turns[0].Role)
	assert.Equal(t, "hello", sess.Turns[0].Content)
	assert.Equal(t, RoleAssistant, sess.Turns[1].Role)
}

func TestService_CreateConversationValidation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	_, err := svc.CreateConversation(ctx, "", "user-1", "")
	assert.True(t, apierr.Is(err, apierr.CodeValidation))

	_, err = svc.CreateConversation(ctx, "frankbot", "", "")
	assert.True(t, apierr.Is(err, apierr.CodeValidation))
}

func TestService_SendMessageAppendOnly(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := svc.SendMessage(ctx, res.SessionID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	sess, err := svc.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2*n)

	for i, turn := range sess.Turns {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role)
			assert.Equal(t, fmt.Sprintf("message %d", i/2), turn.Content)
		} else {
			assert.Equal(t, RoleAssistant, turn.Role)
		}
		if i > 0 {
			assert.False(t, turn.Timestamp.Before(sess.Turns[i-1].Timestamp),
				"turn %d timestamp decreased", i)
		}
	}
}

func TestService_SendMessageUnknownSession(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})

	_, err := svc.SendMessage(context.Background(), "no-such-session", "hello")
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestService_SendMessageDegradedReply(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{degraded: true})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, res.SessionID, "hello")
	require.NoError(t, err)
	assert.True(t, msg.Degraded)
	assert.NotEmpty(t, msg.Response)
}

func TestService_DispatcherSeesHistory(t *testing.T) {
	d := &echoDispatcher{}
	svc := NewService(NewMemoryStore(), d)
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(ctx, res.SessionID, "m")
		require.NoError(t, err)
	}

	// history grows by two turns per exchange
	assert.Equal(t, []int{0, 2, 4}, d.historyLens)
}

func TestService_ClearConversation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.ClearConversation(ctx, res.SessionID))

	sess, err := svc.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Empty(t, sess.Turns)
	assert.Equal(t, "frankbot", sess.AgentID, "identity survives clear")

	// clearing an already empty session succeeds
	require.NoError(t, svc.ClearConversation(ctx, res.SessionID))

	err = svc.ClearConversation(ctx, "no-such-session")
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestService_FindSession(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	_, ok, err := svc.FindSession(ctx, "frankbot", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)

	found, ok, err := svc.FindSession(ctx, "frankbot", "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.SessionID, found.ID)
}

func TestService_ConcurrentSendsSameSession(t *testing.T) {
	svc := NewService(NewMemoryStore(), &echoDispatcher{})
	ctx := context.Background()

	res, err := svc.CreateConversation(ctx, "frankbot", "user-1", "")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.SendMessage(ctx, res.SessionID, fmt.Sprintf("m%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := svc.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2*workers)

	// user/assistant pairs stay adjacent and timestamps never decrease
	for i, turn := range sess.Turns {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role)
		} else {
			assert.Equal(t, RoleAssistant, turn.Role)
		}
		if i > 0 {
			assert.False(t, turn.Timestamp.Before(sess.Turns[i-1].Timestamp))
		}
	}
}
