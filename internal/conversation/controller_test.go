package conversation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	reply Reply
	err   error
	panic bool
}

// scriptedGenerator replays steps in order and records what it was given.
type scriptedGenerator struct {
	steps    []step
	calls    int
	inputs   []string
	lastSeen []Turn
}

func (g *scriptedGenerator) Generate(_ context.Context, history []Turn, input string) (Reply, error) {
	g.inputs = append(g.inputs, input)
	g.lastSeen = history
	s := g.steps[g.calls]
	g.calls++
	if s.panic {
		panic("boom")
	}
	return s.reply, s.err
}

func newTestController(gen Generator, input string) (*Controller, *bytes.Buffer, *bytes.Buffer) {
	var out, logs bytes.Buffer
	logger := zerolog.New(&logs)
	return NewController(gen, strings.NewReader(input), &out, &logger), &out, &logs
}

func TestIsSentinel(t *testing.T) {
	for _, in := range []string{"done", "Done", "  DONE  ", "\tdOnE\n"} {
		assert.True(t, IsSentinel(in), "input %q", in)
	}
	for _, in := range []string{"", "don", "done!", "not done", "d one"} {
		assert.False(t, IsSentinel(in), "input %q", in)
	}
}

func TestStart_SentinelVariantsLeaveHistoryEmpty(t *testing.T) {
	for _, in := range []string{"done\n", "Done\n", "  DONE  \n"} {
		gen := &scriptedGenerator{}
		c, out, _ := newTestController(gen, in)
		require.NoError(t, c.Start(context.Background()))
		assert.Empty(t, c.History())
		assert.Zero(t, gen.calls, "sentinel must not reach the generator")
		assert.Contains(t, out.String(), Farewell)
	}
}

func TestStart_SuccessfulExchangesAlternate(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{reply: Reply{Text: "Consider the Honda Civic.", Tokens: 42}},
		{reply: Reply{Text: "The Civic is reliable.", Tokens: 50}},
		{reply: Reply{Text: "About 200 hp.", Tokens: 60}},
	}}
	c, out, logs := newTestController(gen, "budget friendly sedan\nreliable?\nhow fast?\ndone\n")
	require.NoError(t, c.Start(context.Background()))

	h := c.History()
	require.Len(t, h, 6)
	for i, turn := range h {
		want := RoleUser
		if i%2 == 1 {
			want = RoleSystem
		}
		assert.Equal(t, want, turn.Role, "turn %d", i)
	}
	assert.Equal(t, "budget friendly sedan", h[0].Text)
	assert.Equal(t, "Consider the Honda Civic.", h[1].Text)

	s := out.String()
	assert.Contains(t, s, "Car Advisor: Consider the Honda Civic.\n")
	assert.Contains(t, s, "(This interaction used 42 tokens.)\n")
	assert.Equal(t, 3, strings.Count(logs.String(), `"tokens":`))
}

func TestStart_HistoryPassedToGeneratorEndsWithUserTurn(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{reply: Reply{Text: "first"}},
		{reply: Reply{Text: "second"}},
	}}
	c, _, _ := newTestController(gen, "  hello  \nagain\n")
	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, []string{"hello", "again"}, gen.inputs)
	require.Len(t, gen.lastSeen, 3)
	assert.Equal(t, Turn{Role: RoleUser, Text: "again"}, gen.lastSeen[2])
}

func TestStart_FailedExchangeKeepsOnlyUserTurn(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{reply: Reply{Text: "ok", Tokens: 3}},
		{err: errors.New("dial tcp: connection refused")},
		{reply: Reply{Text: "back", Tokens: 5}},
	}}
	c, out, logs := newTestController(gen, "one\ntwo\nthree\ndone\n")
	require.NoError(t, c.Start(context.Background()))

	h := c.History()
	require.Len(t, h, 5)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "one"},
		{Role: RoleSystem, Text: "ok"},
		{Role: RoleUser, Text: "two"},
		{Role: RoleUser, Text: "three"},
		{Role: RoleSystem, Text: "back"},
	}, h)
	assert.Equal(t, 1, strings.Count(out.String(), Apology))
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), "connection refused")
}

func TestStart_PanicIsRecoveredAsFailure(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{panic: true}, {reply: Reply{Text: "fine"}}}}
	c, out, logs := newTestController(gen, "a\nb\n")
	require.NoError(t, c.Start(context.Background()))

	assert.Len(t, c.History(), 3)
	assert.Contains(t, out.String(), Apology)
	assert.Contains(t, logs.String(), "exchange panicked: boom")
}

func TestStart_EOFEndsLikeSentinel(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{reply: Reply{Text: "hi"}}}}
	c, out, _ := newTestController(gen, "hello")
	require.NoError(t, c.Start(context.Background()))
	assert.Len(t, c.History(), 2)
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"))
}

func TestStart_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _, _ := newTestController(&scriptedGenerator{}, "hello\n")
	err := c.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.History())
}

func TestStart_PrintsWelcomeAndPrompt(t *testing.T) {
	c, out, _ := newTestController(&scriptedGenerator{}, "done\n")
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, Welcome+"\n"+Prompt+Farewell+"\n", out.String())
}

func TestStart_VeryLongLineDoesNotEndConversation(t *testing.T) {
	long := strings.Repeat("sedan ", 2<<20/6+1)
	gen := &scriptedGenerator{steps: []step{
		{reply: Reply{Text: "That is a lot of sedans."}},
		{reply: Reply{Text: "Second answer."}},
	}}
	c, out, _ := newTestController(gen, long+"\nsecond\ndone\n")
	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, 2, gen.calls)
	require.Len(t, gen.inputs, 2)
	assert.Greater(t, len(gen.inputs[0]), 2<<20-8)
	assert.Equal(t, "second", gen.inputs[1])
	assert.Len(t, c.History(), 4)
	assert.Contains(t, out.String(), "Car Advisor: Second answer.\n")
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"))
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestStart_ReaderFailureIsReturned(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.Nop()
	readErr := errors.New("read /dev/stdin: input/output error")
	c := NewController(&scriptedGenerator{}, failingReader{err: readErr}, &out, &logger)

	err := c.Start(context.Background())
	require.ErrorIs(t, err, readErr)
	assert.Empty(t, c.History())
	assert.NotContains(t, out.String(), Farewell)
}
