package conversation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

// Sentinel ends the conversation when typed on its own line, in any case.
const Sentinel = "done"

// Console strings shown to the user.
const (
	Welcome  = "Welcome to the Car Advisor Chat! Let's find the best car for your needs. Type 'done' to exit anytime."
	Prompt   = "You: "
	Farewell = "Thank you for using the Car Advisor Chat. Goodbye!"
	Apology  = "Sorry, there was an error processing your request. Please try again."
)

// Generator produces an assistant reply for the newest input given the full
// history, which already ends with the user turn for input.
type Generator interface {
	Generate(ctx context.Context, history []Turn, input string) (Reply, error)
}

// Controller drives the read/ask/print loop and owns the History.
type Controller struct {
	gen     Generator
	in      io.Reader
	out     io.Writer
	logger  *zerolog.Logger
	history History
}

// NewController wires a controller reading lines from in and writing to out.
// A nil logger uses the global zerolog logger.
func NewController(gen Generator, in io.Reader, out io.Writer, logger *zerolog.Logger) *Controller {
	if logger == nil {
		logger = &log.Logger
	}
	return &Controller{gen: gen, in: in, out: out, logger: logger}
}

// History returns a copy of the turns recorded so far.
func (c *Controller) History() []Turn {
	return c.history.Turns()
}

// IsSentinel reports whether input, once trimmed and case folded, is the
// termination word.
func IsSentinel(input string) bool {
	return cases.Fold().String(strings.TrimSpace(input)) == Sentinel
}

// Start runs the conversation until the sentinel is read or input ends, both
// of which return nil. A cancelled ctx returns ctx.Err(); a failing reader
// returns its error. Failed exchanges never end the loop.
func (c *Controller) Start(ctx context.Context) error {
	reader := bufio.NewReader(c.in)

	fmt.Fprintln(c.out, Welcome)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, Prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		if err != nil && line == "" {
			// EOF behaves like the sentinel so piped sessions exit cleanly.
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, Farewell)
			return nil
		}
		input := strings.TrimSpace(line)
		if IsSentinel(input) {
			fmt.Fprintln(c.out, Farewell)
			return nil
		}

		c.history.Append(Turn{Role: RoleUser, Text: input})
		reply, err := c.exchange(ctx, input)
		if err != nil {
			fmt.Fprintln(c.out, Apology)
			c.logger.Error().Err(err).Int("history", c.history.Len()).Msg("error during interaction")
			continue
		}
		fmt.Fprintf(c.out, "Car Advisor: %s\n", reply.Text)
		fmt.Fprintf(c.out, "(This interaction used %d tokens.)\n", reply.Tokens)
		c.history.Append(Turn{Role: RoleSystem, Text: reply.Text})
		c.logger.Info().Int("tokens", reply.Tokens).Int("history", c.history.Len()).Msg("completion call made")
	}
}

// exchange runs one generator call and converts a panic into an error so a
// single bad exchange cannot take the process down.
func (c *Controller) exchange(ctx context.Context, input string) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exchange panicked: %v", r)
		}
	}()
	return c.gen.Generate(ctx, c.history.Turns(), input)
}
