package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/shared/cmdutils"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// SenderIDCLI identifies the terminal user.
const SenderIDCLI = "user"

// DirectProcessor runs one message through the agent outside the bus.
type DirectProcessor interface {
	ProcessDirect(ctx context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage
}

// CLIChannel is an interactive terminal REPL. Replies are printed as they
// arrive and generated documents are written to saveDir.
type CLIChannel struct {
	proc    DirectProcessor
	in      io.Reader
	out     io.Writer
	saveDir string
	resume  string
}

// NewCLIChannel creates a CLIChannel reading in and writing out.
func NewCLIChannel(proc DirectProcessor, in io.Reader, out io.Writer, saveDir string) *CLIChannel {
	if saveDir == "" {
		saveDir = "."
	}
	return &CLIChannel{proc: proc, in: in, out: out, saveDir: saveDir}
}

// SetResume attaches resume text to the next message sent.
func (c *CLIChannel) SetResume(text string) { c.resume = strings.TrimSpace(text) }

// LoadResume reads a resume file (.txt, .md or .docx) for the next message.
func (c *CLIChannel) LoadResume(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text, err := resumeText(filepath.Base(path), data)
	if err != nil {
		return err
	}
	c.SetResume(text)
	return nil
}

func (c *CLIChannel) Name() string { return string(bus.ChannelCLI) }

// Run reads lines, processes each one and prints the reply.
// Blocks until ctx is cancelled, input is exhausted or an exit command is typed.
func (c *CLIChannel) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "jobpilot chat ready. Type 'exit' or press Ctrl+C to quit.\n\n")

	if c.resume != "" {
		c.send(ctx, "")
	}

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), maxResumeBytes)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, "You: ")

		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		case <-ctx.Done():
			return ctx.Err()
		}

		if line == "" {
			continue
		}
		if cliExitCommands[strings.ToLower(line)] {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}

		c.send(ctx, line)
	}
}

// Once processes a single message (with any pending resume) and prints the reply.
func (c *CLIChannel) Once(ctx context.Context, content string) { c.send(ctx, content) }

func (c *CLIChannel) send(ctx context.Context, content string) {
	msg := bus.NewInboundMessage(bus.ChannelCLI, SenderIDCLI, bus.ChatIDDirect, content)
	if c.resume != "" {
		msg.SetResume(c.resume)
		c.resume = ""
	}
	out := c.proc.ProcessDirect(ctx, msg, func(p string) {
		fmt.Fprintf(c.out, "  ↳ %s\n", p)
	})
	cmdutils.WriteResponse(c.out, out.Content())

	for _, a := range out.Attachments() {
		path, err := c.save(a)
		if err != nil {
			fmt.Fprintf(c.out, "Could not save %s: %v\n", a.Filename, err)
			continue
		}
		fmt.Fprintf(c.out, "%s Saved to %s\n\n", a.Comment, path)
	}
}

// save writes a to saveDir without overwriting an existing file.
func (c *CLIChannel) save(a bus.Attachment) (string, error) {
	if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Base(a.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document.docx"
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	path := filepath.Join(c.saveDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(c.saveDir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
	return path, os.WriteFile(path, a.Data, 0o644)
}
