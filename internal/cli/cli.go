package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

const (
	defaultBaseURL = "http://localhost:8080"
	baseURLEnvVar  = "ASSISTANT_API_URL"

	resultPollInterval = 3 * time.Second
	resultPollAttempts = 10
)

// CLI drives the analyzer API from the terminal.
type CLI struct {
	client *Client
	in     io.Reader
	out    io.Writer

	pollInterval time.Duration
	pollAttempts int
}

func New() *CLI {
	baseURL := os.Getenv(baseURLEnvVar)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CLI{
		client:       NewClient(baseURL),
		in:           os.Stdin,
		out:          os.Stdout,
		pollInterval: resultPollInterval,
		pollAttempts: resultPollAttempts,
	}
}

const usage = `Usage:
  assistant-cli assistant create --name <name>
  assistant-cli repo process --assistant_id <id> --url <github clone url>
  assistant-cli repo check --thread_id <id>
  assistant-cli conversation start --assistant_id <id> --thread_id <id>

The API base URL is read from ` + baseURLEnvVar + ` (default ` + defaultBaseURL + `).`

// Run dispatches one subcommand.
func (c *CLI) Run(args []string) error {
	if len(args) < 2 {
		return errors.New(usage)
	}

	switch args[0] + " " + args[1] {
	case "assistant create":
		return c.assistantCreate(args[2:])
	case "repo process":
		return c.repoProcess(args[2:])
	case "repo check":
		return c.repoCheck(args[2:])
	case "conversation start":
		return c.conversationStart(args[2:])
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0]+" "+args[1], usage)
	}
}

func (c *CLI) assistantCreate(args []string) error {
	fs := flag.NewFlagSet("assistant create", flag.ContinueOnError)
	name := fs.String("name", "", "assistant name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	assistantID, err := c.client.CreateAssistant(*name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "assistant_id: %s\n", assistantID)
	return nil
}

func (c *CLI) repoProcess(args []string) error {
	fs := flag.NewFlagSet("repo process", flag.ContinueOnError)
	assistantID := fs.String("assistant_id", "", "assistant id")
	url := fs.String("url", "", "GitHub repository clone URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assistantID == "" {
		return fmt.Errorf("--assistant_id is required")
	}
	if *url == "" {
		return fmt.Errorf("--url is required")
	}

	result, err := c.client.ProcessRepo(*assistantID, *url)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Processing %s/%s has started.\n", result.User, result.Repo)
	fmt.Fprintf(c.out, "thread_id: %s\n", result.ThreadID)
	fmt.Fprintln(c.out, "Check the status with: repo check --thread_id", result.ThreadID)
	return nil
}

func (c *CLI) repoCheck(args []string) error {
	fs := flag.NewFlagSet("repo check", flag.ContinueOnError)
	threadID := fs.String("thread_id", "", "thread id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *threadID == "" {
		return fmt.Errorf("--thread_id is required")
	}

	status, err := c.client.CheckRepo(*threadID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "status: %s\n", status)
	return nil
}

// conversationStart runs the interactive loop: read a question, send it,
// poll for the answer, repeat until the user types exit.
func (c *CLI) conversationStart(args []string) error {
	fs := flag.NewFlagSet("conversation start", flag.ContinueOnError)
	assistantID := fs.String("assistant_id", "", "assistant id")
	threadID := fs.String("thread_id", "", "thread id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assistantID == "" {
		return fmt.Errorf("--assistant_id is required")
	}
	if *threadID == "" {
		return fmt.Errorf("--thread_id is required")
	}

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(c.out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" {
			return nil
		}

		if err := c.client.SendMessage(message, *assistantID, *threadID); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}

		answer, err := c.waitForResult(*threadID)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(c.out, "AI: %s\n", answer)
	}
}

// waitForResult polls the result endpoint on a fixed interval until the
// turn completes or the attempt budget runs out.
func (c *CLI) waitForResult(threadID string) (string, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		result, err := c.client.GetResult(threadID)
		if err != nil {
			return "", err
		}
		if result.Status == models.StatusCompleted {
			return result.Message, nil
		}
		time.Sleep(c.pollInterval)
	}
	return "", fmt.Errorf("something went wrong. Please try again later")
}
