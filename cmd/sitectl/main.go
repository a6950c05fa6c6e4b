// Command sitectl is a terminal client for the site API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/appstate"
	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/client"
	"construction-site-api-server/internal/logger"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

const usage = `usage: sitectl <command> [flags]

commands:
  login          log in with username, password and OTP; stores the token
  availability   show live material availability
  detail CODE    show the usage history of one material
`

type app struct {
	cfg   config.Config
	log   *slog.Logger
	state *appstate.State
	out   io.Writer
	in    *bufio.Reader
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	_ = godotenv.Load()

	global := flag.NewFlagSet("sitectl", flag.ExitOnError)
	configDir := global.String("config", "./config", "directory holding config.yaml")
	baseURL := global.String("base-url", "", "API base URL (overrides config)")
	verbose := global.BoolP("verbose", "v", false, "debug logging to stderr")

	cmd, args := os.Args[1], os.Args[2:]
	global.ParseErrorsWhitelist.UnknownFlags = true
	_ = global.Parse(args)

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	env := "prod"
	if *verbose {
		env = "dev"
	}

	a := &app{
		cfg:   cfg,
		log:   logger.NewWithWriter(env, os.Stderr),
		state: &appstate.State{},
		out:   os.Stdout,
		in:    bufio.NewReader(os.Stdin),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "login":
		err = a.login(ctx, args)
	case "availability":
		err = a.availability(ctx, args)
	case "detail":
		err = a.detail(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitectl %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func commonFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("config", "./config", "directory holding config.yaml")
	fs.String("base-url", "", "API base URL (overrides config)")
	fs.BoolP("verbose", "v", false, "debug logging to stderr")
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := commonFlags("login")
	username := fs.StringP("username", "u", "", "username")
	password := fs.StringP("password", "p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("--username and --password are required")
	}

	c := client.New(a.cfg.Client.BaseURL, a.log)
	res, err := c.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	lines := a.readLines()

	for {
		fmt.Fprintf(a.out, "OTP sent. Expires in %s.\n", client.FormatRemaining(time.Until(res.ExpiresAt)))
		if res.OTP != "" {
			fmt.Fprintf(a.out, "(development code: %s)\n", res.OTP)
		}
		fmt.Fprint(a.out, "Enter OTP, or r to resend: ")

		code, err := a.awaitCode(ctx, lines, res.ExpiresAt)
		if err != nil {
			return err
		}
		if code == "r" {
			if res, err = c.ResendOTP(ctx, res.UserID, res.OTPID); err != nil {
				return err
			}
			continue
		}

		sess, err := c.VerifyOTP(ctx, res.UserID, res.OTPID, code)
		if err != nil {
			return err
		}
		a.state.SetUser(sess.User)
		if err := os.WriteFile(a.cfg.Client.TokenFile, []byte(sess.Token), 0o600); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(a.out, "Logged in as %s (%s).\n", sess.User.Username, sess.User.Role)
		return nil
	}
}

// readLines feeds stdin lines to a channel until EOF.
func (a *app) readLines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := a.in.ReadString('\n')
			if line != "" || err == nil {
				lines <- strings.TrimSpace(line)
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// awaitCode waits for the next input line. An expired OTP counts as a resend
// request.
func (a *app) awaitCode(ctx context.Context, lines <-chan string, expiresAt time.Time) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	timer := client.Countdown(ctx, expiresAt, time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return "", io.ErrUnexpectedEOF
			}
			return line, nil
		case left, ok := <-timer:
			if !ok {
				return "", ctx.Err()
			}
			if left == 0 {
				fmt.Fprintln(a.out, "\nOTP expired, requesting a new one.")
				return "r", nil
			}
		}
	}
}

func (a *app) token() (string, error) {
	b, err := os.ReadFile(a.cfg.Client.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.New("not logged in, run sitectl login first")
	}
	return strings.TrimSpace(string(b)), err
}

func (a *app) live(ctx context.Context, projectID, search string) ([]availability.MaterialAvailability, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}
	f := availability.NewFetcher(a.cfg.Client.BaseURL, token, a.log)
	return f.Live(ctx, availability.Query{ProjectID: projectID}, search)
}

func (a *app) availability(ctx context.Context, args []string) error {
	fs := commonFlags("availability")
	project := fs.String("project", "", "project id")
	search := fs.StringP("search", "s", "", "filter by material code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := a.live(ctx, *project, *search)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No materials found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tAVAILABLE\tCONSUMED\tSTATUS\tRECORDS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%s\t%d\n", r.MatCode, r.TotalAvailable, r.TotalConsumed, r.Status, len(r.Documents))
	}
	return tw.Flush()
}

func (a *app) detail(ctx context.Context, args []string) error {
	fs := commonFlags("detail")
	project := fs.String("project", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one material code")
	}
	code := fs.Arg(0)

	rows, err := a.live(ctx, *project, code)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if strings.EqualFold(r.MatCode, code) {
			a.state.SetSelectedMaterial(appstate.SelectMaterial(r))
			break
		}
	}
	sel, ok := a.state.SelectedMaterial()
	if !ok || len(sel.Documents) == 0 {
		fmt.Fprintln(a.out, "No material selected or no records available.")
		return nil
	}

	d := appstate.MaterialDetail(sel)
	name := d.MatName
	if name == "" {
		name = "N/A"
	}
	fmt.Fprintf(a.out, "%s\nMaterial Name: %s\nTotal Records: %d\nFirst Entry: %s\nLast Updated: %s\n\nUsage History\n",
		d.MatCode, name, d.Records, d.FirstEntry.Format("2006-01-02"), d.LastUpdate.Format("2006-01-02"))
	if len(d.Usage) == 0 {
		fmt.Fprintln(a.out, "No one has consumed this material yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN BY\tQUANTITY\tDATE")
	for _, u := range d.Usage {
		fmt.Fprintf(tw, "%s\t%g\t%s\n", u.TakenBy, u.Quantity, u.Date.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
