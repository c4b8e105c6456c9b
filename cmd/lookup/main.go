// Command lookup is an interactive terminal front end for address search.
//
// Each line typed is treated as the new contents of the search field.
// Lines starting with ':' are commands:
//
//	:N            select suggestion N (1-based)
//	:clear        clear the selection
//	:dismiss      clear the suggestion list
//	:phone TEXT   edit the phone field to TEXT
//	:quit         exit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/dukerupert/addresscomplete/internal"
	"github.com/dukerupert/addresscomplete/internal/address"
	"github.com/dukerupert/addresscomplete/internal/canadapost"
	"github.com/dukerupert/addresscomplete/internal/phone"
	"github.com/dukerupert/addresscomplete/internal/search"
)

var errQuit = errors.New("quit")

// session drives one search controller and one phone field from text commands.
type session struct {
	ctrl *search.Controller
	out  io.Writer

	mu    sync.Mutex // guards out and phone
	phone phone.Field
}

func newSession(ctrl *search.Controller, out io.Writer) *session {
	s := &session{ctrl: ctrl, out: out}
	ctrl.Suggestions().Subscribe(func([]address.Address) { s.render() })
	ctrl.Selection().Subscribe(func(search.Selection) { s.render() })
	return s
}

func (s *session) handle(line string) error {
	if !strings.HasPrefix(line, ":") {
		s.ctrl.OnQueryChanged(line)
		return nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	switch cmd {
	case "quit", "q":
		return errQuit
	case "clear":
		s.ctrl.OnClearSelection()
	case "dismiss":
		s.ctrl.OnClearSuggestions()
	case "phone":
		s.editPhone(arg)
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			s.printf("unknown command %q\n", cmd)
			return nil
		}
		list := s.ctrl.Suggestions().Get()
		if n < 1 || n > len(list) {
			s.printf("no suggestion %d\n", n)
			return nil
		}
		s.ctrl.OnSuggestionSelected(list[n-1])
	}
	return nil
}

func (s *session) editPhone(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !phone.Accepts(raw) {
		fmt.Fprintf(s.out, "phone: rejected, at most %d digits\n", phone.MaxDigits)
		return
	}
	next := s.phone.Edit(raw)
	s.phone = next

	status := "ok"
	if next.ShowError() {
		status = "incomplete"
	}
	fmt.Fprintf(s.out, "phone: %s (%s)\n", next.Text, status)
}

func (s *session) render() {
	state := s.ctrl.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Selection.Valid {
		fmt.Fprintf(s.out, "selected: %s\n", state.Selection.Address.FullLabel())
		return
	}
	if len(state.Suggestions) == 0 {
		fmt.Fprintln(s.out, "(no suggestions)")
		return
	}
	for i, a := range state.Suggestions {
		fmt.Fprintf(s.out, "%2d. %s\n", i+1, a.ShortLabel())
	}
}

func (s *session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// sampleAddresses are served by -mock, in AddressComplete's Find shape.
var sampleAddresses = []address.RawSuggestion{
	{ID: "sample-1", Text: "100 Queen St W", Description: "100 Queen St W, Toronto, ON M5H 2N2"},
	{ID: "sample-2", Text: "290 Bremner Blvd", Description: "290 Bremner Blvd, Toronto, ON M5V 3L9"},
	{ID: "sample-3", Text: "1 Rue des Carrières", Description: "1 Rue des Carrières, Québec, QC G1R 4P5"},
	{ID: "sample-4", Text: "1045 Av Wilfrid-Laurier", Description: "1045 Av Wilfrid-Laurier, Québec, QC G1R 5H6"},
	{ID: "sample-5", Text: "111 Wellington St", Description: "111 Wellington St, Ottawa, ON K1A 0A6"},
}

// sampleProvider matches the query case-insensitively against sampleAddresses.
func sampleProvider() *canadapost.MockProvider {
	p := canadapost.NewMockProvider()
	p.FindFunc = func(_ context.Context, params canadapost.FindParams) ([]address.RawSuggestion, error) {
		term := strings.ToLower(strings.TrimSpace(params.SearchTerm))
		out := []address.RawSuggestion{}
		for _, s := range sampleAddresses {
			if strings.Contains(strings.ToLower(s.Description), term) {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return p
}

func run() error {
	mock := flag.Bool("mock", false, "search a few built-in sample addresses instead of AddressComplete")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	var provider canadapost.Provider
	if *mock {
		provider = sampleProvider()
	} else {
		provider, err = canadapost.NewClient(canadapost.ClientConfig{
			APIKey:  cfg.CanadaPost.APIKey,
			BaseURL: cfg.CanadaPost.BaseURL,
			Timeout: cfg.CanadaPost.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize AddressComplete client: %w", err)
		}
	}

	ctrl, err := search.NewController(ctx, search.Config{
		Provider: provider,
		Params:   canadapost.ParamsFor(cfg.CanadaPost.Country, cfg.CanadaPost.Language),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Wait()

	s := newSession(ctrl, os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := s.handle(scanner.Text()); errors.Is(err, errQuit) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
