package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/pocketnotes/internal"
	"github.com/starford/pocketnotes/internal/apperr"
	"github.com/starford/pocketnotes/internal/mcpserver"
	"github.com/starford/pocketnotes/internal/models"
	"github.com/starford/pocketnotes/internal/noterepo"
	"github.com/starford/pocketnotes/internal/viewmodel"
)

var errBlankNote = fmt.Errorf("%w: a note needs a title or content", apperr.ErrInvalidInput)

// session is what one CLI command works with: a view-model over the
// configured store.
type session struct {
	list   *viewmodel.NoteList
	logger *slog.Logger
	out    io.Writer
	in     io.Reader
	close  func() error
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// stdout carries command output, so logs go to stderr.
	logger := internal.NewLogger(os.Stderr, slog.LevelWarn)

	store, err := internal.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	repo := noterepo.New(store,
		noterepo.WithKey(cfg.Store.Key),
		noterepo.WithLogger(logger),
	)

	s := &session{
		list:   viewmodel.NewNoteList(repo, viewmodel.WithLogger(logger)),
		logger: logger,
		out:    os.Stdout,
		in:     os.Stdin,
		close:  store.Close,
	}
	if root := cmd.Root(); root != nil {
		if root.Writer != nil {
			s.out = root.Writer
		}
		if root.Reader != nil {
			s.in = root.Reader
		}
	}
	return s, nil
}

func withSession(fn func(ctx context.Context, cmd *cli.Command, s *session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(ctx, cmd, s)
	}
}

func requireID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return "", fmt.Errorf("%w: note id is required", apperr.ErrInvalidInput)
	}
	return id, nil
}

func printNote(w io.Writer, n models.Note) {
	fmt.Fprintf(w, "%s\n", n.Title)
	fmt.Fprintf(w, "id:      %s\n", n.ID)
	fmt.Fprintf(w, "created: %s\n", viewmodel.FormatDateTime(n.CreatedAt.Local()))
	fmt.Fprintf(w, "updated: %s\n", viewmodel.FormatDateTime(n.UpdatedAt.Local()))
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "tags:    %s\n", viewmodel.JoinTags(n.Tags))
	}
	if n.Content != "" {
		fmt.Fprintf(w, "\n%s\n", n.Content)
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes, most recently updated first",
		Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
			s.list.Load(ctx)
			notes := s.list.Notes()
			if len(notes) == 0 {
				fmt.Fprintln(s.out, "No notes yet. Create one with \"add\".")
				return nil
			}
			now := time.Now()
			for _, n := range notes {
				line := fmt.Sprintf("%s  %-14s  %s", n.ID, viewmodel.FormatRelative(now, n.UpdatedAt), n.Title)
				if tags := viewmodel.CardTags(n.Tags); len(tags) > 0 {
					line += "  [" + strings.Join(tags, " ") + "]"
				}
				fmt.Fprintln(s.out, line)
				if p := viewmodel.Preview(n.Content); p != "" {
					fmt.Fprintf(s.out, "    %s\n", p)
				}
			}
			return nil
		}),
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one note",
		ArgsUsage: "<id>",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			id, err := requireID(cmd)
			if err != nil {
				return err
			}
			n, err := s.list.GetByID(ctx, id)
			if err != nil {
				return err
			}
			printNote(s.out, n)
			return nil
		}),
	}
}

func noteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
		&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Note body"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a note",
		Flags: noteFlags(),
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			title, content := cmd.String("title"), cmd.String("content")
			if viewmodel.Blank(title, content) {
				return errBlankNote
			}
			draft := viewmodel.NewDraft(title, content, cmd.String("tags"))
			if err := draft.Validate(); err != nil {
				return err
			}
			n, err := s.list.Create(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, n.ID)
			return nil
		}),
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change a note's title, content or tags",
		ArgsUsage: "[--title T] [--content C] [--tags a,b] <id>",
		Flags:     noteFlags(),
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			id, err := requireID(cmd)
			if err != nil {
				return err
			}
			n, err := s.list.GetByID(ctx, id)
			if err != nil {
				return err
			}

			form := viewmodel.NewEditForm(n)
			if cmd.IsSet("title") {
				form.Title = cmd.String("title")
			}
			if cmd.IsSet("content") {
				form.Content = cmd.String("content")
			}
			if cmd.IsSet("tags") {
				form.Tags = cmd.String("tags")
			}
			if !form.Dirty() {
				fmt.Fprintln(s.out, "No changes.")
				return nil
			}
			if form.Blank() {
				return errBlankNote
			}

			patch, err := form.Patch()
			if err != nil {
				return err
			}
			updated, err := s.list.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			printNote(s.out, updated)
			return nil
		}),
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a note",
		ArgsUsage: "[--yes] <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
		},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			id, err := requireID(cmd)
			if err != nil {
				return err
			}
			n, err := s.list.GetByID(ctx, id)
			if errors.Is(err, apperr.ErrNotFound) {
				fmt.Fprintln(s.out, "Note not found.")
				return nil
			}
			if err != nil {
				return err
			}

			if !cmd.Bool("yes") {
				ok, err := confirm(s.in, s.out, fmt.Sprintf("Delete %q?", n.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(s.out, "Cancelled.")
					return nil
				}
			}
			if _, err := s.list.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "Deleted.")
			return nil
		}),
	}
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func mcpCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)

	store, err := internal.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	repo := noterepo.New(store,
		noterepo.WithKey(cfg.Store.Key),
		noterepo.WithLogger(logger),
	)
	logger.Info("MCP server starting", slog.String("store_backend", cfg.Store.Backend))
	return mcpserver.New(repo, logger).ServeStdio()
}
