// Command vj is a terminal client for the journal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/and161185/vibe-journal/internal/archive"
	"github.com/and161185/vibe-journal/internal/client"
	"github.com/and161185/vibe-journal/internal/clientsession"
	"github.com/and161185/vibe-journal/internal/form"
	"github.com/and161185/vibe-journal/internal/model"
	"github.com/gofrs/uuid/v5"
)

// remote adapts the API client to clientsession.Remote, filling in the
// expiry from the token when the server left it out.
type remote struct{ *client.Client }

func (r remote) SignIn(ctx context.Context, email, password string) (model.Tokens, error) {
	tok, err := r.Client.SignIn(ctx, email, password)
	if err != nil {
		return tok, err
	}
	if tok.ExpiresAt.IsZero() {
		tok.ExpiresAt = tokenExpiry(tok.AccessToken, time.Now().Add(time.Hour))
	}
	return tok, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `vj CLI
Usage:
  vj [-server URL] [-cacert file | -insecure] <cmd> [args]

Commands:
  version
  signup   -email <e> -password <p> [-name <display name>]
  signin   -email <e> -password <p>                 (saves session)
  signout  [-all]                                    (-all revokes every device)
  whoami
  profile  [-name <display name>]
  new      -content <text> | -file <path|->  [-category c] [-media m] [-url u] [-note n] [-vibe v]
  archive  [-category c] [-media m] [-vibe v] [-json] [-no-color]
  show     -id <uuid>
  edit     -id <uuid> [-content ...] [-category ...] [-media ...] [-url ...] [-note ...] [-vibe ...|none]
  rm       -id <uuid>
`)
	os.Exit(2)
}

func fail(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "error: %s\n", apiErr.Error())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// requireSession prints the sign-in entry point when there is no session.
func requireSession(s *clientsession.Session) *clientsession.Session {
	if s == nil {
		fmt.Fprintln(os.Stderr, "not signed in: run `vj signin -email <e> -password <p>`")
		os.Exit(1)
	}
	return s
}

func entryID(s string) uuid.UUID {
	id, err := uuid.FromString(strings.TrimSpace(s))
	if err != nil {
		fmt.Fprintln(os.Stderr, "need a valid -id")
		os.Exit(1)
	}
	return id
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the journal API.
func main() {
	// global flags
	defServer := os.Getenv("VJ_SERVER")
	if defServer == "" {
		defServer = "http://localhost:8080"
	}
	server := flag.String("server", defServer, "server base URL")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("vj %s (%s)\n", version, buildDate)
		return
	}

	hc, err := httpClient(*caPath, *insecure)
	if err != nil {
		fail(err)
	}
	api, err := client.New(*server, client.WithHTTPClient(hc))
	if err != nil {
		fail(err)
	}
	mgr := clientsession.NewManager(clientsession.NewFileStore(""), remote{api})
	sess, err := mgr.Init()
	if err != nil {
		fail(err)
	}
	notes := notifier{w: os.Stderr}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password (min 8 chars)")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(args)
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "need -email and -password")
			os.Exit(1)
		}
		uid, err := api.SignUp(ctx, *email, *password, *name)
		if err != nil {
			fail(err)
		}
		fmt.Println(uid)

	case "signin":
		fs := flag.NewFlagSet("signin", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "need -email and -password")
			os.Exit(1)
		}
		s, err := mgr.SignIn(ctx, *email, *password)
		if err != nil {
			fail(err)
		}
		fmt.Printf("signed in as %s until %s\n", s.UserID, s.ExpiresAt.Local().Format(time.RFC1123))

	case "signout":
		fs := flag.NewFlagSet("signout", flag.ExitOnError)
		all := fs.Bool("all", false, "revoke every session of this account")
		_ = fs.Parse(args)
		signOut := mgr.SignOut
		if *all {
			signOut = mgr.SignOutEverywhere
		}
		if err := signOut(ctx); err != nil {
			fail(err)
		}
		fmt.Println("signed out; run `vj signin` to continue")

	case "whoami":
		s := requireSession(sess)
		remoteSess, err := api.Session(ctx, s.AccessToken)
		if err != nil {
			fail(err)
		}
		printJSON(os.Stdout, remoteSess)

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		name := fs.String("name", "", "new display name (blank resets)")
		_ = fs.Parse(args)
		s := requireSession(sess)

		var (
			p   model.Profile
			err error
		)
		renamed := false
		fs.Visit(func(f *flag.Flag) { renamed = renamed || f.Name == "name" })
		if renamed {
			p, err = api.Rename(ctx, s.AccessToken, *name)
		} else {
			p, err = api.Profile(ctx, s.AccessToken)
		}
		if err != nil {
			fail(err)
		}
		printJSON(os.Stdout, p)

	case "new":
		fs := flag.NewFlagSet("new", flag.ExitOnError)
		content := fs.String("content", "", "entry text")
		file := fs.String("file", "", "read entry text from file ('-'=stdin)")
		category := fs.String("category", model.DefaultCategory.String(), "thoughts|wishes|grievances|reflection|gratitude")
		media := fs.String("media", model.DefaultMediaType.String(), "text|voice|annotated_media_link|image|video")
		url := fs.String("url", "", "media URL (link, image, video)")
		note := fs.String("note", "", "media annotation (link, image, video)")
		vibe := fs.String("vibe", "none", "happy|sad|anxious|calm|excited|angry|peaceful|confused|hopeful|neutral|none")
		_ = fs.Parse(args)

		text := *content
		if *file != "" {
			b, err := readAll(*file)
			if err != nil {
				fail(err)
			}
			text = string(b)
		}

		f := form.New(api, notes)
		f.Open()
		f.SetContent(text)
		for _, set := range []func() error{
			func() error { return f.SetCategory(*category) },
			func() error { return f.SetMediaType(*media) },
			func() error { return f.SetVibe(*vibe) },
		} {
			if err := set(); err != nil {
				fail(err)
			}
		}
		if f.ShowsMediaFields() {
			f.SetMediaURL(*url)
			f.SetMediaAnnotation(*note)
		} else if *url != "" || *note != "" {
			fmt.Fprintf(os.Stderr, "-url and -note are ignored for media type %s\n", *media)
		}

		view := archive.New(api, notes, nil)
		f.OnCreated = func(ctx context.Context) {
			if err := view.Activate(ctx, sess); err == nil {
				_ = archive.RenderText(os.Stdout, view, true)
			}
		}
		e, err := f.Submit(ctx, sess)
		if errors.Is(err, clientsession.ErrNoSession) {
			requireSession(nil)
		}
		if err != nil {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "created", e.ID)

	case "archive":
		fs := flag.NewFlagSet("archive", flag.ExitOnError)
		category := fs.String("category", "all", "filter by category")
		media := fs.String("media", "all", "filter by media type")
		vibe := fs.String("vibe", "all", "filter by vibe")
		asJSON := fs.Bool("json", false, "print entries as JSON")
		noColor := fs.Bool("no-color", false, "disable colours")
		_ = fs.Parse(args)

		view := archive.New(api, notes, nil)
		if err := view.Activate(ctx, sess); err != nil {
			if errors.Is(err, archive.ErrRedirectToAuth) {
				requireSession(nil)
			}
			os.Exit(1)
		}
		for _, set := range []func() error{
			func() error { return view.SetCategoryFilter(*category) },
			func() error { return view.SetMediaTypeFilter(*media) },
			func() error { return view.SetVibeFilter(*vibe) },
		} {
			if err := set(); err != nil {
				fail(err)
			}
		}
		if *asJSON {
			printJSON(os.Stdout, view.Visible())
			return
		}
		if err := archive.RenderText(os.Stdout, view, !*noColor); err != nil {
			fail(err)
		}

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		id := fs.String("id", "", "entry id (uuid)")
		_ = fs.Parse(args)
		s := requireSession(sess)

		e, err := api.GetEntry(ctx, s.AccessToken, entryID(*id))
		if err != nil {
			fail(err)
		}
		printJSON(os.Stdout, e)

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		id := fs.String("id", "", "entry id (uuid)")
		fs.String("content", "", "new text")
		fs.String("category", "", "new category")
		fs.String("media", "", "new media type")
		fs.String("url", "", "new media URL ('' clears)")
		fs.String("note", "", "new media annotation ('' clears)")
		fs.String("vibe", "", "new vibe ('none' clears)")
		_ = fs.Parse(args)
		s := requireSession(sess)

		ch, err := changesFromFlags(fs)
		if err != nil {
			fail(err)
		}
		e, err := api.UpdateEntry(ctx, s.AccessToken, entryID(*id), ch)
		if err != nil {
			fail(err)
		}
		printJSON(os.Stdout, e)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ExitOnError)
		id := fs.String("id", "", "entry id (uuid)")
		_ = fs.Parse(args)
		s := requireSession(sess)

		if err := api.DeleteEntry(ctx, s.AccessToken, entryID(*id)); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	default:
		usage()
	}
}
