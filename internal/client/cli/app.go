// Package cli implements the pixo command-line client: account registration,
// login and publishing a local image file.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/pixo/internal/client/api"
	"github.com/dmitrijs2005/pixo/internal/client/config"
)

const usage = `usage: pixo-client [-a server-url] [-t seconds] <command>

commands:
  register          create an account
  login             print a session token
  upload <file>     upload an image file and publish it
`

type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) error {
	args := a.config.Args
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "upload":
		if len(args) < 2 {
			return fmt.Errorf("upload: file path is required")
		}
		return a.Upload(ctx, args[1])
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) credentials() (string, string, error) {
	username, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (a *App) Register(ctx context.Context) error {
	username, password, err := a.credentials()
	if err != nil {
		return err
	}
	picture, err := GetSimpleText(a.reader, "Profile picture URL (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.api.Register(ctx, username, password, picture); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, password, err := a.credentials()
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	username, password, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.api.Login(ctx, username, password); err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	tags, err := GetSimpleText(a.reader, "Tags (comma separated)", a.out)
	if err != nil {
		return err
	}
	songName, err := GetSimpleText(a.reader, "Song name (optional)", a.out)
	if err != nil {
		return err
	}
	songLink, err := GetSimpleText(a.reader, "Song link (optional)", a.out)
	if err != nil {
		return err
	}

	url, err := a.api.UploadAsset(ctx, data, http.DetectContentType(data))
	if err != nil {
		return fmt.Errorf("upload asset: %w", err)
	}

	img, err := a.api.Publish(ctx, api.PublishRequest{
		URL:      url,
		Title:    title,
		Tags:     SplitTags(tags),
		SongName: songName,
		SongLink: songLink,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Published %s at %s\n", img.ID, img.URL)
	return nil
}
